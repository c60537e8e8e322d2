package bridge

import (
	"github.com/goliatone/go-tplbridge/pkg/engine"
	"github.com/goliatone/go-tplbridge/pkg/resolve"
)

// installBuiltins registers the four extension categories into env. String
// values in the three function-valued categories (filters, tests, globals)
// are dotted references resolved through r; anything else installs as-is.
// Constants are values, not references, and always install literally into
// the globals namespace. Re-running with the same input reproduces the
// same registrations; later entries overwrite earlier ones by name.
// Resolution failures are fatal configuration errors.
func installBuiltins(env engine.Environment, r *resolve.Resolver, filters, tests, globals, constants map[string]any) error {
	install := func(category string, register func(string, any) error, entries map[string]any) error {
		for name, value := range entries {
			if ref, ok := value.(string); ok {
				resolvedValue, err := r.Lookup(ref)
				if err != nil {
					return engine.WrapConfigError(err, "%s %q", category, name)
				}
				value = resolvedValue
			}
			if err := register(name, value); err != nil {
				return engine.WrapConfigError(err, "%s %q", category, name)
			}
		}
		return nil
	}

	if err := install("filter", env.RegisterFilter, filters); err != nil {
		return err
	}
	if err := install("test", env.RegisterTest, tests); err != nil {
		return err
	}
	if err := install("global", env.RegisterGlobal, globals); err != nil {
		return err
	}

	for name, value := range constants {
		if err := env.RegisterGlobal(name, value); err != nil {
			return engine.WrapConfigError(err, "constant %q", name)
		}
	}
	return nil
}
