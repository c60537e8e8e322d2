package engine

import "fmt"

// ConfigurationError reports bad, ambiguous, or missing bridge setup:
// unresolvable dotted references, invalid factories, zero or several
// configured backends. It is raised at construction or lookup time and
// never retried.
type ConfigurationError struct {
	Reason string
	Err    error
}

// ConfigError builds a ConfigurationError from a format string.
func ConfigError(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// WrapConfigError builds a ConfigurationError preserving the underlying
// cause.
func WrapConfigError(err error, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...), Err: err}
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("engine: improperly configured: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("engine: improperly configured: %s", e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// NotFoundError reports a template name the bridge does not own or the
// underlying compiler could not locate. It always carries the original
// name so callers can fall back to another backend.
type NotFoundError struct {
	Name string
	Err  error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("engine: template %q does not exist", e.Name)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// SyntaxError re-surfaces a compiler parse failure under the bridge's own
// kind, preserving the original message and source location.
type SyntaxError struct {
	// Name is the template the compiler was parsing.
	Name string
	// Line and Column locate the failure in the source when the compiler
	// reports them; zero otherwise.
	Line   int
	Column int
	// Msg is the compiler's original message text, unchanged.
	Msg string
	Err error
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("engine: template syntax error in %q at line %d column %d: %s",
			e.Name, e.Line, e.Column, e.Msg)
	}
	return fmt.Sprintf("engine: template syntax error in %q: %s", e.Name, e.Msg)
}

func (e *SyntaxError) Unwrap() error { return e.Err }
