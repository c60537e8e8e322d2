package bridge

import (
	"net/http"
	"path/filepath"
	"regexp"

	"github.com/goliatone/go-tplbridge/pkg/builtins"
	"github.com/goliatone/go-tplbridge/pkg/engine"
	"github.com/goliatone/go-tplbridge/pkg/engine/pongo"
	"github.com/goliatone/go-tplbridge/pkg/resolve"
	"github.com/goliatone/go-tplbridge/pkg/settings"
)

// Recognized option keys. Anything else in Params.Options is forwarded
// verbatim to the environment factory.
const (
	optAppDirname        = "app_dirname"
	optNewstyleGettext   = "newstyle_gettext"
	optContextProcessors = "context_processors"
	optMatchExtension    = "match_extension"
	optMatchRegex        = "match_regex"
	optEnvironment       = "environment"
	optFilters           = "filters"
	optTests             = "tests"
	optGlobals           = "globals"
	optConstants         = "constants"
	optTranslationEngine = "translation_engine"
	optDebug             = "debug"
	optUndefined         = "undefined"

	optLoader     = "loader"
	optExtensions = "extensions"
	optAutoReload = "auto_reload"
	optAutoescape = "autoescape"
)

// Hardcoded fallbacks applied when neither the options map nor the host
// settings supply a value.
const (
	defaultAppDirname     = "templates"
	defaultMatchExtension = ".jinja"
)

// Params is the construction record a host hands to New. Dirs are explicit
// template directories; AppDirs are application roots searched under the
// resolved app_dirname; Options carries the recognized option keys plus
// anything the environment factory should see.
type Params struct {
	Dirs    []string
	AppDirs []string
	Options map[string]any
}

// ContextProcessor contributes request-derived values to every render.
type ContextProcessor func(r *http.Request) map[string]any

// Config is the immutable resolved configuration of an Engine.
// Reconfiguration means constructing a new Engine.
type Config struct {
	// Dirs is the final template search path: explicit dirs followed by
	// each app dir joined with AppDirname.
	Dirs            []string
	AppDirname      string
	NewstyleGettext bool
	MatchExtension  string
	// MatchRegex holds the configured pattern source, empty when matching
	// by extension.
	MatchRegex string
	// Debug enables per-handle render instrumentation.
	Debug      bool
	Undefined  engine.UndefinedPolicy
	AutoReload bool
	Autoescape bool
	Extensions []string
}

// resolved bundles everything option resolution produces: the immutable
// config, the side-channel extension tables, and the capabilities looked
// up through the resolver.
type resolved struct {
	cfg        Config
	engOpts    engine.Options
	factory    engine.Factory
	translator engine.Translator
	processors []ContextProcessor
	matchRegex *regexp.Regexp

	filters   map[string]any
	tests     map[string]any
	globals   map[string]any
	constants map[string]any
}

// resolveParams merges the layered configuration with precedence: explicit
// option > settings-derived default > hardcoded fallback. The caller's
// Options map is copied, never mutated. Every failure here is fatal to
// construction; nothing is deferred to first render.
func resolveParams(p Params, st *settings.Settings, r *resolve.Resolver) (*resolved, error) {
	opts := make(map[string]any, len(p.Options))
	for key, value := range p.Options {
		opts[key] = value
	}

	res := &resolved{}

	appDirname, err := popString(opts, optAppDirname, defaultAppDirname)
	if err != nil {
		return nil, err
	}
	newstyle, err := popBool(opts, optNewstyleGettext, true)
	if err != nil {
		return nil, err
	}
	matchExtension, err := popString(opts, optMatchExtension, defaultMatchExtension)
	if err != nil {
		return nil, err
	}
	tmplDebug, err := popBool(opts, optDebug, false)
	if err != nil {
		return nil, err
	}

	matchRegex, pattern, err := popRegex(opts)
	if err != nil {
		return nil, err
	}
	res.matchRegex = matchRegex

	res.processors, err = popProcessors(opts, r)
	if err != nil {
		return nil, err
	}
	res.factory, err = popFactory(opts, r)
	if err != nil {
		return nil, err
	}
	res.translator, err = popTranslator(opts, r)
	if err != nil {
		return nil, err
	}

	undefined, err := popUndefined(opts, st, r)
	if err != nil {
		return nil, err
	}

	res.filters, err = popTable(opts, optFilters)
	if err != nil {
		return nil, err
	}
	res.tests, err = popTable(opts, optTests)
	if err != nil {
		return nil, err
	}
	res.globals, err = popTable(opts, optGlobals)
	if err != nil {
		return nil, err
	}
	res.constants, err = popTable(opts, optConstants)
	if err != nil {
		return nil, err
	}

	dirs := templateDirs(p, appDirname)

	// Forwarded options get defaults only when absent.
	loader, _ := popAny(opts, optLoader)
	extensions, err := popStrings(opts, optExtensions, builtins.DefaultExtensions())
	if err != nil {
		return nil, err
	}
	autoReload, err := popBool(opts, optAutoReload, st.Debug())
	if err != nil {
		return nil, err
	}
	autoescape, err := popBool(opts, optAutoescape, true)
	if err != nil {
		return nil, err
	}

	res.cfg = Config{
		Dirs:            dirs,
		AppDirname:      appDirname,
		NewstyleGettext: newstyle,
		MatchExtension:  matchExtension,
		MatchRegex:      pattern,
		Debug:           tmplDebug,
		Undefined:       undefined,
		AutoReload:      autoReload,
		Autoescape:      autoescape,
		Extensions:      extensions,
	}
	res.engOpts = engine.Options{
		Dirs:       dirs,
		Loader:     loader,
		Extensions: extensions,
		AutoReload: autoReload,
		Autoescape: autoescape,
		Undefined:  undefined,
		Extra:      opts,
	}
	return res, nil
}

func templateDirs(p Params, appDirname string) []string {
	dirs := make([]string, 0, len(p.Dirs)+len(p.AppDirs))
	dirs = append(dirs, p.Dirs...)
	for _, app := range p.AppDirs {
		dirs = append(dirs, filepath.Join(app, appDirname))
	}
	return dirs
}

func popAny(opts map[string]any, key string) (any, bool) {
	value, ok := opts[key]
	if ok {
		delete(opts, key)
	}
	return value, ok
}

func popString(opts map[string]any, key, fallback string) (string, error) {
	value, ok := popAny(opts, key)
	if !ok {
		return fallback, nil
	}
	s, ok := value.(string)
	if !ok {
		return "", engine.ConfigError("option %q must be a string, got %T", key, value)
	}
	return s, nil
}

func popBool(opts map[string]any, key string, fallback bool) (bool, error) {
	value, ok := popAny(opts, key)
	if !ok {
		return fallback, nil
	}
	b, ok := value.(bool)
	if !ok {
		return false, engine.ConfigError("option %q must be a bool, got %T", key, value)
	}
	return b, nil
}

func popStrings(opts map[string]any, key string, fallback []string) ([]string, error) {
	value, ok := popAny(opts, key)
	if !ok {
		return fallback, nil
	}
	switch list := value.(type) {
	case []string:
		return list, nil
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, engine.ConfigError("option %q must list strings, got %T", key, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, engine.ConfigError("option %q must be a string list, got %T", key, value)
	}
}

func popTable(opts map[string]any, key string) (map[string]any, error) {
	value, ok := popAny(opts, key)
	if !ok {
		return nil, nil
	}
	table, ok := value.(map[string]any)
	if !ok {
		return nil, engine.ConfigError("option %q must be a map of names to values, got %T", key, value)
	}
	// shallow copy so later caller mutation cannot leak in
	out := make(map[string]any, len(table))
	for name, entry := range table {
		out[name] = entry
	}
	return out, nil
}

// popRegex compiles a match_regex option. The rule tests the full template
// name, so the pattern is anchored.
func popRegex(opts map[string]any) (*regexp.Regexp, string, error) {
	value, ok := popAny(opts, optMatchRegex)
	if !ok || value == nil {
		return nil, "", nil
	}
	switch pattern := value.(type) {
	case string:
		re, err := regexp.Compile("^(?:" + pattern + ")$")
		if err != nil {
			return nil, "", engine.WrapConfigError(err, "option %q", optMatchRegex)
		}
		return re, pattern, nil
	case *regexp.Regexp:
		return pattern, pattern.String(), nil
	default:
		return nil, "", engine.ConfigError("option %q must be a pattern string, got %T", optMatchRegex, value)
	}
}

func popProcessors(opts map[string]any, r *resolve.Resolver) ([]ContextProcessor, error) {
	value, ok := popAny(opts, optContextProcessors)
	if !ok || value == nil {
		return nil, nil
	}

	var entries []any
	switch list := value.(type) {
	case []any:
		entries = list
	case []string:
		for _, s := range list {
			entries = append(entries, s)
		}
	case []ContextProcessor:
		return append([]ContextProcessor(nil), list...), nil
	default:
		return nil, engine.ConfigError("option %q must be a list, got %T", optContextProcessors, value)
	}

	processors := make([]ContextProcessor, 0, len(entries))
	for _, entry := range entries {
		switch processor := entry.(type) {
		case ContextProcessor:
			processors = append(processors, processor)
		case func(*http.Request) map[string]any:
			processors = append(processors, processor)
		case string:
			resolvedValue, err := r.Lookup(processor)
			if err != nil {
				return nil, engine.WrapConfigError(err, "context processor %q", processor)
			}
			fn, err := asProcessor(resolvedValue)
			if err != nil {
				return nil, engine.WrapConfigError(err, "context processor %q", processor)
			}
			processors = append(processors, fn)
		default:
			return nil, engine.ConfigError("context processor must be a func or dotted reference, got %T", entry)
		}
	}
	return processors, nil
}

func asProcessor(value any) (ContextProcessor, error) {
	switch fn := value.(type) {
	case ContextProcessor:
		return fn, nil
	case func(*http.Request) map[string]any:
		return fn, nil
	default:
		return nil, engine.ConfigError("reference resolves to %T, want a context processor", value)
	}
}

func popFactory(opts map[string]any, r *resolve.Resolver) (engine.Factory, error) {
	value, ok := popAny(opts, optEnvironment)
	if !ok || value == nil {
		return pongo.New, nil
	}
	if ref, isRef := value.(string); isRef {
		resolvedValue, err := r.Lookup(ref)
		if err != nil {
			return nil, engine.WrapConfigError(err, "environment factory %q", ref)
		}
		value = resolvedValue
	}
	switch factory := value.(type) {
	case engine.Factory:
		return factory, nil
	case func(engine.Options) (engine.Environment, error):
		return factory, nil
	default:
		return nil, engine.ConfigError("option %q must be an engine factory, got %T", optEnvironment, value)
	}
}

func popTranslator(opts map[string]any, r *resolve.Resolver) (engine.Translator, error) {
	value, ok := popAny(opts, optTranslationEngine)
	if !ok || value == nil {
		return engine.NullTranslator{}, nil
	}
	if ref, isRef := value.(string); isRef {
		resolvedValue, err := r.Lookup(ref)
		if err != nil {
			return nil, engine.WrapConfigError(err, "translation engine %q", ref)
		}
		value = resolvedValue
	}
	translator, ok := value.(engine.Translator)
	if !ok {
		return nil, engine.ConfigError("option %q must be an engine.Translator, got %T", optTranslationEngine, value)
	}
	return translator, nil
}

// popUndefined resolves the missing-variable policy: explicit values win,
// strings name either a builtin policy or a resolver reference, and the
// absent case follows host debug mode (echoing in debug, strict otherwise).
func popUndefined(opts map[string]any, st *settings.Settings, r *resolve.Resolver) (engine.UndefinedPolicy, error) {
	value, ok := popAny(opts, optUndefined)
	if !ok || value == nil {
		if st.Debug() {
			return engine.UndefinedDebug, nil
		}
		return engine.UndefinedStrict, nil
	}
	switch policy := value.(type) {
	case engine.UndefinedPolicy:
		return policy, nil
	case string:
		switch policy {
		case "strict":
			return engine.UndefinedStrict, nil
		case "silent":
			return engine.UndefinedSilent, nil
		case "debug":
			return engine.UndefinedDebug, nil
		}
		resolvedValue, err := r.Lookup(policy)
		if err != nil {
			return 0, engine.WrapConfigError(err, "undefined policy %q", policy)
		}
		p, ok := resolvedValue.(engine.UndefinedPolicy)
		if !ok {
			return 0, engine.ConfigError("undefined policy %q resolves to %T", policy, resolvedValue)
		}
		return p, nil
	default:
		return 0, engine.ConfigError("option %q must be a policy or reference, got %T", optUndefined, value)
	}
}
