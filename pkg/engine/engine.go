package engine

// UndefinedPolicy selects how a compiled environment treats references to
// variables missing from the render context.
type UndefinedPolicy int

const (
	// UndefinedStrict fails the render when a missing variable is read.
	UndefinedStrict UndefinedPolicy = iota
	// UndefinedSilent renders missing variables as empty output.
	UndefinedSilent
	// UndefinedDebug echoes the placeholder back into the output so
	// missing values stay visible during development.
	UndefinedDebug
)

// String returns the policy name used in configuration documents.
func (p UndefinedPolicy) String() string {
	switch p {
	case UndefinedStrict:
		return "strict"
	case UndefinedSilent:
		return "silent"
	case UndefinedDebug:
		return "debug"
	default:
		return "unknown"
	}
}

// Options carries the merged configuration a Factory receives. Known keys
// resolved by the bridge land in typed fields; everything the bridge did
// not consume is forwarded verbatim through Extra for backend-specific
// interpretation.
type Options struct {
	// Dirs lists the template search path in priority order.
	Dirs []string
	// Loader optionally overrides the backend's file-system loader. Its
	// concrete type is backend-specific; a nil Loader means the backend
	// builds its own loader rooted at Dirs.
	Loader any
	// Extensions names the built-in filter groups to install.
	Extensions []string
	// AutoReload disables compiled-template caching so edits on disk are
	// picked up without a restart.
	AutoReload bool
	// Autoescape enables HTML escaping of interpolated values.
	Autoescape bool
	// Undefined selects the missing-variable policy.
	Undefined UndefinedPolicy
	// Extra holds unconsumed options forwarded verbatim.
	Extra map[string]any
}

// Factory builds an Environment from resolved options. Construction
// failures are fatal to the caller; a Factory must never defer validation
// to first render.
type Factory func(Options) (Environment, error)

// Template is a compiled template owned by the underlying environment.
type Template interface {
	// Render executes the template against the supplied context and
	// returns the output. The context is read, never retained.
	Render(context map[string]any) (string, error)
	// Name reports the lookup name the template was compiled under, or
	// "<string>" for templates compiled from source.
	Name() string
}

// Environment is the compiled, shared engine state. It is built once at
// bridge construction and treated as read-mostly afterwards: registration
// methods are only called during construction, render paths never mutate
// it.
type Environment interface {
	// FromString compiles template source. Parse failures surface as
	// *SyntaxError.
	FromString(source string) (Template, error)
	// GetTemplate loads and compiles a template by name. A missing
	// template surfaces as *NotFoundError, a parse failure as
	// *SyntaxError.
	GetTemplate(name string) (Template, error)
	// RegisterFilter installs a named filter. Registering an existing
	// name replaces the previous entry.
	RegisterFilter(name string, fn any) error
	// RegisterTest installs a named test. Registering an existing name
	// replaces the previous entry.
	RegisterTest(name string, fn any) error
	// RegisterGlobal installs a value into the global namespace shared by
	// every template.
	RegisterGlobal(name string, value any) error
	// InstallTranslations wires the translation helpers to the supplied
	// translator.
	InstallTranslations(t Translator, newstyle bool)
	// InstallNullTranslations wires pass-through translation helpers.
	InstallNullTranslations(newstyle bool)
}

// Translator supplies message translations to the template helpers.
type Translator interface {
	Gettext(msgid string) string
	NGettext(singular, plural string, n int) string
}

// NullTranslator passes messages through untranslated.
type NullTranslator struct{}

// Gettext returns msgid unchanged.
func (NullTranslator) Gettext(msgid string) string { return msgid }

// NGettext picks the grammatical form for n without translating it.
func (NullTranslator) NGettext(singular, plural string, n int) string {
	if n == 1 {
		return singular
	}
	return plural
}
