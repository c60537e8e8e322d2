package bridge

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"

	"github.com/goliatone/go-tplbridge/pkg/engine"
	"github.com/goliatone/go-tplbridge/pkg/instrument"
	"github.com/goliatone/go-tplbridge/pkg/resolve"
	"github.com/goliatone/go-tplbridge/pkg/settings"
)

// TokenFunc obtains the CSRF token for a request. A false return means the
// host has no token for this request; the render context then resolves the
// csrf_token key to the NOTPROVIDED sentinel.
type TokenFunc func(r *http.Request) (string, bool)

// Option customises Engine construction (collaborator injection).
type Option func(*engineOptions)

type engineOptions struct {
	name     string
	settings *settings.Settings
	resolver *resolve.Resolver
	bus      *instrument.Bus
	token    TokenFunc
}

// WithName labels the backend instance; useful when the host configures
// several backends.
func WithName(name string) Option {
	return func(o *engineOptions) {
		o.name = name
	}
}

// WithSettings injects the host configuration. Defaults to an empty store
// (debug off, i18n off).
func WithSettings(st *settings.Settings) Option {
	return func(o *engineOptions) {
		o.settings = st
	}
}

// WithResolver injects the dotted-reference resolver. Defaults to
// resolve.Default().
func WithResolver(r *resolve.Resolver) Option {
	return func(o *engineOptions) {
		o.resolver = r
	}
}

// WithInstrumentation injects the render-instrumentation bus that receives
// "template rendered" events for debug-enabled handles.
func WithInstrumentation(bus *instrument.Bus) Option {
	return func(o *engineOptions) {
		o.bus = bus
	}
}

// WithTokenFunc overrides how the CSRF token is obtained from a request.
func WithTokenFunc(fn TokenFunc) Option {
	return func(o *engineOptions) {
		o.token = fn
	}
}

// Engine is the bridge backend: one configured compiler environment plus
// the resolved adapter state. It is constructed once per configuration
// entry and shared by every in-flight render afterwards; nothing on the
// render path mutates it.
type Engine struct {
	name       string
	env        engine.Environment
	config     Config
	matchRegex *regexp.Regexp
	processors []ContextProcessor
	bus        *instrument.Bus
	token      TokenFunc
}

// New resolves params into an immutable configuration, constructs the
// compiler environment through the resolved factory, installs translations
// and extension points, and returns the ready backend. Any unresolvable
// reference, invalid option, or factory failure is returned immediately as
// *engine.ConfigurationError.
func New(params Params, opts ...Option) (*Engine, error) {
	o := engineOptions{
		name:  "tplbridge",
		token: defaultTokenFunc,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&o)
	}
	if o.settings == nil {
		o.settings = settings.New()
	}
	if o.resolver == nil {
		o.resolver = resolve.Default()
	}

	res, err := resolveParams(params, o.settings, o.resolver)
	if err != nil {
		return nil, err
	}

	env, err := res.factory(res.engOpts)
	if err != nil {
		var cfgErr *engine.ConfigurationError
		if errors.As(err, &cfgErr) {
			return nil, err
		}
		return nil, engine.WrapConfigError(err, "environment factory failed")
	}

	if o.settings.UseI18N() {
		env.InstallTranslations(res.translator, res.cfg.NewstyleGettext)
	} else {
		env.InstallNullTranslations(res.cfg.NewstyleGettext)
	}

	if err := installBuiltins(env, o.resolver, res.filters, res.tests, res.globals, res.constants); err != nil {
		return nil, err
	}

	return &Engine{
		name:       o.name,
		env:        env,
		config:     res.cfg,
		matchRegex: res.matchRegex,
		processors: res.processors,
		bus:        o.bus,
		token:      o.token,
	}, nil
}

// Name reports the backend label.
func (e *Engine) Name() string { return e.name }

// Config returns a copy of the resolved configuration.
func (e *Engine) Config() Config {
	cfg := e.config
	cfg.Dirs = append([]string(nil), e.config.Dirs...)
	cfg.Extensions = append([]string(nil), e.config.Extensions...)
	return cfg
}

// MatchExtension reports the configured extension suffix.
func (e *Engine) MatchExtension() string { return e.config.MatchExtension }

// FromString compiles template source into a handle. Parse failures
// surface as *engine.SyntaxError.
func (e *Engine) FromString(code string) (*Template, error) {
	tmpl, err := e.env.FromString(code)
	if err != nil {
		return nil, normalizeLookupError("<string>", err)
	}
	return e.wrap(tmpl), nil
}

// GetTemplate returns a handle for name. Names the matcher rejects fail
// fast with *engine.NotFoundError without ever reaching the underlying
// compiler.
func (e *Engine) GetTemplate(name string) (*Template, error) {
	if !e.Matches(name) {
		return nil, &engine.NotFoundError{Name: name}
	}
	tmpl, err := e.env.GetTemplate(name)
	if err != nil {
		return nil, normalizeLookupError(name, err)
	}
	return e.wrap(tmpl), nil
}

func (e *Engine) wrap(tmpl engine.Template) *Template {
	return &Template{
		tmpl:    tmpl,
		backend: e,
		debug:   e.config.Debug,
	}
}

// normalizeLookupError keeps the adapter's error taxonomy tight: the known
// kinds pass through untouched, anything else is wrapped with the template
// name for context.
func normalizeLookupError(name string, err error) error {
	var notFound *engine.NotFoundError
	var syntax *engine.SyntaxError
	if errors.As(err, &notFound) || errors.As(err, &syntax) {
		return err
	}
	return fmt.Errorf("bridge: load template %q: %w", name, err)
}

type tokenCtxKey struct{}

// RequestWithToken returns a copy of r carrying token where the default
// TokenFunc finds it. Host middleware that issues CSRF tokens stashes them
// here.
func RequestWithToken(r *http.Request, token string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), tokenCtxKey{}, token))
}

func defaultTokenFunc(r *http.Request) (string, bool) {
	token, ok := r.Context().Value(tokenCtxKey{}).(string)
	return token, ok
}
