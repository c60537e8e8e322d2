// Package pongo implements the engine contracts on top of
// github.com/flosch/pongo2, the Jinja-syntax compiler the bridge uses by
// default. The bridge never imports pongo2 directly; everything flows
// through engine.Environment so backends stay swappable.
package pongo

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-tplbridge/pkg/builtins"
	"github.com/goliatone/go-tplbridge/pkg/engine"
)

const stringTemplateName = "<string>"

// Environment wraps a pongo2 template set. Registration methods run only
// during bridge construction; render paths treat the set as read-only.
type Environment struct {
	set       *pongo2.TemplateSet
	undefined engine.UndefinedPolicy
	newstyle  bool
}

var _ engine.Environment = (*Environment)(nil)

// New builds a pongo2 environment from resolved options. It satisfies
// engine.Factory and is the bridge's default compiler factory.
//
// Options.Loader, when set, must be a pongo2.TemplateLoader; otherwise one
// local file-system loader is created per entry in Options.Dirs.
// Options.AutoReload maps to the set's Debug flag, which disables compiled
// template caching. Autoescape is process-wide in pongo2.
func New(opts engine.Options) (engine.Environment, error) {
	var loaders []pongo2.TemplateLoader

	if opts.Loader != nil {
		loader, ok := opts.Loader.(pongo2.TemplateLoader)
		if !ok {
			return nil, engine.ConfigError("pongo loader must implement pongo2.TemplateLoader, got %T", opts.Loader)
		}
		loaders = append(loaders, loader)
	} else {
		for _, dir := range opts.Dirs {
			loader, err := pongo2.NewLocalFileSystemLoader(dir)
			if err != nil {
				return nil, engine.WrapConfigError(err, "pongo loader for %q", dir)
			}
			loaders = append(loaders, loader)
		}
	}

	if len(loaders) == 0 {
		// String-only environments are legal; pongo2 still wants a loader.
		loaders = append(loaders, pongo2.MustNewLocalFileSystemLoader(""))
	}

	set := pongo2.NewSet("tplbridge", loaders...)
	set.Debug = opts.AutoReload
	set.Globals = make(pongo2.Context)
	pongo2.SetAutoescape(opts.Autoescape)

	env := &Environment{
		set:       set,
		undefined: opts.Undefined,
	}

	for _, group := range opts.Extensions {
		filters, err := builtins.Group(group)
		if err != nil {
			return nil, engine.WrapConfigError(err, "pongo extension group %q", group)
		}
		for name, fn := range filters {
			if err := env.RegisterFilter(name, fn); err != nil {
				return nil, engine.WrapConfigError(err, "pongo builtin filter %q", name)
			}
		}
	}

	return env, nil
}

// Policy reports the configured missing-variable policy. pongo2 renders
// missing variables as empty output; custom tags and filters can consult
// the policy to tighten that.
func (e *Environment) Policy() engine.UndefinedPolicy { return e.undefined }

// FromString compiles template source.
func (e *Environment) FromString(source string) (engine.Template, error) {
	tmpl, err := e.set.FromString(source)
	if err != nil {
		return nil, translateError(stringTemplateName, err)
	}
	return &template{tmpl: tmpl, name: stringTemplateName}, nil
}

// GetTemplate loads a template through the set's loaders.
func (e *Environment) GetTemplate(name string) (engine.Template, error) {
	tmpl, err := e.set.FromFile(name)
	if err != nil {
		return nil, translateError(name, err)
	}
	return &template{tmpl: tmpl, name: name}, nil
}

// RegisterFilter installs fn under name, replacing any existing filter.
// fn is either a builtins.Filter-shaped func or a raw
// pongo2.FilterFunction. Filter registration is process-wide in pongo2.
func (e *Environment) RegisterFilter(name string, fn any) error {
	name = strings.TrimSpace(name)
	if name == "" || fn == nil {
		return errors.New("pongo: filter name and function required")
	}

	filter, err := asFilterFunction(fn)
	if err != nil {
		return fmt.Errorf("pongo: filter %q: %w", name, err)
	}

	if pongo2.FilterExists(name) {
		return pongo2.ReplaceFilter(name, filter)
	}
	return pongo2.RegisterFilter(name, filter)
}

// RegisterTest installs fn as a callable in the global namespace. pongo2
// has no separate test registry, so tests are invoked as functions:
// {% if is_even(n) %}.
func (e *Environment) RegisterTest(name string, fn any) error {
	name = strings.TrimSpace(name)
	if name == "" || fn == nil {
		return errors.New("pongo: test name and function required")
	}
	e.set.Globals[name] = fn
	return nil
}

// RegisterGlobal installs value into the set's global context.
func (e *Environment) RegisterGlobal(name string, value any) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("pongo: global name required")
	}
	e.set.Globals[name] = value
	return nil
}

// InstallTranslations wires the gettext helpers to t. With newstyle
// enabled the helpers interpolate trailing arguments themselves
// (fmt.Sprintf rules); oldstyle returns the raw translated string for the
// template to format.
func (e *Environment) InstallTranslations(t engine.Translator, newstyle bool) {
	e.newstyle = newstyle

	gettext := func(msgid string, args ...any) string {
		msg := t.Gettext(msgid)
		if newstyle && len(args) > 0 {
			return fmt.Sprintf(msg, args...)
		}
		return msg
	}
	ngettext := func(singular, plural string, n int, args ...any) string {
		msg := t.NGettext(singular, plural, n)
		if newstyle && len(args) > 0 {
			return fmt.Sprintf(msg, args...)
		}
		return msg
	}

	e.set.Globals["gettext"] = gettext
	e.set.Globals["ngettext"] = ngettext
	e.set.Globals["_"] = gettext
}

// InstallNullTranslations wires pass-through gettext helpers.
func (e *Environment) InstallNullTranslations(newstyle bool) {
	e.InstallTranslations(engine.NullTranslator{}, newstyle)
}

type template struct {
	tmpl *pongo2.Template
	name string
}

func (t *template) Name() string { return t.name }

func (t *template) Render(context map[string]any) (string, error) {
	out, err := t.tmpl.Execute(pongo2.Context(context))
	if err != nil {
		return "", fmt.Errorf("pongo: execute template %q: %w", t.name, err)
	}
	return out, nil
}

// asFilterFunction adapts the supported filter shapes to pongo2's own.
func asFilterFunction(fn any) (pongo2.FilterFunction, error) {
	switch f := fn.(type) {
	case pongo2.FilterFunction:
		return f, nil
	case func(*pongo2.Value, *pongo2.Value) (*pongo2.Value, *pongo2.Error):
		return f, nil
	case builtins.Filter:
		return adaptFilter(f), nil
	case func(any, any) (any, error):
		return adaptFilter(f), nil
	default:
		return nil, fmt.Errorf("unsupported filter type %T", fn)
	}
}

func adaptFilter(fn func(any, any) (any, error)) pongo2.FilterFunction {
	return func(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var paramVal any
		if param != nil {
			paramVal = param.Interface()
		}
		result, err := fn(in.Interface(), paramVal)
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter", OrigError: err}
		}
		return pongo2.AsValue(result), nil
	}
}

// translateError maps pongo2 failures to the bridge's normalized kinds:
// missing files become NotFoundError, everything else at compile time is a
// SyntaxError carrying pongo2's message and source position.
func translateError(name string, err error) error {
	var perr *pongo2.Error
	if errors.As(err, &perr) {
		if isNotFound(perr.OrigError) {
			return &engine.NotFoundError{Name: name, Err: err}
		}
		msg := err.Error()
		if perr.OrigError != nil {
			msg = perr.OrigError.Error()
		}
		return &engine.SyntaxError{
			Name:   name,
			Line:   perr.Line,
			Column: perr.Column,
			Msg:    msg,
			Err:    err,
		}
	}
	if isNotFound(err) {
		return &engine.NotFoundError{Name: name, Err: err}
	}
	return &engine.SyntaxError{Name: name, Msg: err.Error(), Err: err}
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, fs.ErrNotExist) {
		return true
	}
	return strings.Contains(err.Error(), "unable to resolve template")
}
