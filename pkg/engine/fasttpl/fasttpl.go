// Package fasttpl implements the engine contracts on top of
// valyala/fasttemplate. It only does {{name}} substitution with no filter
// pipeline, which makes it a cheap backend for placeholder-style templates
// and a second proof of the bridge's pluggable-factory seam. Unlike pongo,
// it enforces the undefined policy at render time.
package fasttpl

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/valyala/fasttemplate"

	"github.com/goliatone/go-tplbridge/pkg/engine"
)

const (
	startTag = "{{"
	endTag   = "}}"

	stringTemplateName = "<string>"
)

// Environment loads placeholder templates from a directory search path.
type Environment struct {
	dirs      []string
	undefined engine.UndefinedPolicy
	globals   map[string]any

	// filters and tests are accepted for interface compatibility; the
	// fasttemplate syntax has no way to reference them.
	filters map[string]any
	tests   map[string]any
}

var _ engine.Environment = (*Environment)(nil)

// New builds a fasttemplate environment. It satisfies engine.Factory.
// Loader overrides and autoescape are not supported by this backend and
// are rejected rather than silently dropped.
func New(opts engine.Options) (engine.Environment, error) {
	if opts.Loader != nil {
		return nil, engine.ConfigError("fasttpl backend does not accept a loader override, got %T", opts.Loader)
	}
	return &Environment{
		dirs:      append([]string(nil), opts.Dirs...),
		undefined: opts.Undefined,
		globals:   make(map[string]any),
		filters:   make(map[string]any),
		tests:     make(map[string]any),
	}, nil
}

// FromString parses placeholder source. fasttemplate reports unclosed tags
// as parse failures, surfaced as *engine.SyntaxError.
func (e *Environment) FromString(source string) (engine.Template, error) {
	return e.compile(stringTemplateName, source)
}

// GetTemplate reads name from the directory search path, first hit wins.
func (e *Environment) GetTemplate(name string) (engine.Template, error) {
	for _, dir := range e.dirs {
		source, err := os.ReadFile(filepath.Join(dir, name))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("fasttpl: read template %q: %w", name, err)
		}
		return e.compile(name, string(source))
	}
	return nil, &engine.NotFoundError{Name: name, Err: fs.ErrNotExist}
}

func (e *Environment) compile(name, source string) (engine.Template, error) {
	tmpl, err := fasttemplate.NewTemplate(source, startTag, endTag)
	if err != nil {
		return nil, &engine.SyntaxError{Name: name, Msg: err.Error(), Err: err}
	}
	return &template{tmpl: tmpl, name: name, env: e}, nil
}

// RegisterFilter records fn without wiring it anywhere: fasttemplate has
// no filter pipeline, so a registered filter can never be referenced by a
// template. Kept so environments built by the shared installer stay
// inspectable.
func (e *Environment) RegisterFilter(name string, fn any) error {
	name = strings.TrimSpace(name)
	if name == "" || fn == nil {
		return errors.New("fasttpl: filter name and function required")
	}
	e.filters[name] = fn
	return nil
}

// RegisterTest records fn; see RegisterFilter.
func (e *Environment) RegisterTest(name string, fn any) error {
	name = strings.TrimSpace(name)
	if name == "" || fn == nil {
		return errors.New("fasttpl: test name and function required")
	}
	e.tests[name] = fn
	return nil
}

// RegisterGlobal installs value beneath every render context.
func (e *Environment) RegisterGlobal(name string, value any) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("fasttpl: global name required")
	}
	e.globals[name] = value
	return nil
}

// InstallTranslations is a no-op for this backend: without call syntax the
// templates cannot reach a gettext helper.
func (e *Environment) InstallTranslations(engine.Translator, bool) {}

// InstallNullTranslations is a no-op for this backend.
func (e *Environment) InstallNullTranslations(bool) {}

type template struct {
	tmpl *fasttemplate.Template
	name string
	env  *Environment
}

func (t *template) Name() string { return t.name }

// Render substitutes placeholders from the context, falling back to the
// environment globals, and applies the undefined policy to anything still
// missing.
func (t *template) Render(context map[string]any) (string, error) {
	out, err := t.tmpl.ExecuteFuncStringWithErr(func(w io.Writer, tag string) (int, error) {
		value, ok := context[tag]
		if !ok {
			value, ok = t.env.globals[tag]
		}
		if !ok {
			switch t.env.undefined {
			case engine.UndefinedSilent:
				return 0, nil
			case engine.UndefinedDebug:
				return io.WriteString(w, startTag+tag+endTag)
			default:
				return 0, fmt.Errorf("fasttpl: undefined variable %q", tag)
			}
		}
		return fmt.Fprintf(w, "%v", value)
	})
	if err != nil {
		return "", fmt.Errorf("fasttpl: execute template %q: %w", t.name, err)
	}
	return out, nil
}
