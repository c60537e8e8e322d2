package bridge

import (
	"github.com/goliatone/go-tplbridge/pkg/engine"
)

// fakeEnv is a minimal engine.Environment for exercising the adapter
// without a real compiler.
type fakeEnv struct {
	opts engine.Options

	getCalls  int
	fromCalls int
	getErr    error
	fromErr   error

	filters   map[string]any
	tests     map[string]any
	globals   map[string]any
	nullI18N  bool
	translate engine.Translator

	lastContext map[string]any
	renderOut   string
	renderErr   error
}

func newFakeEnv() *fakeEnv {
	return &fakeEnv{
		filters: make(map[string]any),
		tests:   make(map[string]any),
		globals: make(map[string]any),
	}
}

// factory returns an engine.Factory producing this fake and recording the
// options it was called with.
func (f *fakeEnv) factory() func(engine.Options) (engine.Environment, error) {
	return func(opts engine.Options) (engine.Environment, error) {
		f.opts = opts
		return f, nil
	}
}

func (f *fakeEnv) FromString(source string) (engine.Template, error) {
	f.fromCalls++
	if f.fromErr != nil {
		return nil, f.fromErr
	}
	return &fakeTemplate{env: f, name: "<string>"}, nil
}

func (f *fakeEnv) GetTemplate(name string) (engine.Template, error) {
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &fakeTemplate{env: f, name: name}, nil
}

func (f *fakeEnv) RegisterFilter(name string, fn any) error {
	f.filters[name] = fn
	return nil
}

func (f *fakeEnv) RegisterTest(name string, fn any) error {
	f.tests[name] = fn
	return nil
}

func (f *fakeEnv) RegisterGlobal(name string, value any) error {
	f.globals[name] = value
	return nil
}

func (f *fakeEnv) InstallTranslations(t engine.Translator, newstyle bool) {
	f.translate = t
}

func (f *fakeEnv) InstallNullTranslations(newstyle bool) {
	f.nullI18N = true
}

type fakeTemplate struct {
	env  *fakeEnv
	name string
}

func (t *fakeTemplate) Name() string { return t.name }

func (t *fakeTemplate) Render(context map[string]any) (string, error) {
	t.env.lastContext = context
	if t.env.renderErr != nil {
		return "", t.env.renderErr
	}
	if t.env.renderOut != "" {
		return t.env.renderOut, nil
	}
	return "rendered", nil
}

// newFakeEngine builds an Engine backed by env, with extra options merged
// into the construction record.
func newFakeEngine(env *fakeEnv, options map[string]any, opts ...Option) (*Engine, error) {
	merged := map[string]any{optEnvironment: env.factory()}
	for key, value := range options {
		merged[key] = value
	}
	return New(Params{Dirs: []string{"templates"}, Options: merged}, opts...)
}
