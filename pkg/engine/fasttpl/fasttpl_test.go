package fasttpl

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-tplbridge/pkg/engine"
)

func newEnv(t *testing.T, opts engine.Options) engine.Environment {
	t.Helper()
	env, err := New(opts)
	if err != nil {
		t.Fatalf("unexpected construction error: %v", err)
	}
	return env
}

func TestFromStringSubstitution(t *testing.T) {
	env := newEnv(t, engine.Options{})

	tmpl, err := env.FromString("Hello {{name}}!")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	out, err := tmpl.Render(map[string]any{"name": "World"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "Hello World!" {
		t.Fatalf("expected substitution, got %q", out)
	}
}

func TestUndefinedPolicies(t *testing.T) {
	cases := []struct {
		policy  engine.UndefinedPolicy
		want    string
		wantErr bool
	}{
		{engine.UndefinedStrict, "", true},
		{engine.UndefinedSilent, "value: ", false},
		{engine.UndefinedDebug, "value: {{missing}}", false},
	}

	for _, tc := range cases {
		env := newEnv(t, engine.Options{Undefined: tc.policy})
		tmpl, err := env.FromString("value: {{missing}}")
		if err != nil {
			t.Fatalf("policy %v: compile: %v", tc.policy, err)
		}

		out, err := tmpl.Render(nil)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("policy %v: expected render error", tc.policy)
			}
			continue
		}
		if err != nil {
			t.Fatalf("policy %v: render: %v", tc.policy, err)
		}
		if out != tc.want {
			t.Fatalf("policy %v: expected %q, got %q", tc.policy, tc.want, out)
		}
	}
}

func TestGlobalsFallBehindContext(t *testing.T) {
	env := newEnv(t, engine.Options{})
	if err := env.RegisterGlobal("site", "global"); err != nil {
		t.Fatalf("register global: %v", err)
	}

	tmpl, err := env.FromString("{{site}}")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	out, err := tmpl.Render(nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "global" {
		t.Fatalf("expected global fallback, got %q", out)
	}

	out, err = tmpl.Render(map[string]any{"site": "local"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "local" {
		t.Fatalf("expected context to shadow global, got %q", out)
	}
}

func TestGetTemplateSearchPath(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	if err := os.WriteFile(filepath.Join(second, "greet.txt"), []byte("hi {{who}}"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	env := newEnv(t, engine.Options{Dirs: []string{first, second}})

	tmpl, err := env.GetTemplate("greet.txt")
	if err != nil {
		t.Fatalf("get template: %v", err)
	}
	out, err := tmpl.Render(map[string]any{"who": "there"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "hi there" {
		t.Fatalf("expected rendered fixture, got %q", out)
	}
}

func TestGetTemplateNotFound(t *testing.T) {
	env := newEnv(t, engine.Options{Dirs: []string{t.TempDir()}})

	_, err := env.GetTemplate("absent.txt")
	var notFound *engine.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if notFound.Name != "absent.txt" {
		t.Fatalf("expected original name, got %q", notFound.Name)
	}
}

func TestFromStringSyntaxError(t *testing.T) {
	env := newEnv(t, engine.Options{})

	_, err := env.FromString("Hello {{name")
	var syntax *engine.SyntaxError
	if !errors.As(err, &syntax) {
		t.Fatalf("expected SyntaxError, got %v", err)
	}
}

func TestRejectsLoaderOverride(t *testing.T) {
	_, err := New(engine.Options{Loader: struct{}{}})
	var cfgErr *engine.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}
