package bridge

import "testing"

func TestMatchesDefaultExtension(t *testing.T) {
	env := newFakeEnv()
	backend, err := newFakeEngine(env, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !backend.Matches("a.jinja") {
		t.Fatal("expected a.jinja to match the default extension")
	}
	if backend.Matches("a.txt") {
		t.Fatal("expected a.txt to be rejected")
	}
}

func TestMatchesConfiguredExtension(t *testing.T) {
	env := newFakeEnv()
	backend, err := newFakeEngine(env, map[string]any{optMatchExtension: ".tpl"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !backend.Matches("layout.tpl") {
		t.Fatal("expected layout.tpl to match")
	}
	if backend.Matches("layout.jinja") {
		t.Fatal("expected the default extension to be replaced")
	}
	if backend.MatchExtension() != ".tpl" {
		t.Fatalf("expected .tpl, got %q", backend.MatchExtension())
	}
}

func TestRegexRuleIgnoresExtension(t *testing.T) {
	env := newFakeEnv()
	backend, err := newFakeEngine(env, map[string]any{
		optMatchExtension: ".jinja",
		optMatchRegex:     `.*\.j2`,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !backend.Matches("x.j2") {
		t.Fatal("expected regex to match x.j2")
	}
	if backend.Matches("x.jinja") {
		t.Fatal("expected configured extension to be ignored when a regex is set")
	}
}

func TestRegexMatchesFullName(t *testing.T) {
	env := newFakeEnv()
	backend, err := newFakeEngine(env, map[string]any{optMatchRegex: `pages/.*\.j2`})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !backend.Matches("pages/home.j2") {
		t.Fatal("expected full-name match")
	}
	if backend.Matches("admin/pages/home.j2") {
		t.Fatal("expected pattern to be anchored to the full name")
	}
}
