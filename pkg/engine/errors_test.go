package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"
)

func TestConfigurationError(t *testing.T) {
	err := ConfigError("no backend is configured")
	if !strings.Contains(err.Error(), "improperly configured") {
		t.Fatalf("unexpected message: %q", err)
	}

	wrapped := WrapConfigError(fs.ErrNotExist, "loader for %q", "/tmp/x")
	if !errors.Is(wrapped, fs.ErrNotExist) {
		t.Fatal("expected wrapped cause to survive errors.Is")
	}
	if !strings.Contains(wrapped.Error(), "/tmp/x") {
		t.Fatalf("expected reason in message, got %q", wrapped)
	}
}

func TestNotFoundErrorCarriesName(t *testing.T) {
	err := &NotFoundError{Name: "pages/home.jinja"}
	if !strings.Contains(err.Error(), "pages/home.jinja") {
		t.Fatalf("expected name in message, got %q", err)
	}

	var target *NotFoundError
	wrapped := fmt.Errorf("lookup: %w", err)
	if !errors.As(wrapped, &target) {
		t.Fatal("expected errors.As to find NotFoundError through wrapping")
	}
	if target.Name != "pages/home.jinja" {
		t.Fatalf("expected original name, got %q", target.Name)
	}
}

func TestSyntaxErrorPreservesLocation(t *testing.T) {
	cause := errors.New("unexpected end of block")
	err := &SyntaxError{Name: "bad.jinja", Line: 3, Column: 7, Msg: cause.Error(), Err: cause}

	msg := err.Error()
	if !strings.Contains(msg, "line 3") || !strings.Contains(msg, "column 7") {
		t.Fatalf("expected location in message, got %q", msg)
	}
	if !strings.Contains(msg, "unexpected end of block") {
		t.Fatalf("expected original message preserved, got %q", msg)
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected original error to survive errors.Is")
	}
}

func TestNullTranslator(t *testing.T) {
	var tr Translator = NullTranslator{}

	if got := tr.Gettext("hello"); got != "hello" {
		t.Fatalf("expected pass-through, got %q", got)
	}
	if got := tr.NGettext("item", "items", 1); got != "item" {
		t.Fatalf("expected singular for n=1, got %q", got)
	}
	if got := tr.NGettext("item", "items", 3); got != "items" {
		t.Fatalf("expected plural for n=3, got %q", got)
	}
}

func TestUndefinedPolicyString(t *testing.T) {
	cases := map[UndefinedPolicy]string{
		UndefinedStrict:     "strict",
		UndefinedSilent:     "silent",
		UndefinedDebug:      "debug",
		UndefinedPolicy(99): "unknown",
	}
	for policy, want := range cases {
		if got := policy.String(); got != want {
			t.Fatalf("policy %d = %q, want %q", policy, got, want)
		}
	}
}
