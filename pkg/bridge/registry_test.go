package bridge

import (
	"errors"
	"sync"
	"testing"

	"github.com/goliatone/go-tplbridge/pkg/engine"
	"github.com/goliatone/go-tplbridge/pkg/settings"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	backend, err := newFakeEngine(newFakeEnv(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return backend
}

func TestDefaultWithSingleBackend(t *testing.T) {
	backend := newTestEngine(t)
	registry := NewRegistry(func() []any {
		return []any{"not a backend", backend}
	}, nil)

	got, err := registry.Default()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != backend {
		t.Fatal("expected the configured backend")
	}
}

func TestDefaultMemoizesUntilInvalidated(t *testing.T) {
	backend := newTestEngine(t)
	calls := 0
	registry := NewRegistry(func() []any {
		calls++
		return []any{backend}
	}, nil)

	for i := 0; i < 3; i++ {
		if _, err := registry.Default(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected one source scan while cached, got %d", calls)
	}

	registry.Invalidate()
	if _, err := registry.Default(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected recompute after invalidation, got %d scans", calls)
	}
}

func TestDefaultZeroBackends(t *testing.T) {
	registry := NewRegistry(func() []any { return nil }, nil)

	_, err := registry.Default()
	var cfgErr *engine.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestDefaultSeveralBackends(t *testing.T) {
	first := newTestEngine(t)
	second := newTestEngine(t)
	registry := NewRegistry(func() []any { return []any{first, second} }, nil)

	_, err := registry.Default()
	var cfgErr *engine.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestDefaultFailureIsNotCached(t *testing.T) {
	backend := newTestEngine(t)
	var backends []any
	registry := NewRegistry(func() []any { return backends }, nil)

	if _, err := registry.Default(); err == nil {
		t.Fatal("expected error with no backends")
	}

	backends = []any{backend}
	got, err := registry.Default()
	if err != nil {
		t.Fatalf("unexpected error after configuration: %v", err)
	}
	if got != backend {
		t.Fatal("expected the newly configured backend")
	}
}

func TestTemplatesSettingChangeInvalidates(t *testing.T) {
	backend := newTestEngine(t)
	calls := 0
	st := settings.New()
	registry := NewRegistry(func() []any {
		calls++
		return []any{backend}
	}, st)
	defer registry.Close()

	if _, err := registry.Default(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// unrelated settings leave the cache alone
	st.Set(settings.KeyDebug, true)
	if _, err := registry.Default(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected cache to survive unrelated changes, got %d scans", calls)
	}

	st.Set(settings.KeyTemplates, []any{"reconfigured"})
	if _, err := registry.Default(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected recompute after templates change, got %d scans", calls)
	}
}

func TestConcurrentLookupsAndInvalidations(t *testing.T) {
	backend := newTestEngine(t)
	registry := NewRegistry(func() []any { return []any{backend} }, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if got, err := registry.Default(); err != nil || got != backend {
					t.Errorf("lookup failed: %v", err)
					return
				}
			}
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				registry.Invalidate()
			}
		}()
	}
	wg.Wait()
}
