package bridge

import (
	"sync"

	"github.com/goliatone/go-tplbridge/pkg/engine"
	"github.com/goliatone/go-tplbridge/pkg/settings"
)

// EngineSource yields every template backend the host has configured,
// regardless of kind. The registry filters it down to bridge engines.
type EngineSource func() []any

// Registry memoizes the single configured bridge backend. It is the only
// process-wide mutable state in the package: the cache is cleared whenever
// the host's template configuration setting changes, and invalidation is
// safe against in-flight lookups (a racing caller may still receive the
// value cached before the change).
type Registry struct {
	source EngineSource

	mu     sync.Mutex
	cached *Engine

	unsubscribe func()
}

// NewRegistry builds a registry over source. When st is non-nil the
// registry subscribes to its change notifications and invalidates on the
// templates key, ignoring every other setting.
func NewRegistry(source EngineSource, st *settings.Settings) *Registry {
	r := &Registry{source: source}
	if st != nil {
		r.unsubscribe = st.Subscribe(func(key string) {
			if key == settings.KeyTemplates {
				r.Invalidate()
			}
		})
	}
	return r
}

// Default returns the one configured bridge backend, memoized after the
// first successful call. Zero configured backends or several both fail
// with *engine.ConfigurationError; failures are never cached.
func (r *Registry) Default() (*Engine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cached != nil {
		return r.cached, nil
	}

	var matches []*Engine
	for _, backend := range r.source() {
		if e, ok := backend.(*Engine); ok {
			matches = append(matches, e)
		}
	}

	switch len(matches) {
	case 1:
		r.cached = matches[0]
		return matches[0], nil
	case 0:
		return nil, engine.ConfigError("no bridge backend is configured")
	default:
		return nil, engine.ConfigError("several bridge backends are configured, select one explicitly")
	}
}

// Invalidate clears the memoized lookup so the next Default recomputes.
func (r *Registry) Invalidate() {
	r.mu.Lock()
	r.cached = nil
	r.mu.Unlock()
}

// Close drops the settings subscription.
func (r *Registry) Close() {
	if r.unsubscribe != nil {
		r.unsubscribe()
		r.unsubscribe = nil
	}
}
