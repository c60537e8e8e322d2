// Package resolve maps dotted-path references to registered values. It is
// the single funnel for every string-as-reference option the bridge
// accepts (filters, tests, globals, context processors, environment
// factories, translators, undefined policies), which keeps the dynamic
// lookup explicit and trivial to fake in tests.
package resolve

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Resolver stores values under dotted paths such as
// "myapp.filters.shout". Registration normally happens at init time;
// lookups happen during bridge construction.
type Resolver struct {
	mu      sync.RWMutex
	symbols map[string]any
}

// New creates an empty resolver.
func New() *Resolver {
	return &Resolver{symbols: make(map[string]any)}
}

// Register stores value under path. Re-registering a path replaces the
// previous value.
func (r *Resolver) Register(path string, value any) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("resolve: reference path is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.symbols[path] = value
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Resolver) MustRegister(path string, value any) {
	if err := r.Register(path, value); err != nil {
		panic(err)
	}
}

// Lookup returns the value registered under path. Unknown paths return an
// error naming the path; callers treat that as a fatal configuration
// problem, never as a deferred condition.
func (r *Resolver) Lookup(path string) (any, error) {
	path = strings.TrimSpace(path)

	r.mu.RLock()
	defer r.mu.RUnlock()

	value, ok := r.symbols[path]
	if !ok {
		return nil, fmt.Errorf("resolve: no value registered for reference %q", path)
	}
	return value, nil
}

// Paths returns the registered reference paths, sorted.
func (r *Resolver) Paths() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	paths := make([]string, 0, len(r.symbols))
	for path := range r.symbols {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

var defaultResolver = New()

// Default returns the process-wide resolver used when a bridge is
// constructed without an explicit one.
func Default() *Resolver { return defaultResolver }

// Register stores value under path in the default resolver.
func Register(path string, value any) error {
	return defaultResolver.Register(path, value)
}

// MustRegister panics on registration failure in the default resolver.
func MustRegister(path string, value any) {
	defaultResolver.MustRegister(path, value)
}

// Lookup resolves path against the default resolver.
func Lookup(path string) (any, error) {
	return defaultResolver.Lookup(path)
}
