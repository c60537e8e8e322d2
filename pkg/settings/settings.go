// Package settings models the host application's configuration surface as
// the bridge consumes it: a debug flag, an internationalization flag, a
// keyed value store, and change notifications so process-wide caches can
// invalidate when the template configuration is replaced.
package settings

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Well-known setting keys.
const (
	// KeyDebug toggles host debug mode.
	KeyDebug = "debug"
	// KeyUseI18N toggles translation support.
	KeyUseI18N = "use_i18n"
	// KeyTemplates holds the host's template backend configuration. The
	// engine registry invalidates its cache when this key changes.
	KeyTemplates = "templates"
)

// Settings is a concurrency-safe keyed store with change notifications.
// Readers vastly outnumber writers; writes happen at startup or during
// test reconfiguration.
type Settings struct {
	mu     sync.RWMutex
	values map[string]any

	subMu  sync.Mutex
	nextID int
	subs   map[int]func(key string)
}

// New creates an empty settings store (debug off, i18n off).
func New() *Settings {
	return &Settings{
		values: make(map[string]any),
		subs:   make(map[int]func(key string)),
	}
}

// Parse builds a Settings from a YAML document of key/value pairs.
func Parse(data []byte) (*Settings, error) {
	values := make(map[string]any)
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("settings: parse document: %w", err)
	}

	s := New()
	for key, value := range values {
		s.values[key] = value
	}
	return s, nil
}

// Load reads a YAML settings document from disk.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("settings: read %q: %w", path, err)
	}
	return Parse(data)
}

// Get returns the raw value stored under key.
func (s *Settings) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]
	return value, ok
}

// Bool reads key as a boolean, returning false for missing or non-boolean
// values.
func (s *Settings) Bool(key string) bool {
	value, ok := s.Get(key)
	if !ok {
		return false
	}
	b, _ := value.(bool)
	return b
}

// Debug reports whether the host runs in debug mode.
func (s *Settings) Debug() bool { return s.Bool(KeyDebug) }

// UseI18N reports whether the host has translation support enabled.
func (s *Settings) UseI18N() bool { return s.Bool(KeyUseI18N) }

// Set stores value under key and notifies subscribers with the key name.
// Notification is synchronous and fire-and-forget.
func (s *Settings) Set(key string, value any) {
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()

	s.notify(key)
}

func (s *Settings) notify(key string) {
	s.subMu.Lock()
	subs := make([]func(string), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subMu.Unlock()

	for _, fn := range subs {
		fn(key)
	}
}

// Subscribe registers fn to run after every Set, receiving the changed
// key. The returned cancel func removes the subscription.
func (s *Settings) Subscribe(fn func(key string)) (cancel func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextID
	s.nextID++
	s.subs[id] = fn

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}
