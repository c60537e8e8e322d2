// Package lazy provides single-evaluation deferred values for render
// contexts. The bridge stores the CSRF token as a deferred string so the
// token provider runs only when a template actually reads the value, never
// at context-assembly time.
package lazy

import (
	"sync"
	"sync/atomic"
)

// String defers a string computation until first read. The thunk runs
// exactly once; the result is memoized for every later read. The zero
// value is not usable, construct with Deferred.
type String struct {
	once sync.Once
	fn   func() string
	val  string
	done atomic.Bool
}

// Deferred wraps fn into a String. fn must not be nil.
func Deferred(fn func() string) *String {
	return &String{fn: fn}
}

// String evaluates the thunk on first call and returns the memoized
// result afterwards. Implements fmt.Stringer so template engines that
// stringify context values trigger the evaluation naturally.
func (s *String) String() string {
	s.once.Do(func() {
		s.val = s.fn()
		s.fn = nil
		s.done.Store(true)
	})
	return s.val
}

// Evaluated reports whether the thunk has run.
func (s *String) Evaluated() bool { return s.done.Load() }
