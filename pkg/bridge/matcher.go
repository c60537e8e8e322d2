package bridge

import "strings"

// Matches reports whether the backend owns the template name. A configured
// regex rule is authoritative and tests the full name; otherwise the name
// must carry the configured extension suffix. GetTemplate consults this
// before delegating to the compiler, so non-matching names never cost a
// lookup in the underlying engine.
func (e *Engine) Matches(name string) bool {
	if e.matchRegex != nil {
		return e.matchRegex.MatchString(name)
	}
	return strings.HasSuffix(name, e.config.MatchExtension)
}
