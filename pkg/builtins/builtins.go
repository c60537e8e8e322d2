// Package builtins ships the filter groups the bridge installs into every
// environment it constructs. Groups are selected through the "extensions"
// option; user-supplied filters install after these, so a user entry with
// the same name wins.
package builtins

import (
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/goccy/go-json"
	"github.com/microcosm-cc/bluemonday"
)

// Filter is the backend-agnostic filter signature: input value, optional
// parameter, transformed output.
type Filter func(in any, param any) (any, error)

// Group names understood by the extensions option.
const (
	GroupText = "text"
	GroupHTML = "html"
	GroupJSON = "json"
)

// DefaultExtensions lists every built-in group, in install order.
func DefaultExtensions() []string {
	return []string{GroupText, GroupHTML, GroupJSON}
}

// Group returns the filters belonging to name, or an error for an unknown
// group.
func Group(name string) (map[string]Filter, error) {
	switch strings.TrimSpace(name) {
	case GroupText:
		return map[string]Filter{
			"trim":          filterTrim,
			"lowerfirst":    filterLowerFirst,
			"truncatechars": filterTruncateChars,
		}, nil
	case GroupHTML:
		return map[string]Filter{
			"sanitize": filterSanitize,
		}, nil
	case GroupJSON:
		return map[string]Filter{
			"tojson": filterToJSON,
		}, nil
	default:
		return nil, fmt.Errorf("builtins: unknown extension group %q", name)
	}
}

func filterTrim(in any, _ any) (any, error) {
	return strings.TrimSpace(toString(in)), nil
}

func filterLowerFirst(in any, _ any) (any, error) {
	s := toString(in)
	if s == "" {
		return "", nil
	}
	r, size := utf8.DecodeRuneInString(s)
	return strings.ToLower(string(r)) + s[size:], nil
}

func filterTruncateChars(in any, param any) (any, error) {
	s := toString(in)
	n, ok := toInt(param)
	if !ok || n < 0 {
		return nil, fmt.Errorf("builtins: truncatechars needs a non-negative length, got %v", param)
	}
	if utf8.RuneCountInString(s) <= n {
		return s, nil
	}
	runes := []rune(s)
	if n <= 1 {
		return string(runes[:n]), nil
	}
	return string(runes[:n-1]) + "…", nil
}

var (
	ugcPolicyOnce sync.Once
	ugcPolicy     *bluemonday.Policy
)

// filterSanitize strips markup down to user-generated-content safe HTML.
func filterSanitize(in any, _ any) (any, error) {
	ugcPolicyOnce.Do(func() {
		ugcPolicy = bluemonday.UGCPolicy()
	})
	return ugcPolicy.Sanitize(toString(in)), nil
}

func filterToJSON(in any, param any) (any, error) {
	if indent, ok := toInt(param); ok && indent > 0 {
		data, err := json.MarshalIndent(in, "", strings.Repeat(" ", indent))
		if err != nil {
			return nil, fmt.Errorf("builtins: tojson: %w", err)
		}
		return string(data), nil
	}
	data, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("builtins: tojson: %w", err)
	}
	return string(data), nil
}

func toString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
