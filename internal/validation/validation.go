// Package validation holds the field rules shared by the creation wizard and
// the REST endpoints. Every rule returns "" when the value is acceptable and
// a user-facing message otherwise; nothing here mutates its input.
package validation

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Errors maps a dotted field path to its message.
type Errors map[string]string

func (e Errors) Empty() bool { return len(e) == 0 }

// Merge copies other into e, prefixing each key.
func (e Errors) Merge(prefix string, other Errors) {
	for k, v := range other {
		if prefix != "" {
			k = prefix + "." + k
		}
		e[k] = v
	}
}

// Keys returns the paths in sorted order.
func (e Errors) Keys() []string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, k := range e.Keys() {
		parts = append(parts, k+": "+e[k])
	}
	return strings.Join(parts, "; ")
}

func (e Errors) set(field, msg string) {
	if msg != "" {
		e[field] = msg
	}
}

var (
	websitePattern  = regexp.MustCompile(`^https?://[^\s/$.?#].[^\s]*$`)
	identityPattern = regexp.MustCompile(`^[0-9A-F]{16}$`)
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

func length(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}

func requiredLength(s, label string, min, max int) string {
	n := length(s)
	if n == 0 {
		return label + " is required"
	}
	if n < min || n > max {
		return fmt.Sprintf("%s must be between %d and %d characters", label, min, max)
	}
	return ""
}

func between(v, min, max float64, msg string) string {
	if v < min || v > max {
		return msg
	}
	return ""
}

// ChainName checks a chain (and network) display name.
func ChainName(v string) string { return requiredLength(v, "Chain name", 3, 50) }

func ChainID(v string) string { return requiredLength(v, "Chain ID", 3, 50) }

func Email(v string) string {
	if strings.TrimSpace(v) == "" {
		return "Email is required"
	}
	if !emailPattern.MatchString(v) {
		return "Email must be a valid email address"
	}
	return ""
}
