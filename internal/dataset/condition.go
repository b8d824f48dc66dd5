package dataset

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrMalformedCondition reports a condition line that is not key=value.
var ErrMalformedCondition = errors.New("malformed condition")

// Condition is a set of named string parameters, e.g. {"language": "English"}.
// It filters examples and fills preamble placeholders.
type Condition map[string]string

// ParseCondition decodes newline-separated key=value text. Each line is split
// on its first '='. Empty lines are skipped, but text with no lines at all is
// malformed.
func ParseCondition(text string) (Condition, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty condition", ErrMalformedCondition)
	}
	cond := Condition{}
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("%w: line %d %q has no '='", ErrMalformedCondition, i+1, line)
		}
		cond[key] = value
	}
	return cond, nil
}

// Matches reports whether every key of cond appears in the encoded text with
// an identical value. Keys in text that cond does not name are ignored.
// Malformed text never matches.
func Matches(cond Condition, text string) bool {
	parsed, err := ParseCondition(text)
	if err != nil {
		return false
	}
	return parsed.Satisfies(cond)
}

// Satisfies reports whether c carries every pair of want.
func (c Condition) Satisfies(want Condition) bool {
	for k, v := range want {
		got, ok := c[k]
		if !ok || got != v {
			return false
		}
	}
	return true
}

// Keys returns the condition keys in sorted order.
func (c Condition) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String encodes the condition as sorted key=value lines.
func (c Condition) String() string {
	var sb strings.Builder
	for i, k := range c.Keys() {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(c[k])
	}
	return sb.String()
}

// Clone returns an independent copy.
func (c Condition) Clone() Condition {
	out := make(Condition, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}
