package esbuild

import (
	"cmp"
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"go.trai.ch/viewc/internal/core/domain"
	"go.trai.ch/zerr"
)

// Substituter replaces dotted identifiers with literal values in source text.
// A match must not be part of a longer identifier or member expression.
type Substituter struct {
	pattern *regexp.Regexp
	values  map[string]string
}

// NewSubstituter compiles the replacement table. Values are rendered as JavaScript literals.
func NewSubstituter(values map[string]any) (*Substituter, error) {
	if len(values) == 0 {
		return &Substituter{}, nil
	}

	keys := make([]string, 0, len(values))
	literals := make(map[string]string, len(values))
	for k, v := range values {
		if strings.TrimSpace(k) == "" {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidReplacement, "replacement key is empty"), "key", k)
		}
		lit, err := literal(v)
		if err != nil {
			return nil, fmt.Errorf("replacement %q: %w", k, err)
		}
		keys = append(keys, k)
		literals[k] = lit
	}
	// Longest first so "a.b.c" wins over "a.b".
	slices.SortFunc(keys, func(a, b string) int {
		if c := cmp.Compare(len(b), len(a)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})

	quoted := make([]string, len(keys))
	for i, k := range keys {
		quoted[i] = regexp.QuoteMeta(k)
	}

	return &Substituter{
		pattern: regexp.MustCompile(strings.Join(quoted, "|")),
		values:  literals,
	}, nil
}

// Replace returns src with every standalone occurrence of a key substituted.
func (s *Substituter) Replace(src string) string {
	if s.pattern == nil {
		return src
	}

	matches := s.pattern.FindAllStringIndex(src, -1)
	if len(matches) == 0 {
		return src
	}

	var b strings.Builder
	b.Grow(len(src))
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		if start > 0 && isMemberChar(src[start-1]) {
			continue
		}
		if end < len(src) && isMemberChar(src[end]) {
			continue
		}
		b.WriteString(src[last:start])
		b.WriteString(s.values[src[start:end]])
		last = end
	}
	b.WriteString(src[last:])
	return b.String()
}

func isMemberChar(c byte) bool {
	return c == '.' || c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func literal(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "null", nil
	case bool:
		if val {
			return "true", nil
		}
		return "false", nil
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
}
