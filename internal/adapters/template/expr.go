package template

import (
	"fmt"
	"strings"

	"go.trai.ch/viewc/internal/core/domain"
	"go.trai.ch/zerr"
)

// scanExpr returns the text between the brace at s[start] and its matching
// closing brace, and the index just past the closing brace.
// String and template literals are skipped so braces inside them do not count.
func scanExpr(s string, start int) (string, int, error) {
	depth := 0
	for i := start; i < len(s); i++ {
		switch c := s[i]; c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start+1 : i], i + 1, nil
			}
		case '"', '\'', '`':
			end := skipString(s, i)
			if end < 0 {
				return "", 0, domain.ErrUnterminatedExpression
			}
			i = end
		}
	}
	return "", 0, domain.ErrUnterminatedExpression
}

// skipString returns the index of the closing quote of the literal opened at s[start], or -1.
func skipString(s string, start int) int {
	quote := s[start]
	for i := start + 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case quote:
			return i
		}
	}
	return -1
}

// splitTopLevel splits s at sep characters that are not nested in brackets or strings.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	last := 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case '"', '\'', '`':
			if end := skipString(s, i); end > 0 {
				i = end
			}
		default:
			if c == sep && depth == 0 {
				parts = append(parts, s[last:i])
				last = i + 1
			}
		}
	}
	return append(parts, s[last:])
}

// bracketDepth returns the net bracket nesting of s, ignoring string contents.
func bracketDepth(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case '"', '\'', '`':
			if end := skipString(s, i); end > 0 {
				i = end
			}
		}
	}
	return depth
}

// lastTopLevel returns the index of the last occurrence of word in s outside brackets, or -1.
func lastTopLevel(s, word string) int {
	found := -1
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case '"', '\'', '`':
			if end := skipString(s, i); end > 0 {
				i = end
			}
		default:
			if depth == 0 && strings.HasPrefix(s[i:], word) {
				found = i
			}
		}
	}
	return found
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isIdentifier(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentChar(s[i]) {
			return false
		}
	}
	return true
}

// storeRefs returns the store names referenced as $name in expr, skipping $$ helpers.
func storeRefs(expr string) []string {
	var refs []string
	for i := 0; i < len(expr); i++ {
		c := expr[i]
		if c == '"' || c == '\'' || c == '`' {
			if end := skipString(expr, i); end > 0 {
				i = end
			}
			continue
		}
		if c != '$' || (i > 0 && isIdentChar(expr[i-1])) {
			continue
		}
		j := i + 1
		if j >= len(expr) || !isIdentStart(expr[j]) || expr[j] == '$' {
			continue
		}
		for j < len(expr) && isIdentChar(expr[j]) {
			j++
		}
		refs = append(refs, expr[i+1:j])
		i = j - 1
	}
	return refs
}

func lineError(err error, line int) error {
	return zerr.With(zerr.Wrap(err, fmt.Sprintf("template error at line %d", line)), "line", line)
}

func exprError(err error, line int, expr string) error {
	return zerr.With(lineError(err, line), "expression", expr)
}
