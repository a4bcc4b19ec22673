package template

import (
	"strings"

	"go.trai.ch/viewc/internal/core/domain"
)

type segmentKind int

const (
	segStatic segmentKind = iota
	segExpr
	segHTML
	segIf
	segElseIf
	segElse
	segEndIf
	segEach
	segEndEach
	segKey
	segEndKey
	segConst
)

type segment struct {
	kind segmentKind
	text string
	// offset of the segment within the raw text, for line reporting.
	offset int
}

// parseText splits raw markup text into static runs, expressions and block tags.
// On failure it reports the offset of the offending brace.
func parseText(raw string) ([]segment, int, error) {
	var segs []segment
	last := 0
	for i := 0; i < len(raw); i++ {
		if raw[i] != '{' {
			continue
		}
		inner, end, err := scanExpr(raw, i)
		if err != nil {
			return nil, i, err
		}
		if i > last {
			segs = append(segs, segment{kind: segStatic, text: raw[last:i], offset: last})
		}
		seg, err := classify(strings.TrimSpace(inner))
		if err != nil {
			return nil, i, err
		}
		seg.offset = i
		segs = append(segs, seg)
		last = end
		i = end - 1
	}
	if last < len(raw) {
		segs = append(segs, segment{kind: segStatic, text: raw[last:], offset: last})
	}
	return segs, 0, nil
}

func classify(tag string) (segment, error) {
	switch {
	case strings.HasPrefix(tag, "#if "):
		return segment{kind: segIf, text: strings.TrimSpace(tag[4:])}, nil
	case strings.HasPrefix(tag, "#each "):
		return segment{kind: segEach, text: strings.TrimSpace(tag[6:])}, nil
	case strings.HasPrefix(tag, "#key "):
		return segment{kind: segKey, text: strings.TrimSpace(tag[5:])}, nil
	case strings.HasPrefix(tag, ":else if "):
		return segment{kind: segElseIf, text: strings.TrimSpace(tag[9:])}, nil
	case tag == ":else":
		return segment{kind: segElse}, nil
	case tag == "/if":
		return segment{kind: segEndIf}, nil
	case tag == "/each":
		return segment{kind: segEndEach}, nil
	case tag == "/key":
		return segment{kind: segEndKey}, nil
	case strings.HasPrefix(tag, "@html "):
		return segment{kind: segHTML, text: strings.TrimSpace(tag[6:])}, nil
	case strings.HasPrefix(tag, "@const "):
		return segment{kind: segConst, text: strings.TrimSpace(tag[7:])}, nil
	case strings.HasPrefix(tag, "#"), strings.HasPrefix(tag, "/"),
		strings.HasPrefix(tag, ":"), strings.HasPrefix(tag, "@"):
		return segment{}, domain.ErrUnexpectedBlock
	default:
		return segment{kind: segExpr, text: tag}, nil
	}
}

// eachClause is a parsed {#each list as pattern, index (key)} header.
type eachClause struct {
	list    string
	pattern string
	index   string
}

func parseEach(header string) (eachClause, bool) {
	at := lastTopLevel(header, " as ")
	if at < 0 {
		return eachClause{}, false
	}
	clause := eachClause{list: strings.TrimSpace(header[:at])}
	rest := strings.TrimSpace(header[at+4:])

	// Keys only matter for client updates.
	if strings.HasSuffix(rest, ")") {
		if open := matchingOpen(rest, len(rest)-1); open > 0 {
			rest = strings.TrimSpace(rest[:open])
		}
	}

	parts := splitTopLevel(rest, ',')
	if n := len(parts); n > 1 && isIdentifier(strings.TrimSpace(parts[n-1])) {
		clause.index = strings.TrimSpace(parts[n-1])
		rest = strings.Join(parts[:n-1], ",")
	}
	clause.pattern = strings.TrimSpace(rest)
	return clause, clause.list != "" && clause.pattern != ""
}

// collapseWhitespace replaces every whitespace run with a single space.
func collapseWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\n', '\r', '\f':
			if !space {
				b.WriteByte(' ')
			}
			space = true
		default:
			b.WriteByte(s[i])
			space = false
		}
	}
	return b.String()
}

// matchingOpen returns the index of the parenthesis closed at s[end], or -1.
func matchingOpen(s string, end int) int {
	depth := 0
	for i := end; i >= 0; i-- {
		switch s[i] {
		case ')':
			depth++
		case '(':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
