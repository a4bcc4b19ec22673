package template

import (
	"strings"

	"go.trai.ch/viewc/internal/core/domain"
	"golang.org/x/net/html"
)

// attrValue is one part of an attribute value: static text or an expression.
type attrValue struct {
	static string
	expr   string
	isExpr bool
}

type attribute struct {
	name string
	// values is nil for boolean attributes.
	values []attrValue
	spread bool
}

// tag is a start tag parsed from its raw source, preserving name and attribute case.
type tag struct {
	name        string
	attrs       []attribute
	selfClosing bool
}

// parseStartTag parses raw, which spans from '<' to the closing '>'.
func parseStartTag(raw string) (tag, error) {
	var t tag
	i := 1
	for i < len(raw) && !isTagSpace(raw[i]) && raw[i] != '/' && raw[i] != '>' {
		i++
	}
	t.name = raw[1:i]

	for i < len(raw) {
		for i < len(raw) && isTagSpace(raw[i]) {
			i++
		}
		if i >= len(raw) || raw[i] == '>' {
			break
		}
		if strings.HasPrefix(raw[i:], "/>") {
			t.selfClosing = true
			break
		}
		if raw[i] == '/' {
			i++
			continue
		}

		if raw[i] == '{' {
			inner, end, err := scanExpr(raw, i)
			if err != nil {
				return tag{}, err
			}
			inner = strings.TrimSpace(inner)
			if rest, ok := strings.CutPrefix(inner, "..."); ok {
				t.attrs = append(t.attrs, attribute{spread: true, values: []attrValue{{expr: rest, isExpr: true}}})
			} else {
				t.attrs = append(t.attrs, attribute{name: inner, values: []attrValue{{expr: inner, isExpr: true}}})
			}
			i = end
			continue
		}

		start := i
		for i < len(raw) && !isTagSpace(raw[i]) && raw[i] != '=' && raw[i] != '>' &&
			!strings.HasPrefix(raw[i:], "/>") {
			i++
		}
		attr := attribute{name: raw[start:i]}

		j := i
		for j < len(raw) && isTagSpace(raw[j]) {
			j++
		}
		if j < len(raw) && raw[j] == '=' {
			j++
			for j < len(raw) && isTagSpace(raw[j]) {
				j++
			}
			value, end, err := readAttrValue(raw, j)
			if err != nil {
				return tag{}, err
			}
			attr.values = value
			i = end
		}
		t.attrs = append(t.attrs, attr)
	}
	return t, nil
}

func readAttrValue(raw string, i int) ([]attrValue, int, error) {
	if i >= len(raw) {
		return []attrValue{{static: ""}}, i, nil
	}
	switch raw[i] {
	case '"', '\'':
		end := strings.IndexByte(raw[i+1:], raw[i])
		if end < 0 {
			return nil, 0, domain.ErrUnterminatedExpression
		}
		values, err := splitValue(raw[i+1 : i+1+end])
		return values, i + end + 2, err
	case '{':
		inner, end, err := scanExpr(raw, i)
		if err != nil {
			return nil, 0, err
		}
		return []attrValue{{expr: strings.TrimSpace(inner), isExpr: true}}, end, nil
	default:
		start := i
		for i < len(raw) && !isTagSpace(raw[i]) && raw[i] != '>' {
			i++
		}
		values, err := splitValue(raw[start:i])
		return values, i, err
	}
}

// splitValue splits a quoted attribute value into static and {expression} parts.
// Static parts are entity-decoded.
func splitValue(v string) ([]attrValue, error) {
	segs, _, err := parseText(v)
	if err != nil {
		return nil, err
	}
	values := make([]attrValue, 0, len(segs))
	for _, s := range segs {
		switch s.kind {
		case segStatic:
			values = append(values, attrValue{static: html.UnescapeString(s.text)})
		case segExpr:
			values = append(values, attrValue{expr: s.text, isExpr: true})
		default:
			return nil, domain.ErrUnexpectedBlock
		}
	}
	if len(values) == 0 {
		values = append(values, attrValue{static: ""})
	}
	return values, nil
}

// endTagName extracts the name from a raw end tag such as "</Child >".
func endTagName(raw string) string {
	name := strings.TrimPrefix(raw, "</")
	name = strings.TrimSuffix(name, ">")
	return strings.TrimSpace(name)
}

func isTagSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true, "hr": true,
	"img": true, "input": true, "link": true, "meta": true, "param": true,
	"source": true, "track": true, "wbr": true,
}

var booleanAttributes = map[string]bool{
	"allowfullscreen": true, "async": true, "autofocus": true, "autoplay": true,
	"checked": true, "controls": true, "default": true, "defer": true, "disabled": true,
	"formnovalidate": true, "hidden": true, "inert": true, "ismap": true, "loop": true,
	"multiple": true, "muted": true, "nomodule": true, "novalidate": true, "open": true,
	"playsinline": true, "readonly": true, "required": true, "reversed": true, "selected": true,
}

// isComponent reports whether a tag name refers to a component rather than an element.
func isComponent(name string) bool {
	return name != "" && name[0] >= 'A' && name[0] <= 'Z'
}
