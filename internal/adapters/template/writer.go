package template

import (
	"bytes"
	"encoding/json"
	"strings"
)

// writer accumulates render function statements, merging adjacent static HTML.
type writer struct {
	code    strings.Builder
	pending strings.Builder
}

func (w *writer) static(s string) {
	w.pending.WriteString(s)
}

func (w *writer) flush() {
	if w.pending.Len() == 0 {
		return
	}
	w.code.WriteString("\t$$out += " + jsString(w.pending.String()) + ";\n")
	w.pending.Reset()
}

func (w *writer) expr(e string) {
	w.flush()
	w.code.WriteString("\t$$out += " + e + ";\n")
}

func (w *writer) stmt(s string) {
	w.flush()
	w.code.WriteString("\t" + s + "\n")
}

func (w *writer) trimTrailingSpace() {
	s := strings.TrimRight(w.pending.String(), " \t\r\n\f")
	w.pending.Reset()
	w.pending.WriteString(s)
}

func (w *writer) String() string {
	w.flush()
	return w.code.String()
}

// jsString renders s as a JavaScript string literal.
func jsString(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}
