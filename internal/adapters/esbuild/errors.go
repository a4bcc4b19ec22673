package esbuild

import (
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// ErrorDetail is a single diagnostic reported by the bundler.
type ErrorDetail struct {
	Message  string
	Plugin   string
	File     string
	Line     int
	Column   int
	LineText string
}

// BuildError is returned when bundling fails. Callers receive it unwrapped.
type BuildError struct {
	Entry   string
	Message string
	Errors  []ErrorDetail

	cause error
}

func newBuildError(entry string, msgs []api.Message, cause error) *BuildError {
	details := make([]ErrorDetail, len(msgs))
	for i, m := range msgs {
		details[i] = ErrorDetail{Message: m.Text, Plugin: m.PluginName}
		if m.Location != nil {
			details[i].File = m.Location.File
			details[i].Line = m.Location.Line
			details[i].Column = m.Location.Column
			details[i].LineText = m.Location.LineText
		}
	}
	return &BuildError{
		Entry:   entry,
		Message: fmt.Sprintf("build failed for %s with %d error(s)", entry, len(msgs)),
		Errors:  details,
		cause:   cause,
	}
}

func (e *BuildError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	for _, d := range e.Errors {
		b.WriteString("\n")
		if d.File != "" {
			fmt.Fprintf(&b, "%s:%d:%d: ", d.File, d.Line, d.Column)
		}
		b.WriteString(d.Message)
	}
	return b.String()
}

// Unwrap returns the first error raised by a viewc plugin callback, if any.
func (e *BuildError) Unwrap() error {
	return e.cause
}
