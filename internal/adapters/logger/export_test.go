// export_test.go exports private functions for white-box testing.
package logger

// ErrorEntry mirrors errorEntry for assertions.
type ErrorEntry = errorEntry

var (
	CollectErrorEntries = collectErrorEntries
	FormatErrorEntries  = formatErrorEntries
	NewFromEnv          = newFromEnv
)

// Message returns the entry message.
func (e ErrorEntry) Message() string { return e.message }

// Metadata returns the entry metadata.
func (e ErrorEntry) Metadata() map[string]any { return e.metadata }
