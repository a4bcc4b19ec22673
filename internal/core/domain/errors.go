package domain

import (
	"errors"

	"go.trai.ch/zerr"
)

// Error codes attached to compile output errors under the "code" metadata key.
const (
	// CodeInvalidLength marks output that did not contain exactly one item.
	CodeInvalidLength = "INVALID_LENGTH"

	// CodeInvalidType marks output whose single item is an asset instead of a chunk.
	CodeInvalidType = "INVALID_TYPE"
)

var (
	// ErrInvalidOutputLength is returned when the bundler produced zero or more than one item.
	ErrInvalidOutputLength = zerr.New("invalid compile output: generated more than one chunk or asset")

	// ErrInvalidOutputType is returned when the bundler produced an asset instead of a chunk.
	ErrInvalidOutputType = zerr.New("invalid compile output: generated an asset instead of a chunk")

	// ErrNoEntrySpecified is returned when no template file is given.
	ErrNoEntrySpecified = zerr.New("no template file specified")

	// ErrEntryNotFound is returned when the template file does not exist.
	ErrEntryNotFound = zerr.New("template file not found")

	// ErrRenderFailed is returned when rendering an artifact fails.
	ErrRenderFailed = zerr.New("render failed")

	// ErrNotRenderable is returned when an artifact exposes neither a callable nor a render method.
	ErrNotRenderable = zerr.New("module does not export a render function")

	// ErrInvalidProps is returned when the props document cannot be decoded.
	ErrInvalidProps = zerr.New("failed to decode props")

	// ErrInvalidReplacement is returned when a replacement flag is not of the form key=value.
	ErrInvalidReplacement = zerr.New("invalid replacement, expected key=value")

	// ErrTranspileFailed is returned when a template cannot be turned into a module.
	ErrTranspileFailed = zerr.New("failed to transpile template")

	// ErrUnclosedBlock is returned when a template block is never closed.
	ErrUnclosedBlock = zerr.New("unclosed block")

	// ErrUnexpectedBlock is returned when a block tag appears outside its opening block.
	ErrUnexpectedBlock = zerr.New("unexpected block tag")

	// ErrUnterminatedExpression is returned when a template expression is missing its closing brace.
	ErrUnterminatedExpression = zerr.New("unterminated expression")

	// ErrPreprocessFailed is returned when a preprocessor command fails.
	ErrPreprocessFailed = zerr.New("preprocessor failed")

	// ErrStoreCreateFailed is returned when the bundle store directory cannot be created.
	ErrStoreCreateFailed = zerr.New("failed to create bundle store directory")

	// ErrStoreReadFailed is returned when bundle info cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read bundle info")

	// ErrStoreUnmarshalFailed is returned when bundle info cannot be unmarshaled.
	ErrStoreUnmarshalFailed = zerr.New("failed to unmarshal bundle info")

	// ErrStoreMarshalFailed is returned when bundle info cannot be marshaled.
	ErrStoreMarshalFailed = zerr.New("failed to marshal bundle info")

	// ErrStoreWriteFailed is returned when bundle info or code cannot be written.
	ErrStoreWriteFailed = zerr.New("failed to write bundle")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrInvalidPreprocessor is returned when a preprocessor entry has no command.
	ErrInvalidPreprocessor = zerr.New("preprocessor requires a command")

	// ErrBuildFailed is returned when one or more templates fail to build.
	ErrBuildFailed = zerr.New("build failed")

	// ErrFileHashFailed is returned when hashing content fails.
	ErrFileHashFailed = zerr.New("failed to hash content")
)

// ErrorCode returns the first "code" metadata value found in the error chain,
// or an empty string when none is attached.
func ErrorCode(err error) string {
	for err != nil {
		var zErr *zerr.Error
		if !errors.As(err, &zErr) {
			return ""
		}
		if code, ok := zErr.Metadata()["code"].(string); ok {
			return code
		}
		err = errors.Unwrap(zErr)
	}
	return ""
}
