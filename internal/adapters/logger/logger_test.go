package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/viewc/internal/adapters/logger"
	"go.trai.ch/zerr"
)

// newTestLogger creates a logger writing to a buffer with colors disabled.
func newTestLogger(t *testing.T) (*logger.Logger, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	lg := logger.New().(*logger.Logger)
	lg.SetOutput(buf)
	return lg, buf
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name       string
		log        func(*logger.Logger)
		goldenName string
	}{
		{
			name:       "info",
			log:        func(l *logger.Logger) { l.Info("compiled widget.tmpl") },
			goldenName: "logger_info",
		},
		{
			name:       "warn",
			log:        func(l *logger.Logger) { l.Warn("<Card> was created with unknown prop 'x'") },
			goldenName: "logger_warn",
		},
		{
			name: "error chain with metadata",
			log: func(l *logger.Logger) {
				cause := zerr.With(zerr.New("unexpected token"), "line", 3)
				l.Error(zerr.With(zerr.Wrap(cause, "failed to render"), "file", "/app/a.tmpl"))
			},
			goldenName: "logger_error_chain",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lg, buf := newTestLogger(t)
			tt.log(lg)

			g := goldie.New(t)
			g.Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}

func TestLogger_ErrorNilIsIgnored(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Error(nil)
	assert.Empty(t, buf.String())
}

func TestLogger_Quiet(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.SetQuiet(true)

	lg.Info("hidden")
	lg.Warn("shown")
	assert.Equal(t, "! shown\n", buf.String())

	buf.Reset()
	lg.SetQuiet(false)
	lg.Info("visible")
	assert.Equal(t, "visible\n", buf.String())
}

func TestLogger_JSON(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.SetJSON(true)

	lg.Error(errors.New("boom"))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "ERROR", record["level"])
	assert.Equal(t, "operation failed", record["msg"])
	assert.Equal(t, "boom", record["error"])
}

func TestCollectErrorEntries(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantMessages []string
		wantMetadata []map[string]any
	}{
		{
			name:         "standard error",
			err:          errors.New("simple"),
			wantMessages: []string{"simple"},
			wantMetadata: []map[string]any{{}},
		},
		{
			name:         "wrapped chain",
			err:          zerr.Wrap(zerr.Wrap(errors.New("root"), "middle"), "outer"),
			wantMessages: []string{"outer", "middle", "root"},
			wantMetadata: []map[string]any{{}, {}, {}},
		},
		{
			name:         "metadata on a standard error moves to the cause",
			err:          zerr.With(errors.New("disk full"), "path", "/tmp/x"),
			wantMessages: []string{"disk full"},
			wantMetadata: []map[string]any{{"path": "/tmp/x"}},
		},
		{
			name:         "multi wrapped standard error ends the walk",
			err:          zerr.Wrap(fmt.Errorf("%w: %w", errors.New("a"), errors.New("b")), "outer"),
			wantMessages: []string{"outer", "a: b"},
			wantMetadata: []map[string]any{{}, {}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := logger.CollectErrorEntries(tt.err)
			require.Len(t, entries, len(tt.wantMessages))
			for i, entry := range entries {
				assert.Equal(t, tt.wantMessages[i], entry.Message())
				assert.Equal(t, tt.wantMetadata[i], entry.Metadata())
			}
		})
	}
}

func TestFormatErrorEntries_IndentsMultilineValues(t *testing.T) {
	err := zerr.With(zerr.New("render failed"), "stack", "Error: boom\n\tat render (a.tmpl:3:5)\n")

	got := logger.FormatErrorEntries(logger.CollectErrorEntries(err))

	assert.Equal(t, "Error: render failed\n       stack=Error: boom\n         \tat render (a.tmpl:3:5)", got)
}

func TestNewFromEnv_SelectsFormat(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		wantJSON bool
	}{
		{name: "unset", value: "", wantJSON: false},
		{name: "json", value: "json", wantJSON: true},
		{name: "case and space", value: " JSON ", wantJSON: true},
		{name: "unknown", value: "text", wantJSON: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NO_COLOR", "1")

			lg := logger.NewFromEnv(func(key string) string {
				if key == logger.FormatEnv {
					return tt.value
				}
				return ""
			}).(*logger.Logger)

			buf := &bytes.Buffer{}
			lg.SetOutput(buf)
			lg.Info("ready")

			assert.Equal(t, tt.wantJSON, json.Valid(buf.Bytes()))
		})
	}
}
