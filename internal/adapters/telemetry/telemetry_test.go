package telemetry_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.trai.ch/viewc/internal/adapters/telemetry"
	"go.trai.ch/viewc/internal/core/ports"
	"go.trai.ch/viewc/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestOTelTracer_RecordsAttributesAndErrors(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := telemetry.NewOTelTracerWithProvider(tp, "test")

	_, span := tracer.Start(context.Background(), "compile /app/Widget.tmpl",
		ports.WithAttribute("file", "/app/Widget.tmpl"),
		ports.WithAttribute("hydratable", true),
	)
	span.SetAttribute("modules", 3)
	span.SetAttribute("size", int64(42))
	span.SetAttribute("ratio", 0.5)
	span.SetAttribute("deps", []string{"a", "b"})
	span.SetAttribute("other", time.Second)
	span.RecordError(errors.New("boom"))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	got := ended[0]

	assert.Equal(t, "compile /app/Widget.tmpl", got.Name())
	assert.Equal(t, codes.Error, got.Status().Code)
	assert.Equal(t, "boom", got.Status().Description)
	assert.ElementsMatch(t, []attribute.KeyValue{
		attribute.String("file", "/app/Widget.tmpl"),
		attribute.Bool("hydratable", true),
		attribute.Int("modules", 3),
		attribute.Int64("size", 42),
		attribute.Float64("ratio", 0.5),
		attribute.StringSlice("deps", []string{"a", "b"}),
		attribute.String("other", "1s"),
	}, got.Attributes())
}

func TestBridge_ReportsNestedTimings(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)

	gomock.InOrder(
		mockLogger.EXPECT().Info(gomock.Cond(func(line string) bool {
			return strings.HasPrefix(line, "  ") && strings.HasSuffix(line, " bundle w.tmpl (failed)")
		})),
		mockLogger.EXPECT().Info(gomock.Cond(func(line string) bool {
			return !strings.HasPrefix(line, " ") && strings.HasSuffix(line, " compile w.tmpl")
		})),
	)

	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(telemetry.NewBridge(mockLogger)))
	tracer := telemetry.NewOTelTracerWithProvider(tp, "test")

	ctx, parent := tracer.Start(context.Background(), "compile w.tmpl")
	_, child := tracer.Start(ctx, "bundle w.tmpl")
	child.RecordError(errors.New("bad"))
	child.End()
	parent.End()
}

func TestBridge_NilLogger(t *testing.T) {
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(telemetry.NewBridge(nil)))
	_, span := tp.Tracer("test").Start(context.Background(), "span")
	span.End()
	require.NoError(t, tp.Shutdown(context.Background()))
}

func TestFormatTiming(t *testing.T) {
	tests := []struct {
		name   string
		depth  int
		d      time.Duration
		failed bool
		want   string
	}{
		{name: "root", d: 1500 * time.Microsecond, want: "1.5ms     compile"},
		{name: "nested", depth: 2, d: 2 * time.Second, want: "    2s        compile"},
		{name: "rounds", d: 1234567 * time.Nanosecond, want: "1.23ms    compile"},
		{name: "failed", d: time.Millisecond, failed: true, want: "1ms       compile (failed)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, telemetry.FormatTiming(tt.depth, "compile", tt.d, tt.failed))
		})
	}
}

func TestNoOpTracer(t *testing.T) {
	t.Parallel()

	tracer := telemetry.NewNoOpTracer()
	ctx := context.Background()

	newCtx, span := tracer.Start(ctx, "test", ports.WithAttribute("k", "v"))
	assert.Equal(t, ctx, newCtx)
	span.SetAttribute("key", "value")
	span.RecordError(errors.New("test error"))
	span.End()
}
