package telemetry

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/viewc/internal/core/ports"
)

// Bridge implements sdktrace.SpanProcessor and reports finished spans with their durations.
type Bridge struct {
	logger ports.Logger

	mu     sync.Mutex
	depths map[trace.SpanID]int
}

// NewBridge returns a new Bridge reporting to logger.
func NewBridge(logger ports.Logger) *Bridge {
	return &Bridge{
		logger: logger,
		depths: make(map[trace.SpanID]int),
	}
}

// OnStart records the nesting depth of the span.
func (b *Bridge) OnStart(parent context.Context, s sdktrace.ReadWriteSpan) {
	sc := s.SpanContext()
	if !sc.IsValid() {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	depth := 0
	if p := trace.SpanFromContext(parent).SpanContext(); p.IsValid() {
		if d, ok := b.depths[p.SpanID()]; ok {
			depth = d + 1
		}
	}
	b.depths[sc.SpanID()] = depth
}

// OnEnd reports the span name and duration.
func (b *Bridge) OnEnd(s sdktrace.ReadOnlySpan) {
	sc := s.SpanContext()
	if !sc.IsValid() || b.logger == nil {
		return
	}

	b.mu.Lock()
	depth := b.depths[sc.SpanID()]
	delete(b.depths, sc.SpanID())
	b.mu.Unlock()

	b.logger.Info(FormatTiming(depth, s.Name(), s.EndTime().Sub(s.StartTime()), s.Status().Code == codes.Error))
}

// ForceFlush does nothing.
func (b *Bridge) ForceFlush(_ context.Context) error {
	return nil
}

// Shutdown does nothing.
func (b *Bridge) Shutdown(_ context.Context) error {
	return nil
}

// FormatTiming renders one timing line, indented by depth.
func FormatTiming(depth int, name string, d time.Duration, failed bool) string {
	line := fmt.Sprintf("%s%-9s %s", strings.Repeat("  ", depth), d.Round(10*time.Microsecond), name)
	if failed {
		line += " (failed)"
	}
	return line
}

// InstallTimings registers a global tracer provider that reports span timings to logger.
// The returned function shuts the provider down.
func InstallTimings(logger ports.Logger) func(context.Context) error {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(NewBridge(logger)),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown
}
