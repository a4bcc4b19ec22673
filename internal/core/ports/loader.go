package ports

import (
	"context"

	"go.trai.ch/viewc/internal/core/domain"
)

// ModuleLoader evaluates generated module code into an artifact.
//
//go:generate go run go.uber.org/mock/mockgen -source=loader.go -destination=mocks/mock_loader.go -package=mocks
type ModuleLoader interface {
	// Load evaluates code as a CommonJS module registered under filename.
	Load(ctx context.Context, code, filename string) (Artifact, error)
}

// Artifact is an evaluated module. It is immutable once loaded and safe for concurrent use.
type Artifact interface {
	// Render invokes the module's render entry point with the given props.
	Render(ctx context.Context, props map[string]any) (domain.RenderResult, error)
	// Callable reports whether the module's target is itself a function.
	Callable() bool
	// Exports lists the export names of the module's target.
	Exports() []string
}

// SourceMapRegistrar enables source map aware stack traces for evaluated modules.
type SourceMapRegistrar interface {
	Register(opts domain.SourceMapSupport)
}
