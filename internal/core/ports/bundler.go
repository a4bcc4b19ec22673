// Package ports defines the interfaces between the compiler core and its adapters.
package ports

import (
	"context"

	"go.trai.ch/viewc/internal/core/domain"
)

// Bundler runs the staged bundling pipeline for a single entry file.
//
//go:generate go run go.uber.org/mock/mockgen -source=bundler.go -destination=mocks/mock_bundler.go -package=mocks
type Bundler interface {
	// Bundle executes the stages in order against entry and returns every produced item.
	// Errors are the bundler's own and are not wrapped by callers.
	Bundle(ctx context.Context, entry string, stages []domain.Stage) (domain.Output, error)
}
