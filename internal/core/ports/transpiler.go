package ports

import (
	"context"

	"go.trai.ch/viewc/internal/core/domain"
)

// Transpiler turns a component template into an ES module exporting the component.
//
//go:generate go run go.uber.org/mock/mockgen -source=transpiler.go -destination=mocks/mock_transpiler.go -package=mocks
type Transpiler interface {
	Transpile(ctx context.Context, filename, source string, cfg domain.TranspileConfig) (string, error)
}
