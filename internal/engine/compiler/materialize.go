package compiler

import (
	"context"

	"go.trai.ch/viewc/internal/core/domain"
	"go.trai.ch/viewc/internal/core/ports"
)

const sourceMappingPrefix = "\n//# sourceMappingURL="

// Materializer turns a validated chunk into a loaded artifact.
type Materializer struct {
	loader    ports.ModuleLoader
	installer *Installer
}

// NewMaterializer creates a materializer.
func NewMaterializer(loader ports.ModuleLoader, installer *Installer) *Materializer {
	return &Materializer{loader: loader, installer: installer}
}

// Materialize loads chunk under filename. In dev mode an inline source map is
// appended when present and source map support is installed before loading.
// Loader errors are returned as is.
func (m *Materializer) Materialize(
	ctx context.Context,
	filename string,
	chunk domain.OutputItem,
	dev bool,
) (ports.Artifact, error) {
	code := chunk.Code
	if dev {
		if chunk.Map != nil {
			code += sourceMappingPrefix + chunk.Map.ToURL()
		}
		m.installer.EnsureInstalled()
	}
	return m.loader.Load(ctx, code, filename)
}
