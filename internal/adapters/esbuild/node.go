package esbuild

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
	"go.trai.ch/viewc/internal/adapters/template"
	"go.trai.ch/viewc/internal/core/ports"
	"go.trai.ch/zerr"
)

// NodeID is the unique identifier for the bundler Graft node.
const NodeID graft.ID = "adapter.bundler"

func init() {
	graft.Register(graft.Node[ports.Bundler]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{template.NodeID},
		Run: func(ctx context.Context) (ports.Bundler, error) {
			transpiler, err := graft.Dep[ports.Transpiler](ctx)
			if err != nil {
				return nil, err
			}
			cwd, err := os.Getwd()
			if err != nil {
				return nil, zerr.Wrap(err, "failed to get working directory")
			}
			return NewBundler(transpiler, cwd), nil
		},
	})
}
