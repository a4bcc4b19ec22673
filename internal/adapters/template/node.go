package template

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/viewc/internal/core/ports"
)

// NodeID is the unique identifier for the transpiler Graft node.
const NodeID graft.ID = "adapter.transpiler"

func init() {
	graft.Register(graft.Node[ports.Transpiler]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Transpiler, error) {
			cached, err := NewCachingTranspiler(New(), DefaultCacheSize)
			if err != nil {
				return nil, err
			}
			return cached, nil
		},
	})
}
