package jsruntime

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/viewc/internal/adapters/logger"
	"go.trai.ch/viewc/internal/core/ports"
)

// NodeID is the unique identifier for the JavaScript runtime Graft node.
const NodeID graft.ID = "adapter.jsruntime"

func init() {
	graft.Register(graft.Node[*Runtime]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (*Runtime, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return New(log), nil
		},
	})
}
