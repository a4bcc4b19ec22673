package shell

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/viewc/internal/adapters/logger"
	"go.trai.ch/viewc/internal/core/domain"
	"go.trai.ch/viewc/internal/core/ports"
)

// NodeID is the unique identifier for the preprocessor factory Graft node.
const NodeID graft.ID = "adapter.preprocessor"

func init() {
	graft.Register(graft.Node[ports.PreprocessorFactory]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.PreprocessorFactory, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return func(root string, specs []domain.PreprocessSpec) []domain.Preprocessor {
				return NewPreprocessors(root, specs, log)
			}, nil
		},
	})
}
