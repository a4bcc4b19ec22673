package cas

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/viewc/internal/core/ports"
)

// NodeID is the unique identifier for the bundle store factory Graft node.
const NodeID graft.ID = "adapter.bundle_store"

func init() {
	graft.Register(graft.Node[ports.BundleStoreFactory]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.BundleStoreFactory, error) {
			return func(dir string) (ports.BundleStore, error) {
				store, err := NewStore(dir)
				if err != nil {
					return nil, err
				}
				return store, nil
			}, nil
		},
	})
}
