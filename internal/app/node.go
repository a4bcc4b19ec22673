package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/viewc/internal/adapters/cas"     //nolint:depguard // Wired in app layer
	"go.trai.ch/viewc/internal/adapters/config"  //nolint:depguard // Wired in app layer
	"go.trai.ch/viewc/internal/adapters/fs"      //nolint:depguard // Wired in app layer
	"go.trai.ch/viewc/internal/adapters/logger"  //nolint:depguard // Wired in app layer
	"go.trai.ch/viewc/internal/adapters/shell"   //nolint:depguard // Wired in app layer
	"go.trai.ch/viewc/internal/adapters/watcher" //nolint:depguard // Wired in app layer
	"go.trai.ch/viewc/internal/core/ports"
	"go.trai.ch/viewc/internal/engine/compiler"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components bundles the App with the collaborators the CLI needs directly.
type Components struct {
	App    *App
	Logger ports.Logger
}

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			compiler.NodeID,
			logger.NodeID,
			fs.HasherNodeID,
			fs.WalkerNodeID,
			cas.NodeID,
			shell.NodeID,
			watcher.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			a, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return &Components{App: a, Logger: log}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	comp, err := graft.Dep[*compiler.Compiler](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	hasher, err := graft.Dep[ports.Hasher](ctx)
	if err != nil {
		return nil, err
	}

	walker, err := graft.Dep[ports.Walker](ctx)
	if err != nil {
		return nil, err
	}

	storeFactory, err := graft.Dep[ports.BundleStoreFactory](ctx)
	if err != nil {
		return nil, err
	}

	preprocessors, err := graft.Dep[ports.PreprocessorFactory](ctx)
	if err != nil {
		return nil, err
	}

	watcherFactory, err := graft.Dep[ports.WatcherFactory](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, comp, log, hasher, walker, storeFactory, preprocessors, watcherFactory), nil
}
