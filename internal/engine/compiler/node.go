package compiler

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/viewc/internal/adapters/esbuild"   //nolint:depguard // Wired in engine wiring
	"go.trai.ch/viewc/internal/adapters/jsruntime" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/viewc/internal/adapters/telemetry" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/viewc/internal/core/ports"
)

// NodeID is the unique identifier for the compiler Graft node.
const NodeID graft.ID = "engine.compiler"

func init() {
	graft.Register(graft.Node[*Compiler]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			esbuild.NodeID,
			jsruntime.NodeID,
			telemetry.TracerNodeID,
		},
		Run: func(ctx context.Context) (*Compiler, error) {
			bundler, err := graft.Dep[ports.Bundler](ctx)
			if err != nil {
				return nil, err
			}

			runtime, err := graft.Dep[*jsruntime.Runtime](ctx)
			if err != nil {
				return nil, err
			}

			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}

			return New(bundler, runtime, runtime, WithTracer(tracer)), nil
		},
	})
}
