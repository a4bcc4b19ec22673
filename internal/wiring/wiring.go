// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/viewc/internal/adapters/cas"
	_ "go.trai.ch/viewc/internal/adapters/config"
	_ "go.trai.ch/viewc/internal/adapters/esbuild"
	_ "go.trai.ch/viewc/internal/adapters/fs"
	_ "go.trai.ch/viewc/internal/adapters/jsruntime"
	_ "go.trai.ch/viewc/internal/adapters/logger"
	_ "go.trai.ch/viewc/internal/adapters/shell"
	_ "go.trai.ch/viewc/internal/adapters/telemetry"
	_ "go.trai.ch/viewc/internal/adapters/template"
	_ "go.trai.ch/viewc/internal/adapters/watcher"
	// Register app and engine nodes.
	_ "go.trai.ch/viewc/internal/app"
	_ "go.trai.ch/viewc/internal/engine/compiler"
)
