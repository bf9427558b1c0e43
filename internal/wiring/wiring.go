// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/tandem/internal/adapters/cas"
	_ "go.trai.ch/tandem/internal/adapters/config"
	_ "go.trai.ch/tandem/internal/adapters/fs"
	_ "go.trai.ch/tandem/internal/adapters/images"
	_ "go.trai.ch/tandem/internal/adapters/index"
	_ "go.trai.ch/tandem/internal/adapters/installer"
	_ "go.trai.ch/tandem/internal/adapters/logger"
	_ "go.trai.ch/tandem/internal/adapters/oci"
	_ "go.trai.ch/tandem/internal/adapters/requirements"
	_ "go.trai.ch/tandem/internal/adapters/server"
	_ "go.trai.ch/tandem/internal/adapters/telemetry"
	_ "go.trai.ch/tandem/internal/adapters/telemetry/progrock"
	_ "go.trai.ch/tandem/internal/adapters/watcher"
	// Register app and engine nodes.
	_ "go.trai.ch/tandem/internal/app"
	_ "go.trai.ch/tandem/internal/engine/pipeline"
)
