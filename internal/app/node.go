package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/tandem/internal/adapters/config"             //nolint:depguard // Wired in app layer
	"go.trai.ch/tandem/internal/adapters/fs"                 //nolint:depguard // Wired in app layer
	"go.trai.ch/tandem/internal/adapters/images"             //nolint:depguard // Wired in app layer
	"go.trai.ch/tandem/internal/adapters/installer"          //nolint:depguard // Wired in app layer
	"go.trai.ch/tandem/internal/adapters/logger"             //nolint:depguard // Wired in app layer
	"go.trai.ch/tandem/internal/adapters/requirements"       //nolint:depguard // Wired in app layer
	"go.trai.ch/tandem/internal/adapters/server"             //nolint:depguard // Wired in app layer
	"go.trai.ch/tandem/internal/adapters/telemetry/progrock" //nolint:depguard // Wired in app layer
	"go.trai.ch/tandem/internal/adapters/watcher"            //nolint:depguard // Wired in app layer
	"go.trai.ch/tandem/internal/core/ports"
	"go.trai.ch/tandem/internal/engine/pipeline"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components contains all the initialized application components.
// This struct provides controlled access to components needed by the CLI layer.
type Components struct {
	App       *App
	Logger    ports.Logger
	Telemetry ports.Telemetry
}

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			requirements.NodeID,
			installer.NodeID,
			pipeline.NodeID,
			images.NodeID,
			fs.HasherNodeID,
			server.NodeID,
			watcher.NodeID,
			logger.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			progrock.NodeID,
		},
		Run: runComponentsNode,
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	reader, err := graft.Dep[ports.RequirementsReader](ctx)
	if err != nil {
		return nil, err
	}

	installers, err := graft.Dep[ports.InstallerFactory](ctx)
	if err != nil {
		return nil, err
	}

	builder, err := graft.Dep[*pipeline.Pipeline](ctx)
	if err != nil {
		return nil, err
	}

	imageStore, err := graft.Dep[ports.ImageStore](ctx)
	if err != nil {
		return nil, err
	}

	hasher, err := graft.Dep[ports.Hasher](ctx)
	if err != nil {
		return nil, err
	}

	launcher, err := graft.Dep[ports.Launcher](ctx)
	if err != nil {
		return nil, err
	}

	sources, err := graft.Dep[ports.Watcher](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, reader, installers, builder, imageStore, hasher, launcher, sources, log), nil
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	app, err := graft.Dep[*App](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	recorder, err := graft.Dep[ports.Telemetry](ctx)
	if err != nil {
		return nil, err
	}

	return &Components{
		App:       app,
		Logger:    log,
		Telemetry: recorder,
	}, nil
}
