package server

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/tandem/internal/adapters/logger"
	"go.trai.ch/tandem/internal/adapters/telemetry"
	"go.trai.ch/tandem/internal/core/ports"
)

// NodeID is the unique identifier for the entry point launcher Graft node.
const NodeID graft.ID = "adapter.server"

func init() {
	graft.Register(graft.Node[ports.Launcher]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID, telemetry.TracerNodeID},
		Run: func(ctx context.Context) (ports.Launcher, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}
			return NewLauncher(log, tracer, Options{}), nil
		},
	})
}
