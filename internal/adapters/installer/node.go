package installer

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/tandem/internal/adapters/index"
	"go.trai.ch/tandem/internal/adapters/logger"
	"go.trai.ch/tandem/internal/core/ports"
)

// NodeID is the unique identifier for the installer factory Graft node.
const NodeID graft.ID = "adapter.installer"

func init() {
	graft.Register(graft.Node[ports.InstallerFactory]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{index.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.InstallerFactory, error) {
			opener, err := graft.Dep[ports.IndexOpener](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewFactory(opener, log), nil
		},
	})
}
