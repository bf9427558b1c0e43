package index

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/tandem/internal/core/ports"
)

// NodeID is the unique identifier for the index opener Graft node.
const NodeID graft.ID = "adapter.index"

func init() {
	graft.Register(graft.Node[ports.IndexOpener]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.IndexOpener, error) {
			return NewOpener(), nil
		},
	})
}
