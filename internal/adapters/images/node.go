package images

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/tandem/internal/core/ports"
)

// NodeID is the unique identifier for the image store Graft node.
const NodeID graft.ID = "adapter.images"

func init() {
	graft.Register(graft.Node[ports.ImageStore]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.ImageStore, error) {
			return NewStore(), nil
		},
	})
}
