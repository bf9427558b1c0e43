package requirements

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/tandem/internal/core/ports"
)

// NodeID is the unique identifier for the requirements reader Graft node.
const NodeID graft.ID = "adapter.requirements"

func init() {
	graft.Register(graft.Node[ports.RequirementsReader]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.RequirementsReader, error) {
			return NewReader(), nil
		},
	})
}
