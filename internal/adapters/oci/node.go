package oci

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/tandem/internal/core/ports"
)

// NodeID is the unique identifier for the OCI exporter Graft node.
const NodeID graft.ID = "adapter.oci"

func init() {
	graft.Register(graft.Node[ports.ImageExporter]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.ImageExporter, error) {
			return NewExporter(), nil
		},
	})
}
