package pipeline

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/tandem/internal/adapters/cas"                //nolint:depguard // Wired in engine wiring
	"go.trai.ch/tandem/internal/adapters/fs"                 //nolint:depguard // Wired in engine wiring
	"go.trai.ch/tandem/internal/adapters/images"             //nolint:depguard // Wired in engine wiring
	"go.trai.ch/tandem/internal/adapters/logger"             //nolint:depguard // Wired in engine wiring
	"go.trai.ch/tandem/internal/adapters/oci"                //nolint:depguard // Wired in engine wiring
	"go.trai.ch/tandem/internal/adapters/telemetry"          //nolint:depguard // Wired in engine wiring
	"go.trai.ch/tandem/internal/adapters/telemetry/progrock" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/tandem/internal/core/ports"
)

// NodeID is the unique identifier for the build pipeline Graft node.
const NodeID graft.ID = "engine.pipeline"

func init() {
	graft.Register(graft.Node[*Pipeline]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			fs.HasherNodeID,
			fs.CopierNodeID,
			cas.NodeID,
			images.NodeID,
			oci.NodeID,
			progrock.NodeID,
			telemetry.TracerNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Pipeline, error) {
			hasher, err := graft.Dep[ports.Hasher](ctx)
			if err != nil {
				return nil, err
			}

			copier, err := graft.Dep[ports.TreeCopier](ctx)
			if err != nil {
				return nil, err
			}

			store, err := graft.Dep[ports.BuildInfoStore](ctx)
			if err != nil {
				return nil, err
			}

			imageStore, err := graft.Dep[ports.ImageStore](ctx)
			if err != nil {
				return nil, err
			}

			exporter, err := graft.Dep[ports.ImageExporter](ctx)
			if err != nil {
				return nil, err
			}

			recorder, err := graft.Dep[ports.Telemetry](ctx)
			if err != nil {
				return nil, err
			}

			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return New(hasher, copier, store, imageStore, exporter, recorder, tracer, log), nil
		},
	})
}
