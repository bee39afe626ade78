package telemetry

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/shade/internal/adapters/logger"
	"go.trai.ch/shade/internal/core/ports"
)

// FactoryNodeID is the unique identifier for the telemetry factory Graft node.
const FactoryNodeID graft.ID = "adapter.telemetry"

func init() {
	graft.Register(graft.Node[ports.TracerFactory]{
		ID:        FactoryNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.TracerFactory, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewFactory(log), nil
		},
	})
}
