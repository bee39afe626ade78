package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/shade/internal/adapters/compiler"  //nolint:depguard // Wired in app layer
	"go.trai.ch/shade/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/shade/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/shade/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/shade/internal/adapters/watcher"   //nolint:depguard // Wired in app layer
	"go.trai.ch/shade/internal/adapters/wgslgen"   //nolint:depguard // Wired in app layer
	"go.trai.ch/shade/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components holds the initialized application components.
type Components struct {
	App    *App
	Logger ports.Logger
}

func init() {
	// App Node
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			wgslgen.NodeID,
			compiler.NodeID,
			logger.NodeID,
			telemetry.FactoryNodeID,
			watcher.NodeID,
		},
		Run: runAppNode,
	})

	// Components Node
	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			a, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return &Components{App: a, Logger: log}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	gen, err := graft.Dep[ports.Generator](ctx)
	if err != nil {
		return nil, err
	}

	comp, err := graft.Dep[ports.Compiler](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	tracers, err := graft.Dep[ports.TracerFactory](ctx)
	if err != nil {
		return nil, err
	}

	w, err := graft.Dep[ports.SceneWatcher](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, gen, comp, log, tracers, w), nil
}
