package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/mill/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/mill/internal/adapters/fs"        //nolint:depguard // Wired in app layer
	"go.trai.ch/mill/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/mill/internal/adapters/shell"     //nolint:depguard // Wired in app layer
	"go.trai.ch/mill/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/mill/internal/adapters/watcher"   //nolint:depguard // Wired in app layer
	"go.trai.ch/mill/internal/core/ports"
	"go.trai.ch/mill/internal/engine/invalidator"
)

// NodeID is the unique identifier for the main App Graft node.
const NodeID graft.ID = "app.main"

func init() {
	graft.Register(graft.Node[*App]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			fs.HasherNodeID,
			shell.NodeID,
			telemetry.NodeID,
			logger.NodeID,
			invalidator.NodeID,
			watcher.NodeID,
		},
		Run: func(ctx context.Context) (*App, error) {
			configLoader, err := graft.Dep[ports.ConfigLoader](ctx)
			if err != nil {
				return nil, err
			}
			hasher, err := graft.Dep[ports.FileHasher](ctx)
			if err != nil {
				return nil, err
			}
			runner, err := graft.Dep[ports.ProcessRunner](ctx)
			if err != nil {
				return nil, err
			}
			tel, err := graft.Dep[ports.Telemetry](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			inv, err := graft.Dep[*invalidator.Invalidator](ctx)
			if err != nil {
				return nil, err
			}
			watch, err := graft.Dep[ports.Watcher](ctx)
			if err != nil {
				return nil, err
			}
			return New(configLoader, hasher, runner, tel, log, inv, watch), nil
		},
	})
}
