package config

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/mill/internal/adapters/fs"
	"go.trai.ch/mill/internal/core/ports"
)

// NodeID is the unique identifier for the config loader Graft node.
const NodeID graft.ID = "adapter.config.loader"

func init() {
	graft.Register(graft.Node[ports.ConfigLoader]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fs.FunctionSourcesNodeID},
		Run: func(ctx context.Context) (ports.ConfigLoader, error) {
			functions, err := graft.Dep[*fs.FunctionSources](ctx)
			if err != nil {
				return nil, err
			}
			return NewLoader(functions), nil
		},
	})
}
