package fs

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/mill/internal/core/ports"
)

// The source resolver is not a node: it depends on the artifact table loaded
// from configuration, so the app constructs it per invocation.
const (
	// WalkerNodeID identifies the directory walker node.
	WalkerNodeID graft.ID = "adapter.fs.walker"
	// HasherNodeID identifies the file hasher node.
	HasherNodeID graft.ID = "adapter.fs.hasher"
	// FunctionSourcesNodeID identifies the function-source registry node.
	FunctionSourcesNodeID graft.ID = "adapter.fs.function_sources"
)

func init() {
	graft.Register(graft.Node[*Walker]{
		ID:        WalkerNodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (*Walker, error) {
			return NewWalker(), nil
		},
	})

	graft.Register(graft.Node[ports.FileHasher]{
		ID:        HasherNodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.FileHasher, error) {
			return NewHasher(), nil
		},
	})

	graft.Register(graft.Node[*FunctionSources]{
		ID:        FunctionSourcesNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{WalkerNodeID},
		Run: func(ctx context.Context) (*FunctionSources, error) {
			walker, err := graft.Dep[*Walker](ctx)
			if err != nil {
				return nil, err
			}
			return NewFunctionSources(walker), nil
		},
	})
}
