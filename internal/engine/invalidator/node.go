package invalidator

import (
	"context"
	"runtime"

	"github.com/grindlemire/graft"
)

// NodeID is the unique identifier for the invalidator Graft node.
const NodeID graft.ID = "engine.invalidator"

func init() {
	graft.Register(graft.Node[*Invalidator]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (*Invalidator, error) {
			return New(runtime.NumCPU()), nil
		},
	})
}
