package telemetry

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
	"go.trai.ch/mill/internal/adapters/telemetry/progrock"
	"go.trai.ch/mill/internal/core/ports"
)

// NodeID is the unique identifier for the telemetry Graft node.
const NodeID graft.ID = "adapter.telemetry"

// quietEnv disables progress recording entirely.
const quietEnv = "MILL_QUIET"

func init() {
	graft.Register(graft.Node[ports.Telemetry]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.Telemetry, error) {
			if os.Getenv(quietEnv) != "" {
				return NewNoop(), nil
			}
			return progrock.New(), nil
		},
	})
}
