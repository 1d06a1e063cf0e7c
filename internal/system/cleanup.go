package system

import (
	"time"

	coresys "github.com/hearthfall/server/internal/core/system"
	"github.com/hearthfall/server/internal/world"
)

// CleanupSystem drops finished encounter instances at end of tick. Ending
// an encounter is just ceasing to tick its entities; accumulated-ms timers
// leave nothing to cancel. Phase 5 (Cleanup).
type CleanupSystem struct {
	state *world.State
}

func NewCleanupSystem(ws *world.State) *CleanupSystem {
	return &CleanupSystem{state: ws}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	s.state.DropComplete()
}
