package system

import (
	"time"

	coresys "github.com/hearthfall/server/internal/core/system"
	"github.com/hearthfall/server/internal/world"
)

// SnapshotHolder carries the tick's world snapshot between systems. Filled
// once at phase 0; every Update-phase read goes through it, so all NPCs see
// the same world regardless of mid-tick mutations.
type SnapshotHolder struct {
	Snap *world.Snapshot
}

// SnapshotSystem captures the world snapshot at tick start. Phase 0
// (Snapshot).
type SnapshotSystem struct {
	state  *world.State
	holder *SnapshotHolder
}

func NewSnapshotSystem(ws *world.State, holder *SnapshotHolder) *SnapshotSystem {
	return &SnapshotSystem{state: ws, holder: holder}
}

func (s *SnapshotSystem) Phase() coresys.Phase { return coresys.PhaseSnapshot }

func (s *SnapshotSystem) Update(_ time.Duration) {
	s.holder.Snap = world.BuildSnapshot(s.state.AllEntities())
}
