package system

import (
	"time"

	coresys "github.com/hearthfall/server/internal/core/system"
	"github.com/hearthfall/server/internal/world"
)

// MovementSystem is the movement executor: it consumes the tick's movement
// intents (leash return, chase) and is the only component that writes
// positions. Terrain steering would slot in here; the runtime itself only
// needs straight-line steps. Phase 3 (PostUpdate).
type MovementSystem struct {
	state *world.State
}

func NewMovementSystem(ws *world.State) *MovementSystem {
	return &MovementSystem{state: ws}
}

func (s *MovementSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *MovementSystem) Update(dt time.Duration) {
	dtSec := dt.Seconds()
	for _, in := range s.state.Instances {
		for _, npc := range in.Enemies {
			ai := in.AIFor(npc.ID)
			if ai == nil || ai.MoveTarget == nil || npc.Dead {
				continue
			}
			step := npc.EffectiveSpeed() * dtSec
			delta := ai.MoveTarget.Sub(npc.Pos)
			if delta.Len() <= step {
				npc.Pos = *ai.MoveTarget
			} else {
				npc.Pos = npc.Pos.Add(delta.Normalized().Scale(step))
			}
			// Intents last one tick; next tick's update re-requests.
			ai.MoveTarget = nil
		}
	}
}
