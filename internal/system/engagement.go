package system

import (
	"time"

	"github.com/hearthfall/server/internal/core/event"
	coresys "github.com/hearthfall/server/internal/core/system"
	"github.com/hearthfall/server/internal/world"
	"go.uber.org/zap"
)

// Engagement timing. Timers are accumulated milliseconds compared against
// these thresholds every tick, never scheduled callbacks.
const (
	// resetDelayMs is how long an NPC sits at its spawn point before the
	// full restore back to idle.
	resetDelayMs = 3000

	// spawnArriveEpsilon is how close to spawn counts as "home" when
	// leashing.
	spawnArriveEpsilon = 0.5
)

// UpdateEngagementState advances one NPC's engagement state machine by dtMs
// against the shared tick snapshot. It mutates ai in place and returns the
// new state for caller logging. The resetting→idle transition is the only
// one that touches combat stats (full warmth restore, combat clock zeroed).
func UpdateEngagementState(npc *world.Character, ai *world.AIState, snap *world.Snapshot, dtMs int64) world.EngagementState {
	if npc.Dead {
		// AIState dies with the entity; nothing to transition.
		return ai.Engagement
	}

	// Combat clock advances for time already spent engaged. An NPC that
	// becomes engaged this tick keeps combat_time at 0 until the next
	// tick, so combat_start triggers see the instant engagement begins.
	if ai.Engagement == world.EngagementEngaged {
		ai.CombatTimeMs += dtMs
	}

	switch ai.Engagement {
	case world.EngagementIdle:
		// Level-triggered pure distance check: state, not edges, so ten
		// hostiles in range fire the transition exactly once.
		if snap.HostileWithin(npc.Team, npc.Pos, ai.EngagementRadius) {
			ai.Engagement = world.EngagementAlerted
			ai.AlertMs = 0
		}

	case world.EngagementAlerted:
		// Committed: a hostile backing out of range during the delay does
		// not cancel the alert. Cancelling here would make aggro-baiting
		// free.
		ai.AlertMs += dtMs
		if ai.AlertMs >= ai.EngagementDelayMs {
			ai.Engagement = world.EngagementEngaged
		}

	case world.EngagementEngaged:
		// Chase distance is measured from our own spawn, not from the
		// target: the NPC breaks off once it has wandered too far from
		// home even if the hostile is still right next to it.
		if npc.Pos.Dist(ai.SpawnPosition) > ai.LeashRadius {
			ai.Engagement = world.EngagementLeashing
			target := ai.SpawnPosition
			ai.MoveTarget = &target
		}

	case world.EngagementLeashing:
		if npc.Pos.Dist(ai.SpawnPosition) <= spawnArriveEpsilon {
			ai.Engagement = world.EngagementResetting
			ai.ResetMs = 0
			ai.MoveTarget = nil
		} else {
			target := ai.SpawnPosition
			ai.MoveTarget = &target
		}

	case world.EngagementResetting:
		ai.ResetMs += dtMs
		if ai.ResetMs >= resetDelayMs {
			ai.Engagement = world.EngagementIdle
			npc.Warmth = npc.MaxWarmth
			ai.ClearCombat()
		}
	}

	return ai.Engagement
}

// EngagementSystem runs the engagement state machine for every live
// encounter NPC each tick and resolves social aggro across linked waves.
// Phase 2 (Update).
type EngagementSystem struct {
	state *world.State
	snap  *SnapshotHolder
	bus   *event.Bus
	log   *zap.Logger
}

func NewEngagementSystem(ws *world.State, snap *SnapshotHolder, bus *event.Bus, log *zap.Logger) *EngagementSystem {
	return &EngagementSystem{state: ws, snap: snap, bus: bus, log: log}
}

func (s *EngagementSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *EngagementSystem) Update(dt time.Duration) {
	dtMs := dt.Milliseconds()
	snap := s.snap.Snap
	if snap == nil {
		return
	}

	for _, in := range s.state.Instances {
		// First pass: run every NPC's state machine against the shared
		// snapshot, collecting waves that left idle this tick.
		alerted := make(map[int]bool)
		for _, npc := range in.Enemies {
			ai := in.AIFor(npc.ID)
			if ai == nil || npc.Dead {
				continue
			}
			prev := ai.Engagement
			next := UpdateEngagementState(npc, ai, snap, dtMs)
			if prev == world.EngagementIdle && next == world.EngagementAlerted {
				alerted[ai.WaveIndex] = true
			}
			if prev != next {
				s.log.Debug("engagement transition",
					zap.String("encounter", in.ID),
					zap.Int64("entity", npc.ID),
					zap.String("from", prev.String()),
					zap.String("to", next.String()))
			}
		}

		// Second pass: social aggro. Waves directly linked from a newly
		// alerted wave are forced to alerted. One hop only — forced waves
		// do not propagate to their own links.
		if len(alerted) > 0 {
			forced := make(map[int]bool)
			for wi := range alerted {
				if wi < 0 || wi >= len(in.Def.Waves) {
					continue
				}
				for _, linked := range in.Def.Waves[wi].LinkGroups {
					if !alerted[linked] {
						forced[linked] = true
					}
				}
				event.Emit(s.bus, event.WaveAlerted{EncounterID: in.ID, WaveIndex: wi})
			}
			for _, npc := range in.Enemies {
				ai := in.AIFor(npc.ID)
				if ai == nil || npc.Dead || !forced[ai.WaveIndex] {
					continue
				}
				if ai.Engagement == world.EngagementIdle {
					ai.Engagement = world.EngagementAlerted
					ai.AlertMs = 0
				}
			}
		}
	}
}
