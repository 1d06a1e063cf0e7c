package system

import (
	"time"

	"github.com/hearthfall/server/internal/core/event"
	coresys "github.com/hearthfall/server/internal/core/system"
	"github.com/hearthfall/server/internal/scripting"
	"github.com/hearthfall/server/internal/world"
	"go.uber.org/zap"
)

// attackCooldownMs is the tick-clock interval between NPC swings.
const attackCooldownMs = 1200

// MeleeResolver computes attack outcomes. Implemented by the scripting
// engine.
type MeleeResolver interface {
	CalcMeleeDamage(ctx scripting.MeleeContext) scripting.MeleeResult
}

// CombatSystem executes engaged NPCs' attacks, sweeps deaths, and maintains
// the signals the trigger system reads (adds-killed counter, boss defeat).
// Phase 2 (Update), registered after BossPhaseSystem so phase multipliers
// fired this tick already apply to this tick's swings.
type CombatSystem struct {
	state    *world.State
	snap     *SnapshotHolder
	resolver MeleeResolver
	bus      *event.Bus
	log      *zap.Logger
}

func NewCombatSystem(ws *world.State, snap *SnapshotHolder, resolver MeleeResolver, bus *event.Bus, log *zap.Logger) *CombatSystem {
	return &CombatSystem{state: ws, snap: snap, resolver: resolver, bus: bus, log: log}
}

func (s *CombatSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *CombatSystem) Update(dt time.Duration) {
	dtMs := dt.Milliseconds()
	snap := s.snap.Snap
	if snap == nil {
		return
	}

	// Live lookup for applying damage; targets are chosen from the
	// snapshot, hits land on the live record.
	byID := make(map[int64]*world.Character)
	for _, c := range s.state.AllEntities() {
		byID[c.ID] = c
	}

	for _, in := range s.state.Instances {
		for _, npc := range in.Enemies {
			if npc.Dead {
				continue
			}
			ai := in.AIFor(npc.ID)
			if ai == nil || ai.Engagement != world.EngagementEngaged {
				continue
			}
			if npc.AttackCooldownMs > 0 {
				npc.AttackCooldownMs -= dtMs
			}

			view := snap.NearestHostile(npc.Team, npc.Pos)
			if view == nil {
				continue
			}
			if npc.Pos.Dist(view.Pos) > npc.AttackRange {
				// Out of reach: chase. The leash check in the state
				// machine decides when the chase has gone too far.
				target := view.Pos
				ai.MoveTarget = &target
				continue
			}
			if npc.AttackCooldownMs > 0 {
				continue
			}
			target := byID[view.ID]
			if target == nil || target.Dead {
				continue
			}
			s.attack(npc, target)
		}

		s.sweepDeaths(in)
		s.checkComplete(in, dtMs)
	}
}

func (s *CombatSystem) attack(npc, target *world.Character) {
	res := s.resolver.CalcMeleeDamage(scripting.MeleeContext{
		AttackerDamage: npc.BaseDamage,
		AttackerMult:   npc.DamageMult,
		AttackerSchool: npc.School,
		TargetWarmth:   target.Warmth,
		TargetMax:      target.MaxWarmth,
		TargetSchool:   target.School,
	})
	npc.AttackCooldownMs = attackCooldownMs
	if !res.IsHit || res.Damage <= 0 {
		return
	}
	target.ApplyDamage(res.Damage)
}

// sweepDeaths marks everything at zero warmth dead and emits the events the
// trigger system and host read. Damage sources (attacks, hazards) only drop
// warmth; death itself happens here, once, in a single place.
func (s *CombatSystem) sweepDeaths(in *world.Instance) {
	bossAI := (*world.AIState)(nil)
	if in.Boss != nil {
		bossAI = in.AIFor(in.Boss.ID)
	}

	for _, npc := range in.Enemies {
		if npc.Dead || npc.Warmth > 0 {
			continue
		}
		npc.Dead = true
		in.Kills++
		event.Emit(s.bus, event.EntityDied{
			EncounterID: in.ID,
			EntityID:    npc.ID,
			WaveIndex:   npc.WaveIndex,
			IsBoss:      npc.IsBoss,
		})

		if npc.IsBoss {
			in.BossDown = true
			event.Emit(s.bus, event.BossDefeated{EncounterID: in.ID, BossID: npc.ID})
			if in.Def.Boss != nil && in.Def.Boss.SignatureSkillID != 0 {
				// Defeated bosses teach their signature skill; the ID is
				// a stable reference into the shared skill registry.
				event.Emit(s.bus, event.SkillUnlocked{
					EncounterID: in.ID,
					SkillID:     in.Def.Boss.SignatureSkillID,
				})
			}
			s.log.Info("boss defeated", zap.String("encounter", in.ID))
		} else if bossAI != nil {
			bossAI.AddsKilled++
		}
	}

	for _, p := range s.state.Players {
		if p.Dead || p.Warmth > 0 {
			continue
		}
		p.Dead = true
		event.Emit(s.bus, event.EntityDied{
			EncounterID: in.ID,
			EntityID:    p.ID,
			WaveIndex:   -1,
		})
	}
}

// checkComplete marks the instance done when the boss (if any) is down and
// every non-respawning enemy is dead. Respawn-flagged trash exists to
// repopulate the field and never blocks completion.
func (s *CombatSystem) checkComplete(in *world.Instance, dtMs int64) {
	if in.Complete {
		return
	}
	in.ElapsedMs += dtMs

	if in.Def.Boss != nil && !in.BossDown {
		return
	}
	for _, npc := range in.Enemies {
		if npc.Dead || npc.IsBoss {
			continue
		}
		if npc.WaveIndex >= 0 && npc.WaveIndex < len(in.Def.Waves) &&
			in.Def.Waves[npc.WaveIndex].Respawn {
			continue
		}
		return // a live, non-respawning enemy remains
	}

	in.Complete = true
	event.Emit(s.bus, event.EncounterComplete{
		EncounterID: in.ID,
		Difficulty:  in.Difficulty,
		DurationMs:  in.ElapsedMs,
		Kills:       in.Kills,
		BossDown:    in.BossDown,
		PhasesFired: in.PhasesFired,
	})
	s.log.Info("encounter complete",
		zap.String("encounter", in.ID),
		zap.Int64("duration_ms", in.ElapsedMs),
		zap.Int("kills", in.Kills),
		zap.Bool("boss_down", in.BossDown))
}
