package system

import (
	"time"

	"github.com/hearthfall/server/internal/core/event"
	coresys "github.com/hearthfall/server/internal/core/system"
	"github.com/hearthfall/server/internal/data"
	"github.com/hearthfall/server/internal/world"
	"go.uber.org/zap"
)

// enrageDamageMult is the one-shot damage baseline applied when the enrage
// timer elapses.
const enrageDamageMult = 2.5

// PhaseTriggerResult reports the outcome of one per-tick phase evaluation.
type PhaseTriggerResult struct {
	Triggered  bool
	PhaseIndex int
	Phase      *data.BossPhase
}

// CheckBossPhases evaluates phase triggers in definition order and returns
// the first untriggered phase whose condition holds, marking its bit before
// returning so it can never refire. At most one phase fires per tick: if a
// single hit drops the boss past two thresholds, the second phase fires on a
// later tick's re-evaluation — so this must be called every tick while
// engaged, not just on health changes.
func CheckBossPhases(boss *world.Character, ai *world.AIState, cfg *data.BossConfig) PhaseTriggerResult {
	for i := range cfg.Phases {
		if ai.PhaseTriggered(i) {
			continue
		}
		phase := &cfg.Phases[i]
		if !triggerHolds(&phase.Trigger, boss, ai) {
			continue
		}
		ai.MarkPhaseTriggered(i)
		return PhaseTriggerResult{Triggered: true, PhaseIndex: i, Phase: phase}
	}
	return PhaseTriggerResult{PhaseIndex: -1}
}

func triggerHolds(t *data.PhaseTrigger, boss *world.Character, ai *world.AIState) bool {
	switch t.Kind {
	case data.TriggerCombatStart:
		// Holds only at the instant engagement begins, before the combat
		// clock has advanced.
		return ai.CombatTimeMs == 0
	case data.TriggerWarmthPercent:
		if boss.MaxWarmth <= 0 {
			return false
		}
		return boss.Warmth/boss.MaxWarmth <= t.Percent
	case data.TriggerTimeInCombat:
		return ai.CombatTimeMs >= t.TimeMs
	case data.TriggerAddsKilled:
		return ai.AddsKilled >= t.Count
	case data.TriggerSkillInterrupted:
		return ai.InterruptedSkill != "" && ai.InterruptedSkill == t.SkillName
	case data.TriggerManual:
		return ai.ManualPhaseFire
	}
	return false
}

// AddSpawner spawns extra members of an existing wave into an instance.
// Implemented by the encounter builder.
type AddSpawner interface {
	SpawnAdds(in *world.Instance, waveIndex, count int) []*world.Character
}

// BossPhaseSystem checks the boss's phase triggers every tick while it is
// engaged and applies fired phases: multiplier baselines on the boss, add
// spawns via the builder, arena mods on the instance. Phase 2 (Update),
// registered after EngagementSystem.
type BossPhaseSystem struct {
	state   *world.State
	spawner AddSpawner
	bus     *event.Bus
	log     *zap.Logger
}

func NewBossPhaseSystem(ws *world.State, spawner AddSpawner, bus *event.Bus, log *zap.Logger) *BossPhaseSystem {
	return &BossPhaseSystem{state: ws, spawner: spawner, bus: bus, log: log}
}

func (s *BossPhaseSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *BossPhaseSystem) Update(_ time.Duration) {
	for _, in := range s.state.Instances {
		boss := in.Boss
		if boss == nil || boss.Dead || in.Def.Boss == nil {
			continue
		}
		ai := in.AIFor(boss.ID)
		if ai == nil || ai.Engagement != world.EngagementEngaged {
			continue
		}
		cfg := in.Def.Boss

		res := CheckBossPhases(boss, ai, cfg)
		if res.Triggered {
			s.applyPhase(in, boss, res)
		}

		// Enrage is independent of the phase list: one-shot, flag-gated.
		if cfg.EnrageTimerMs > 0 && !ai.Enraged && ai.CombatTimeMs >= cfg.EnrageTimerMs {
			ai.Enraged = true
			boss.DamageMult = enrageDamageMult
			event.Emit(s.bus, event.BossEnraged{EncounterID: in.ID, BossID: boss.ID})
			s.log.Info("boss enraged",
				zap.String("encounter", in.ID),
				zap.Int64("combat_ms", ai.CombatTimeMs))
		}

		// External trigger flags are valid for the tick the resolver set
		// them; consume them here.
		ai.InterruptedSkill = ""
		ai.ManualPhaseFire = false
	}
}

func (s *BossPhaseSystem) applyPhase(in *world.Instance, boss *world.Character, res PhaseTriggerResult) {
	phase := res.Phase
	in.PhasesFired++

	// Multipliers become the boss's new baseline; zero means unchanged.
	if phase.DamageMultiplier > 0 {
		boss.DamageMult = phase.DamageMultiplier
	}
	if phase.SpeedMultiplier > 0 {
		boss.SpeedMult = phase.SpeedMultiplier
	}

	for _, a := range phase.AddSpawns {
		if s.spawner != nil {
			s.spawner.SpawnAdds(in, a.WaveIndex, a.Count)
		}
	}

	for _, m := range phase.ArenaMods {
		switch m.Kind {
		case data.ArenaModActivateHazard:
			// Index validated at build time.
			hz := in.Hazards[m.HazardIndex]
			hz.Dormant = false
		case data.ArenaModShrink:
			if m.Radius > 0 && m.Radius < in.ArenaRadius {
				in.ArenaRadius = m.Radius
			}
		}
	}

	event.Emit(s.bus, event.PhaseTriggered{
		EncounterID: in.ID,
		BossID:      boss.ID,
		PhaseIndex:  res.PhaseIndex,
	})
	s.log.Info("boss phase triggered",
		zap.String("encounter", in.ID),
		zap.Int("phase", res.PhaseIndex),
		zap.String("name", phase.Name))
}
