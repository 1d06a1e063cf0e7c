package system

import (
	"testing"
	"time"

	"github.com/hearthfall/server/internal/core/event"
	"github.com/hearthfall/server/internal/data"
	"github.com/hearthfall/server/internal/world"
	"go.uber.org/zap"
)

func bossWithPhases(phases ...data.BossPhase) (*world.Character, *world.AIState, *data.BossConfig) {
	boss := testNPC(100, world.Vec2{})
	boss.IsBoss = true
	boss.Warmth = 1000
	boss.MaxWarmth = 1000
	ai := testAI(boss)
	ai.Engagement = world.EngagementEngaged
	cfg := &data.BossConfig{SpecID: 2001, Phases: phases}
	return boss, ai, cfg
}

func TestWarmthPhaseFiresExactlyOnce(t *testing.T) {
	boss, ai, cfg := bossWithPhases(data.BossPhase{
		Name:    "desperation",
		Trigger: data.PhaseTrigger{Kind: data.TriggerWarmthPercent, Percent: 0.20},
	})

	boss.Warmth = 100 // 10%, well past the threshold
	fired := 0
	for i := 0; i < 50; i++ {
		ai.CombatTimeMs += 100
		if CheckBossPhases(boss, ai, cfg).Triggered {
			fired++
		}
	}
	if fired != 1 {
		t.Fatalf("phase fired %d times over 50 ticks, want exactly 1", fired)
	}
	if !ai.PhaseTriggered(0) {
		t.Fatal("phase bit not marked after firing")
	}
}

func TestCombatStartFiresOnlyAtZero(t *testing.T) {
	boss, ai, cfg := bossWithPhases(data.BossPhase{
		Name:    "opener",
		Trigger: data.PhaseTrigger{Kind: data.TriggerCombatStart},
	})

	if res := CheckBossPhases(boss, ai, cfg); !res.Triggered || res.PhaseIndex != 0 {
		t.Fatalf("combat_start did not fire at combat time 0: %+v", res)
	}

	// A second boss whose clock already advanced never sees the opener.
	boss2, ai2, cfg2 := bossWithPhases(data.BossPhase{
		Name:    "opener",
		Trigger: data.PhaseTrigger{Kind: data.TriggerCombatStart},
	})
	ai2.CombatTimeMs = 100
	if CheckBossPhases(boss2, ai2, cfg2).Triggered {
		t.Fatal("combat_start fired with a nonzero combat clock")
	}
}

func TestOnePhasePerTick(t *testing.T) {
	boss, ai, cfg := bossWithPhases(
		data.BossPhase{
			Name:    "half",
			Trigger: data.PhaseTrigger{Kind: data.TriggerWarmthPercent, Percent: 0.50},
		},
		data.BossPhase{
			Name:    "last-stand",
			Trigger: data.PhaseTrigger{Kind: data.TriggerWarmthPercent, Percent: 0.20},
		},
	)

	// One huge hit drops past both thresholds. Definition order wins the
	// tick; the second phase fires on the next evaluation.
	boss.Warmth = 100
	res := CheckBossPhases(boss, ai, cfg)
	if !res.Triggered || res.PhaseIndex != 0 {
		t.Fatalf("first tick fired %+v, want phase 0", res)
	}
	res = CheckBossPhases(boss, ai, cfg)
	if !res.Triggered || res.PhaseIndex != 1 {
		t.Fatalf("second tick fired %+v, want phase 1", res)
	}
	if CheckBossPhases(boss, ai, cfg).Triggered {
		t.Fatal("third tick fired with all bits set")
	}
}

func TestTimeInCombatTrigger(t *testing.T) {
	boss, ai, cfg := bossWithPhases(data.BossPhase{
		Name:    "soft-enrage",
		Trigger: data.PhaseTrigger{Kind: data.TriggerTimeInCombat, TimeMs: 1000},
	})

	ai.CombatTimeMs = 999
	if CheckBossPhases(boss, ai, cfg).Triggered {
		t.Fatal("time trigger fired at 999ms, threshold 1000")
	}
	ai.CombatTimeMs = 1000
	if !CheckBossPhases(boss, ai, cfg).Triggered {
		t.Fatal("time trigger did not fire at 1000ms")
	}
}

func TestAddsKilledTrigger(t *testing.T) {
	boss, ai, cfg := bossWithPhases(data.BossPhase{
		Name:    "fury",
		Trigger: data.PhaseTrigger{Kind: data.TriggerAddsKilled, Count: 3},
	})

	ai.AddsKilled = 2
	if CheckBossPhases(boss, ai, cfg).Triggered {
		t.Fatal("adds_killed fired at 2 kills, threshold 3")
	}
	ai.AddsKilled = 3
	if !CheckBossPhases(boss, ai, cfg).Triggered {
		t.Fatal("adds_killed did not fire at 3 kills")
	}
}

func TestSkillInterruptedTriggerMatchesName(t *testing.T) {
	boss, ai, cfg := bossWithPhases(data.BossPhase{
		Name:    "shattered-focus",
		Trigger: data.PhaseTrigger{Kind: data.TriggerSkillInterrupted, SkillName: "cinder_nova"},
	})

	ai.InterruptedSkill = "hoarfrost_lance"
	if CheckBossPhases(boss, ai, cfg).Triggered {
		t.Fatal("skill_interrupted fired for the wrong skill")
	}
	ai.InterruptedSkill = "cinder_nova"
	if !CheckBossPhases(boss, ai, cfg).Triggered {
		t.Fatal("skill_interrupted did not fire for the matching skill")
	}
}

func TestManualTrigger(t *testing.T) {
	boss, ai, cfg := bossWithPhases(data.BossPhase{
		Name:    "scripted",
		Trigger: data.PhaseTrigger{Kind: data.TriggerManual},
	})

	if CheckBossPhases(boss, ai, cfg).Triggered {
		t.Fatal("manual trigger fired without the flag")
	}
	ai.ManualPhaseFire = true
	if !CheckBossPhases(boss, ai, cfg).Triggered {
		t.Fatal("manual trigger did not fire with the flag set")
	}
}

func TestPhaseBitsSurviveReset(t *testing.T) {
	boss, ai, cfg := bossWithPhases(data.BossPhase{
		Name:    "half",
		Trigger: data.PhaseTrigger{Kind: data.TriggerWarmthPercent, Percent: 0.50},
	})
	boss.Warmth = 400
	if !CheckBossPhases(boss, ai, cfg).Triggered {
		t.Fatal("setup: phase did not fire")
	}

	// Leash reset restores warmth and zeroes the clock but keeps the
	// fired bits: still the same combat instance.
	boss.Warmth = boss.MaxWarmth
	ai.ClearCombat()
	boss.Warmth = 400
	if CheckBossPhases(boss, ai, cfg).Triggered {
		t.Fatal("phase refired after a combat reset")
	}
}

type stubSpawner struct {
	calls []int
}

func (s *stubSpawner) SpawnAdds(in *world.Instance, waveIndex, count int) []*world.Character {
	s.calls = append(s.calls, count)
	return nil
}

func TestBossPhaseSystemAppliesEffects(t *testing.T) {
	hazard := data.HazardZone{Kind: data.HazardDamage, Radius: 4, TickMs: 1000, Amount: 10, Dormant: true, AffectsPlayers: true}
	def := &data.EncounterDefinition{
		ID:    "pyre",
		Waves: []data.EnemyWave{{Members: []data.WaveMember{{SpecID: 1001, Count: 1}}}},
		Boss: &data.BossConfig{
			SpecID:        2001,
			EnrageTimerMs: 5000,
			Phases: []data.BossPhase{{
				Name:             "kindling",
				Trigger:          data.PhaseTrigger{Kind: data.TriggerWarmthPercent, Percent: 0.60},
				DamageMultiplier: 1.5,
				SpeedMultiplier:  1.2,
				AddSpawns:        []data.AddSpawn{{WaveIndex: 0, Count: 2}},
				ArenaMods: []data.ArenaMod{
					{Kind: data.ArenaModActivateHazard, HazardIndex: 0},
					{Kind: data.ArenaModShrink, Radius: 15},
				},
			}},
		},
		Hazards: []data.HazardZone{hazard},
	}

	boss := testNPC(100, world.Vec2{})
	boss.IsBoss = true
	boss.Warmth = 500
	boss.MaxWarmth = 1000
	ai := testAI(boss)
	ai.Engagement = world.EngagementEngaged
	ai.CombatTimeMs = 100

	in := testInstance(def, []*world.Character{boss}, []*world.AIState{ai})
	in.ArenaRadius = 25
	in.Hazards = []*world.HazardZoneState{{Def: &def.Hazards[0], Index: 0, Dormant: true}}

	ws := world.NewState()
	ws.AddInstance(in)
	spawner := &stubSpawner{}
	sys := NewBossPhaseSystem(ws, spawner, event.NewBus(), zap.NewNop())
	sys.Update(100 * time.Millisecond)

	if boss.DamageMult != 1.5 || boss.SpeedMult != 1.2 {
		t.Fatalf("multipliers = %v/%v, want 1.5/1.2", boss.DamageMult, boss.SpeedMult)
	}
	if len(spawner.calls) != 1 || spawner.calls[0] != 2 {
		t.Fatalf("add spawns = %v, want one call for 2 adds", spawner.calls)
	}
	if in.Hazards[0].Dormant {
		t.Fatal("activate_hazard did not wake the dormant zone")
	}
	if in.ArenaRadius != 15 {
		t.Fatalf("arena radius = %v after shrink, want 15", in.ArenaRadius)
	}
	if in.PhasesFired != 1 {
		t.Fatalf("phases fired counter = %d, want 1", in.PhasesFired)
	}
}

func TestEnrageFiresOnce(t *testing.T) {
	def := &data.EncounterDefinition{
		ID:    "pyre",
		Waves: []data.EnemyWave{{Members: []data.WaveMember{{SpecID: 1001, Count: 1}}}},
		Boss:  &data.BossConfig{SpecID: 2001, EnrageTimerMs: 1000},
	}
	boss := testNPC(100, world.Vec2{})
	boss.IsBoss = true
	ai := testAI(boss)
	ai.Engagement = world.EngagementEngaged
	ai.CombatTimeMs = 1000

	in := testInstance(def, []*world.Character{boss}, []*world.AIState{ai})
	ws := world.NewState()
	ws.AddInstance(in)
	sys := NewBossPhaseSystem(ws, nil, event.NewBus(), zap.NewNop())

	sys.Update(100 * time.Millisecond)
	if !ai.Enraged || boss.DamageMult != 2.5 {
		t.Fatalf("enrage not applied: enraged=%v mult=%v", ai.Enraged, boss.DamageMult)
	}

	// Later ticks must not reapply the baseline over outside changes.
	boss.DamageMult = 3.0
	ai.CombatTimeMs = 2000
	sys.Update(100 * time.Millisecond)
	if boss.DamageMult != 3.0 {
		t.Fatalf("enrage reapplied: mult = %v", boss.DamageMult)
	}
}

func TestBossPhasesIdleBossNotChecked(t *testing.T) {
	def := &data.EncounterDefinition{
		ID:    "pyre",
		Waves: []data.EnemyWave{{Members: []data.WaveMember{{SpecID: 1001, Count: 1}}}},
		Boss: &data.BossConfig{SpecID: 2001, Phases: []data.BossPhase{{
			Name:    "opener",
			Trigger: data.PhaseTrigger{Kind: data.TriggerCombatStart},
		}}},
	}
	boss := testNPC(100, world.Vec2{})
	boss.IsBoss = true
	ai := testAI(boss) // idle

	in := testInstance(def, []*world.Character{boss}, []*world.AIState{ai})
	ws := world.NewState()
	ws.AddInstance(in)
	sys := NewBossPhaseSystem(ws, nil, event.NewBus(), zap.NewNop())
	sys.Update(100 * time.Millisecond)

	if ai.PhaseTriggered(0) {
		t.Fatal("phase fired while the boss was idle")
	}
}
