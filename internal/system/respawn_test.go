package system

import (
	"testing"
	"time"

	"github.com/hearthfall/server/internal/data"
	"github.com/hearthfall/server/internal/world"
	"go.uber.org/zap"
)

func TestRespawnAfterDelay(t *testing.T) {
	def := &data.EncounterDefinition{
		ID: "courtyard",
		Waves: []data.EnemyWave{{
			Members:        []data.WaveMember{{SpecID: 1001, Count: 1}},
			Respawn:        true,
			RespawnDelayMs: 1000,
		}},
	}
	npc := testNPC(1, world.Vec2{X: 15, Y: 0}) // wandered off before dying
	npc.Dead = true
	npc.Warmth = 0
	npc.SlowMsLeft = 800
	ai := testAI(npc)
	ai.SpawnPosition = world.Vec2{X: 3, Y: 3}
	ai.Engagement = world.EngagementEngaged
	ai.CombatTimeMs = 4000

	in := testInstance(def, []*world.Character{npc}, []*world.AIState{ai})
	ws := world.NewState()
	ws.AddInstance(in)
	sys := NewRespawnSystem(ws, zap.NewNop())

	for i := 0; i < 9; i++ {
		sys.Update(100 * time.Millisecond)
		if !npc.Dead {
			t.Fatalf("respawned after %dms, delay is 1000", (i+1)*100)
		}
	}
	sys.Update(100 * time.Millisecond)

	if npc.Dead {
		t.Fatal("not respawned at the full delay")
	}
	if npc.Warmth != npc.MaxWarmth {
		t.Fatalf("respawned at %v/%v warmth", npc.Warmth, npc.MaxWarmth)
	}
	if npc.Pos != ai.SpawnPosition {
		t.Fatalf("respawned at %v, want spawn %v", npc.Pos, ai.SpawnPosition)
	}
	if npc.SlowMsLeft != 0 {
		t.Fatal("status effects carried across respawn")
	}
	if ai.Engagement != world.EngagementIdle || ai.CombatTimeMs != 0 {
		t.Fatalf("AI not reset: %v combat=%d", ai.Engagement, ai.CombatTimeMs)
	}
}

func TestNonRespawnWaveStaysDead(t *testing.T) {
	def := &data.EncounterDefinition{
		ID:    "courtyard",
		Waves: []data.EnemyWave{{Members: []data.WaveMember{{SpecID: 1001, Count: 1}}}},
	}
	npc := testNPC(1, world.Vec2{})
	npc.Dead = true
	ai := testAI(npc)

	in := testInstance(def, []*world.Character{npc}, []*world.AIState{ai})
	ws := world.NewState()
	ws.AddInstance(in)
	sys := NewRespawnSystem(ws, zap.NewNop())

	for i := 0; i < 100; i++ {
		sys.Update(100 * time.Millisecond)
	}
	if !npc.Dead {
		t.Fatal("non-respawn wave member came back")
	}
}

func TestBossNeverRespawns(t *testing.T) {
	def := &data.EncounterDefinition{
		ID: "pyre",
		Waves: []data.EnemyWave{{
			Members:        []data.WaveMember{{SpecID: 1001, Count: 1}},
			Respawn:        true,
			RespawnDelayMs: 100,
		}},
		Boss: &data.BossConfig{SpecID: 2001},
	}
	boss := testNPC(100, world.Vec2{})
	boss.IsBoss = true
	boss.Dead = true
	boss.WaveIndex = 0 // even a miswired wave index must not revive it
	ai := testAI(boss)

	in := testInstance(def, []*world.Character{boss}, []*world.AIState{ai})
	ws := world.NewState()
	ws.AddInstance(in)
	sys := NewRespawnSystem(ws, zap.NewNop())

	for i := 0; i < 10; i++ {
		sys.Update(100 * time.Millisecond)
	}
	if !boss.Dead {
		t.Fatal("boss respawned")
	}
}
