package system

import (
	"github.com/hearthfall/server/internal/data"
	"github.com/hearthfall/server/internal/world"
)

func testNPC(id int64, pos world.Vec2) *world.Character {
	return &world.Character{
		ID:          id,
		Name:        "test-npc",
		Team:        world.TeamEnemies,
		Pos:         pos,
		Warmth:      100,
		MaxWarmth:   100,
		BaseDamage:  10,
		AttackRange: 2,
		MoveSpeed:   5,
		DamageMult:  1,
		SpeedMult:   1,
	}
}

func testPlayer(id int64, pos world.Vec2) *world.Character {
	return &world.Character{
		ID:        id,
		Name:      "test-player",
		Team:      world.TeamPlayers,
		Pos:       pos,
		Warmth:    200,
		MaxWarmth: 200,
	}
}

func testAI(npc *world.Character) *world.AIState {
	return &world.AIState{
		EntityID:          npc.ID,
		Engagement:        world.EngagementIdle,
		SpawnPosition:     npc.Pos,
		EngagementRadius:  10,
		LeashRadius:       20,
		EngagementDelayMs: 500,
	}
}

func snapOf(chars ...*world.Character) *world.Snapshot {
	return world.BuildSnapshot(chars)
}

// testInstance assembles an instance by hand around pre-built characters.
func testInstance(def *data.EncounterDefinition, npcs []*world.Character, ais []*world.AIState) *world.Instance {
	in := &world.Instance{
		ID:       "test-1",
		Def:      def,
		Enemies:  npcs,
		AIStates: make(map[int64]*world.AIState),
	}
	for _, ai := range ais {
		in.AIStates[ai.EntityID] = ai
	}
	for _, c := range npcs {
		if c.IsBoss {
			in.Boss = c
		}
	}
	return in
}
