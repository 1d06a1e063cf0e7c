package system

import (
	"testing"

	"github.com/hearthfall/server/internal/data"
	"github.com/hearthfall/server/internal/world"
)

func damageZone(tickMs, durationMs int64) *world.HazardZoneState {
	return &world.HazardZoneState{
		Def: &data.HazardZone{
			Name:           "embers",
			Kind:           data.HazardDamage,
			Radius:         5,
			TickMs:         tickMs,
			Duration:       durationMs,
			AffectsPlayers: true,
			Amount:         10,
		},
	}
}

func TestHazardTeamFilter(t *testing.T) {
	player := testPlayer(1, world.Vec2{X: 1, Y: 0})
	npc := testNPC(2, world.Vec2{X: -1, Y: 0})

	z := damageZone(1000, 0) // players only
	ProcessHazardZones([]*world.Character{player, npc}, []*world.HazardZoneState{z}, 1000, nil)
	if player.Warmth != 190 {
		t.Fatalf("player warmth = %v, want 190", player.Warmth)
	}
	if npc.Warmth != 100 {
		t.Fatalf("enemy warmth = %v, player-only zone hit it", npc.Warmth)
	}

	// Flip the filter and the asymmetry flips with it.
	z2 := damageZone(1000, 0)
	z2.Def.AffectsPlayers = false
	z2.Def.AffectsEnemies = true
	ProcessHazardZones([]*world.Character{player, npc}, []*world.HazardZoneState{z2}, 1000, nil)
	if player.Warmth != 190 {
		t.Fatalf("player warmth = %v, enemy-only zone hit it", player.Warmth)
	}
	if npc.Warmth != 90 {
		t.Fatalf("enemy warmth = %v, want 90", npc.Warmth)
	}
}

func TestHazardAccumulatorSubtractsWithoutDrift(t *testing.T) {
	player := testPlayer(1, world.Vec2{})
	z := damageZone(1000, 0)

	// Three 700ms steps owe exactly two zone ticks, with 100ms carried.
	for i := 0; i < 3; i++ {
		ProcessHazardZones([]*world.Character{player}, []*world.HazardZoneState{z}, 700, nil)
	}
	if player.Warmth != 180 {
		t.Fatalf("warmth = %v after 2100ms at 1000ms tick, want 180", player.Warmth)
	}
	if z.AccumMs != 100 {
		t.Fatalf("accumulator = %d, want carried remainder 100", z.AccumMs)
	}
}

func TestHazardLargeStepFiresMultipleTicks(t *testing.T) {
	player := testPlayer(1, world.Vec2{})
	z := damageZone(500, 0)

	ProcessHazardZones([]*world.Character{player}, []*world.HazardZoneState{z}, 1700, nil)
	if player.Warmth != 170 {
		t.Fatalf("warmth = %v after one 1700ms step at 500ms tick, want 170", player.Warmth)
	}
}

func TestHazardOutsideRadiusUntouched(t *testing.T) {
	player := testPlayer(1, world.Vec2{X: 6, Y: 0}) // radius is 5
	z := damageZone(1000, 0)

	ProcessHazardZones([]*world.Character{player}, []*world.HazardZoneState{z}, 1000, nil)
	if player.Warmth != 200 {
		t.Fatalf("warmth = %v outside the zone, want 200", player.Warmth)
	}
}

func TestHazardExpiry(t *testing.T) {
	player := testPlayer(1, world.Vec2{})
	z := damageZone(500, 1000)
	z.Index = 3

	expired := ProcessHazardZones([]*world.Character{player}, []*world.HazardZoneState{z}, 600, nil)
	if len(expired) != 0 {
		t.Fatalf("zone expired at 600ms of a 1000ms lifetime")
	}
	expired = ProcessHazardZones([]*world.Character{player}, []*world.HazardZoneState{z}, 600, nil)
	if len(expired) != 1 || expired[0] != 3 {
		t.Fatalf("expired = %v, want [3]", expired)
	}
	if !z.Expired {
		t.Fatal("zone state not marked expired")
	}

	// Expired zones are no-ops from then on.
	before := player.Warmth
	ProcessHazardZones([]*world.Character{player}, []*world.HazardZoneState{z}, 5000, nil)
	if player.Warmth != before {
		t.Fatal("expired zone still applied ticks")
	}
}

func TestDormantHazardInert(t *testing.T) {
	player := testPlayer(1, world.Vec2{})
	z := damageZone(500, 1000)
	z.Dormant = true

	ProcessHazardZones([]*world.Character{player}, []*world.HazardZoneState{z}, 2000, nil)
	if player.Warmth != 200 {
		t.Fatalf("dormant zone dealt damage, warmth = %v", player.Warmth)
	}
	if z.AgeMs != 0 {
		t.Fatalf("dormant zone aged %dms, lifetime starts on activation", z.AgeMs)
	}

	// Waking it starts both ticking and aging.
	z.Dormant = false
	ProcessHazardZones([]*world.Character{player}, []*world.HazardZoneState{z}, 500, nil)
	if player.Warmth != 190 {
		t.Fatalf("warmth = %v after activation, want 190", player.Warmth)
	}
}

func TestSlowZoneRespectsImmunity(t *testing.T) {
	slowed := testNPC(1, world.Vec2{})
	immune := testNPC(2, world.Vec2{})
	immune.ImmuneSlow = true

	z := &world.HazardZoneState{Def: &data.HazardZone{
		Kind:           data.HazardSlow,
		Radius:         5,
		TickMs:         1000,
		AffectsEnemies: true,
		Factor:         0.5,
		EffectMs:       2000,
	}}
	ProcessHazardZones([]*world.Character{slowed, immune}, []*world.HazardZoneState{z}, 1000, nil)

	if slowed.SlowMsLeft != 2000 || slowed.SlowFactor != 0.5 {
		t.Fatalf("slow not applied: ms=%d factor=%v", slowed.SlowMsLeft, slowed.SlowFactor)
	}
	if immune.SlowMsLeft != 0 {
		t.Fatal("slow applied to an immune target")
	}
	if got := slowed.EffectiveSpeed(); got != slowed.MoveSpeed*0.5 {
		t.Fatalf("effective speed = %v under 0.5 slow, want %v", got, slowed.MoveSpeed*0.5)
	}
}

func TestSlowReapplyTakesMaxDuration(t *testing.T) {
	npc := testNPC(1, world.Vec2{})
	npc.SlowMsLeft = 3000
	npc.SlowFactor = 0.7

	z := &world.HazardZoneState{Def: &data.HazardZone{
		Kind:           data.HazardSlow,
		Radius:         5,
		TickMs:         1000,
		AffectsEnemies: true,
		Factor:         0.5,
		EffectMs:       1000,
	}}
	ProcessHazardZones([]*world.Character{npc}, []*world.HazardZoneState{z}, 1000, nil)

	// A shorter reapply never cuts a longer remaining effect.
	if npc.SlowMsLeft != 3000 {
		t.Fatalf("slow remaining = %d, want 3000 kept", npc.SlowMsLeft)
	}
	if npc.SlowFactor != 0.5 {
		t.Fatalf("slow factor = %v, want latest zone's 0.5", npc.SlowFactor)
	}
}

func TestKnockdownRespectsImmunity(t *testing.T) {
	npc := testNPC(1, world.Vec2{})
	immune := testNPC(2, world.Vec2{})
	immune.ImmuneKnockdown = true

	z := &world.HazardZoneState{Def: &data.HazardZone{
		Kind:           data.HazardKnockdown,
		Radius:         5,
		TickMs:         1000,
		AffectsEnemies: true,
		EffectMs:       800,
	}}
	ProcessHazardZones([]*world.Character{npc, immune}, []*world.HazardZoneState{z}, 1000, nil)

	if npc.KnockdownMsLeft != 800 {
		t.Fatalf("knockdown ms = %d, want 800", npc.KnockdownMsLeft)
	}
	if immune.KnockdownMsLeft != 0 {
		t.Fatal("knockdown applied to an immune target")
	}
}

func TestDeadEntityIgnoredByZones(t *testing.T) {
	corpse := testPlayer(1, world.Vec2{})
	corpse.Dead = true
	corpse.Warmth = 0

	z := damageZone(1000, 0)
	ProcessHazardZones([]*world.Character{corpse}, []*world.HazardZoneState{z}, 1000, nil)
	if corpse.Warmth != 0 {
		t.Fatalf("dead entity warmth changed to %v", corpse.Warmth)
	}
}

type fixedHazardResolver struct{ amount float64 }

func (r fixedHazardResolver) HazardDamage(_ *data.HazardZone, _ *world.Character) float64 {
	return r.amount
}

func TestHazardResolverOverridesAmount(t *testing.T) {
	player := testPlayer(1, world.Vec2{})
	z := damageZone(1000, 0)

	ProcessHazardZones([]*world.Character{player}, []*world.HazardZoneState{z}, 1000, fixedHazardResolver{amount: 25})
	if player.Warmth != 175 {
		t.Fatalf("warmth = %v with resolver amount 25, want 175", player.Warmth)
	}
}
