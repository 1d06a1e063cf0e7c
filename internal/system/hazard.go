package system

import (
	"time"

	"github.com/hearthfall/server/internal/core/event"
	coresys "github.com/hearthfall/server/internal/core/system"
	"github.com/hearthfall/server/internal/data"
	"github.com/hearthfall/server/internal/world"
	"go.uber.org/zap"
)

// HazardResolver computes the damage of one zone tick against one target.
// Implemented by the scripting engine; nil falls back to the authored amount.
type HazardResolver interface {
	HazardDamage(zone *data.HazardZone, target *world.Character) float64
}

// isInsideHazard tests circle containment. Authored non-circle shapes
// degrade to their bounding circle here.
func isInsideHazard(pos world.Vec2, zone *data.HazardZone) bool {
	return pos.Dist(world.Vec2{X: zone.CenterX, Y: zone.CenterY}) <= zone.Radius
}

// affects applies the zone's team filter.
func affects(zone *data.HazardZone, c *world.Character) bool {
	switch c.Team {
	case world.TeamPlayers:
		return zone.AffectsPlayers
	default:
		return zone.AffectsEnemies
	}
}

// ProcessHazardZones advances every zone's tick accumulator by dtMs and
// applies one zone tick per tick_rate_ms owed to each entity inside. Firing
// subtracts tick_rate_ms rather than resetting the accumulator, so a dt that
// doesn't divide the tick rate never drifts. Timed zones expire once their
// lifetime elapses; expired zones and dead entities are no-ops. Returns the
// indices of zones that expired during this call.
func ProcessHazardZones(entities []*world.Character, zones []*world.HazardZoneState, dtMs int64, resolver HazardResolver) []int {
	var expired []int
	for _, z := range zones {
		if !z.Active() {
			continue
		}

		z.AccumMs += dtMs
		for z.AccumMs >= z.Def.TickMs {
			z.AccumMs -= z.Def.TickMs
			applyZoneTick(entities, z.Def, resolver)
		}

		if z.Def.Duration > 0 {
			z.AgeMs += dtMs
			if z.AgeMs >= z.Def.Duration {
				z.Expired = true
				expired = append(expired, z.Index)
			}
		}
	}
	return expired
}

func applyZoneTick(entities []*world.Character, zone *data.HazardZone, resolver HazardResolver) {
	for _, c := range entities {
		if c.Dead || !affects(zone, c) || !isInsideHazard(c.Pos, zone) {
			continue
		}
		switch zone.Kind {
		case data.HazardDamage:
			amount := zone.Amount
			if resolver != nil {
				amount = resolver.HazardDamage(zone, c)
			}
			c.ApplyDamage(amount)
		case data.HazardSlow:
			if c.ImmuneSlow {
				continue
			}
			c.SlowFactor = zone.Factor
			if zone.EffectMs > c.SlowMsLeft {
				c.SlowMsLeft = zone.EffectMs
			}
		case data.HazardKnockdown:
			if c.ImmuneKnockdown {
				continue
			}
			if zone.EffectMs > c.KnockdownMsLeft {
				c.KnockdownMsLeft = zone.EffectMs
			}
		}
	}
}

// HazardSystem runs zone processing for every instance once per tick, after
// all engagement updates. Phase 3 (PostUpdate).
type HazardSystem struct {
	state    *world.State
	resolver HazardResolver
	bus      *event.Bus
	log      *zap.Logger
}

func NewHazardSystem(ws *world.State, resolver HazardResolver, bus *event.Bus, log *zap.Logger) *HazardSystem {
	return &HazardSystem{state: ws, resolver: resolver, bus: bus, log: log}
}

func (s *HazardSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *HazardSystem) Update(dt time.Duration) {
	dtMs := dt.Milliseconds()
	for _, in := range s.state.Instances {
		if len(in.Hazards) == 0 {
			continue
		}
		// Zones affect everything standing in them, players included.
		entities := append([]*world.Character{}, s.state.Players...)
		entities = append(entities, in.Enemies...)

		for _, idx := range ProcessHazardZones(entities, in.Hazards, dtMs, s.resolver) {
			event.Emit(s.bus, event.HazardExpired{EncounterID: in.ID, ZoneIndex: idx})
			s.log.Debug("hazard expired",
				zap.String("encounter", in.ID),
				zap.Int("zone", idx))
		}
	}

	// Status effect timers tick down with the same clock.
	for _, c := range s.state.AllEntities() {
		if c.SlowMsLeft > 0 {
			c.SlowMsLeft -= dtMs
			if c.SlowMsLeft <= 0 {
				c.SlowMsLeft = 0
				c.SlowFactor = 0
			}
		}
		if c.KnockdownMsLeft > 0 {
			c.KnockdownMsLeft -= dtMs
			if c.KnockdownMsLeft < 0 {
				c.KnockdownMsLeft = 0
			}
		}
	}
}
