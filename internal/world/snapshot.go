package world

// EntityView is one entity's position/team/liveness as seen at tick start.
type EntityView struct {
	ID   int64
	Team Team
	Pos  Vec2
	Dead bool
}

// Snapshot is the immutable world view every engagement update reads during
// one tick. Taking it once at tick start means NPC A's mid-tick death cannot
// change what NPC B "saw" — all updates observe the same world.
type Snapshot struct {
	Entities []EntityView
}

// BuildSnapshot captures all entities' observable state. Called once per
// tick, before any Update-phase system runs.
func BuildSnapshot(entities []*Character) *Snapshot {
	views := make([]EntityView, 0, len(entities))
	for _, c := range entities {
		views = append(views, EntityView{
			ID:   c.ID,
			Team: c.Team,
			Pos:  c.Pos,
			Dead: c.Dead,
		})
	}
	return &Snapshot{Entities: views}
}

// NearestHostile returns the closest living hostile to pos for the given
// team, or nil when none exists.
func (s *Snapshot) NearestHostile(team Team, pos Vec2) *EntityView {
	var best *EntityView
	bestDist := 0.0
	for i := range s.Entities {
		e := &s.Entities[i]
		if e.Dead || e.Team == team {
			continue
		}
		d := e.Pos.Dist(pos)
		if best == nil || d < bestDist {
			best = e
			bestDist = d
		}
	}
	return best
}

// HostileWithin reports whether any living hostile of team sits within
// radius of pos. Level-triggered: answers from current positions only, no
// memory of prior ticks.
func (s *Snapshot) HostileWithin(team Team, pos Vec2, radius float64) bool {
	for i := range s.Entities {
		e := &s.Entities[i]
		if e.Dead || e.Team == team {
			continue
		}
		if e.Pos.Dist(pos) <= radius {
			return true
		}
	}
	return false
}
