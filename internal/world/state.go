package world

import "github.com/hearthfall/server/internal/data"

// HazardZoneState is the runtime record for one authored hazard zone.
// Lifecycle matches the encounter instance.
type HazardZoneState struct {
	Def   *data.HazardZone
	Index int // position in the definition's hazard list

	// AccumMs is elapsed ms since the last zone tick. Firing subtracts
	// TickMs instead of resetting to zero so dt that doesn't divide the
	// tick rate evenly never drifts.
	AccumMs int64

	AgeMs   int64
	Dormant bool
	Expired bool
}

// Active reports whether the zone should be processed this tick.
func (z *HazardZoneState) Active() bool {
	return !z.Dormant && !z.Expired
}

// Instance is one live encounter built from a definition: the spawned
// enemies, their AI states, and hazard runtime state. The definition is
// shared read-only; everything else here is owned by the instance.
type Instance struct {
	ID         string
	Def        *data.EncounterDefinition
	Difficulty float64
	Affixes    []data.ActiveAffix

	Enemies  []*Character
	AIStates map[int64]*AIState
	Boss     *Character
	Hazards  []*HazardZoneState

	// ArenaRadius starts at the boss config value and shrinks under
	// arena mods.
	ArenaRadius float64

	ElapsedMs   int64
	Kills       int
	PhasesFired int
	BossDown    bool
	Complete    bool
}

// AIFor returns the AI state owned by entity id, or nil.
func (in *Instance) AIFor(id int64) *AIState {
	return in.AIStates[id]
}

// NotifySkillInterrupted flags the boss AI that the named skill cast was
// interrupted this tick. The flag feeds skill_interrupted phase triggers and
// is consumed by the next phase check.
func (in *Instance) NotifySkillInterrupted(skillName string) {
	if in.Boss == nil {
		return
	}
	if ai := in.AIFor(in.Boss.ID); ai != nil {
		ai.InterruptedSkill = skillName
	}
}

// NotifyManualPhase flags the boss AI to satisfy a manual phase trigger this
// tick.
func (in *Instance) NotifyManualPhase() {
	if in.Boss == nil {
		return
	}
	if ai := in.AIFor(in.Boss.ID); ai != nil {
		ai.ManualPhaseFire = true
	}
}

// RemoveEntity drops a despawned enemy and its AI state. No transition
// cleanup: a dead NPC's AIState simply goes away with it.
func (in *Instance) RemoveEntity(id int64) {
	delete(in.AIStates, id)
	for i, c := range in.Enemies {
		if c.ID == id {
			in.Enemies = append(in.Enemies[:i], in.Enemies[i+1:]...)
			break
		}
	}
	if in.Boss != nil && in.Boss.ID == id {
		in.Boss = nil
	}
}

// State is the in-memory world: connected players and running encounter
// instances. Accessed only from the game loop goroutine — no locks.
type State struct {
	Players   []*Character
	Instances []*Instance
}

func NewState() *State {
	return &State{}
}

func (s *State) AddPlayer(c *Character) {
	s.Players = append(s.Players, c)
}

func (s *State) AddInstance(in *Instance) {
	s.Instances = append(s.Instances, in)
}

// AllEntities returns players plus every instance's live enemies. The slice
// is rebuilt per call; callers snapshot it at tick start.
func (s *State) AllEntities() []*Character {
	out := make([]*Character, 0, len(s.Players)+32)
	out = append(out, s.Players...)
	for _, in := range s.Instances {
		out = append(out, in.Enemies...)
	}
	return out
}

// DropComplete removes finished instances. Ending an encounter is just
// "stop ticking its entities" — timers are plain accumulated ms, so there
// is nothing to cancel.
func (s *State) DropComplete() {
	kept := s.Instances[:0]
	for _, in := range s.Instances {
		if !in.Complete {
			kept = append(kept, in)
		}
	}
	s.Instances = kept
}
