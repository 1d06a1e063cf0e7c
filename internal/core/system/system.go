package system

import "time"

// Phase defines execution ordering within a single simulation tick.
type Phase int

const (
	PhaseSnapshot   Phase = iota // 0: capture world snapshot for this tick
	PhasePreUpdate               // 1: dispatch last tick's events
	PhaseUpdate                  // 2: engagement, boss phases, combat
	PhasePostUpdate              // 3: hazards, respawn, movement
	PhasePersist                 // 4: encounter result writes
	PhaseCleanup                 // 5: clear per-tick flags, drop finished instances
)

// System is the interface every simulation system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
