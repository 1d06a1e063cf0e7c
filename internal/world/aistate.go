package world

// EngagementState is the per-NPC combat posture. Exactly one value holds at
// any time. Entry path is idle→alerted→engaged; exit path is
// engaged→leashing→resetting→idle. No other transitions exist.
type EngagementState int8

const (
	EngagementIdle EngagementState = iota
	EngagementAlerted
	EngagementEngaged
	EngagementLeashing
	EngagementResetting
)

func (s EngagementState) String() string {
	switch s {
	case EngagementIdle:
		return "idle"
	case EngagementAlerted:
		return "alerted"
	case EngagementEngaged:
		return "engaged"
	case EngagementLeashing:
		return "leashing"
	case EngagementResetting:
		return "resetting"
	}
	return "unknown"
}

// MaxBossPhases bounds the triggered bitset. Phase counts are known at
// authoring time and far below this.
const MaxBossPhases = 64

// AIState is the mutable per-NPC runtime record. Created at spawn, owned
// exclusively by its NPC, destroyed with it. Only the engagement state
// machine and the boss phase engine write to it.
type AIState struct {
	EntityID int64

	Engagement    EngagementState
	SpawnPosition Vec2 // captured at spawn, never changes

	// CombatTimeMs is elapsed ms since first engagement; zeroed on reset.
	CombatTimeMs int64

	// Timers, accumulated milliseconds compared against thresholds each
	// tick. Nothing here is a scheduled callback.
	AlertMs int64 // time spent in alerted
	ResetMs int64 // time spent in resetting

	// Engagement tuning resolved from the owning wave at spawn.
	EngagementRadius   float64
	LeashRadius        float64
	EngagementDelayMs  int64
	WaveIndex          int

	// MoveTarget is the movement intent for this tick (leash return or
	// chase). Consumed and cleared by the movement executor.
	MoveTarget *Vec2

	// RespawnMs accumulates while dead, for respawn-flagged waves.
	RespawnMs int64

	// Boss-only state.
	PhaseBits  uint64 // triggered bitset indexed by phase position
	Enraged    bool
	AddsKilled int

	// Per-tick external trigger flags, set by the combat resolver and
	// cleared after the boss phase check.
	InterruptedSkill string
	ManualPhaseFire  bool
}

// PhaseTriggered reports whether phase i already fired this combat instance.
func (a *AIState) PhaseTriggered(i int) bool {
	if i < 0 || i >= MaxBossPhases {
		return false
	}
	return a.PhaseBits&(1<<uint(i)) != 0
}

// MarkPhaseTriggered records phase i as fired so it can never refire.
func (a *AIState) MarkPhaseTriggered(i int) {
	if i < 0 || i >= MaxBossPhases {
		return
	}
	a.PhaseBits |= 1 << uint(i)
}

// ClearCombat resets combat bookkeeping on the resetting→idle transition.
// Phase bits survive: a phase fires at most once per combat *instance*, and
// a leashed boss resuming combat is the same instance.
func (a *AIState) ClearCombat() {
	a.CombatTimeMs = 0
	a.AlertMs = 0
	a.ResetMs = 0
	a.MoveTarget = nil
}
