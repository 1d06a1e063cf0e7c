package world

import "sync/atomic"

// entityIDCounter generates unique entity IDs.
// Starts high to avoid collision with persisted player IDs.
var entityIDCounter atomic.Int64

func init() {
	entityIDCounter.Store(200_000_000)
}

// NextEntityID returns a unique ID for a spawned entity.
func NextEntityID() int64 {
	return entityIDCounter.Add(1)
}

// Team determines hostility. Everything on a different team is hostile.
type Team int8

const (
	TeamPlayers Team = iota
	TeamEnemies
)

// Character holds runtime data for a live combatant.
// Accessed only from the game loop goroutine — no locks.
type Character struct {
	ID     int64
	SpecID int32 // template ID (0 for players)
	Name   string
	School string
	Team   Team
	IsBoss bool

	// WaveIndex is the owning wave for encounter enemies, -1 otherwise.
	WaveIndex int

	Pos Vec2

	Warmth    float64 // current health
	MaxWarmth float64
	Energy    float64 // current casting resource
	MaxEnergy float64

	BaseDamage  float64
	AttackRange float64
	MoveSpeed   float64 // units per second before multipliers

	// Baseline multipliers. Boss phases and enrage overwrite these; the
	// combat resolver reads them on every hit.
	DamageMult float64
	SpeedMult  float64

	AttackCooldownMs int64 // ms until next attack allowed
	Dead             bool

	// Immunity flags from the spec template.
	ImmuneSlow      bool
	ImmuneKnockdown bool

	// Status effects applied by hazards, ms remaining.
	SlowMsLeft      int64
	SlowFactor      float64
	KnockdownMsLeft int64
}

// EffectiveSpeed is the movement speed after multipliers and status effects.
func (c *Character) EffectiveSpeed() float64 {
	s := c.MoveSpeed * c.SpeedMult
	if c.SlowMsLeft > 0 && c.SlowFactor > 0 {
		s *= c.SlowFactor
	}
	if c.KnockdownMsLeft > 0 {
		return 0
	}
	return s
}

// ApplyDamage reduces warmth, clamping at zero. Returns true if this hit
// would kill. The caller decides whether death actually happens (the combat
// system owns death, so triggers reading "would-die" stay consistent).
func (c *Character) ApplyDamage(amount float64) bool {
	if c.Dead || amount <= 0 {
		return false
	}
	c.Warmth -= amount
	if c.Warmth <= 0 {
		c.Warmth = 0
		return true
	}
	return false
}
