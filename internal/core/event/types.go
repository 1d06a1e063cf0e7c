package event

// Encounter runtime event types. Carried one tick behind emission by the bus.

// WaveAlerted fires when a wave's first member leaves idle. Social aggro
// (directly linked waves) is resolved in the same tick by the engagement
// system; this event exists for logging/telemetry.
type WaveAlerted struct {
	EncounterID string
	WaveIndex   int
}

// PhaseTriggered fires when a boss phase's trigger condition is met.
type PhaseTriggered struct {
	EncounterID string
	BossID      int64
	PhaseIndex  int
}

// BossEnraged fires once when the enrage timer elapses.
type BossEnraged struct {
	EncounterID string
	BossID      int64
}

// EntityDied fires when a live entity's warmth reaches zero.
type EntityDied struct {
	EncounterID string
	EntityID    int64
	WaveIndex   int
	IsBoss      bool
}

// BossDefeated fires after EntityDied for the boss entity.
type BossDefeated struct {
	EncounterID string
	BossID      int64
}

// SkillUnlocked fires when a defeated boss teaches its signature skill.
// SkillID refers to the immutable skill registry.
type SkillUnlocked struct {
	EncounterID string
	SkillID     int32
}

// HazardExpired fires when a timed hazard zone's lifetime elapses.
type HazardExpired struct {
	EncounterID string
	ZoneIndex   int
}

// EncounterComplete fires when every enemy (and boss, if any) is dead.
// Carries everything the persist layer needs: the instance is gone by the
// time this dispatches.
type EncounterComplete struct {
	EncounterID string
	Difficulty  float64
	DurationMs  int64
	Kills       int
	BossDown    bool
	PhasesFired int
}
