package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EncounterDefinition is the immutable template an encounter instance is
// built from. Never mutated after authoring; every instance spawned from it
// shares the same definition by reference.
type EncounterDefinition struct {
	ID               string       `yaml:"id"`
	Name             string       `yaml:"name"`
	DifficultyRating float64      `yaml:"difficulty_rating"`
	Waves            []EnemyWave  `yaml:"waves"`
	Boss             *BossConfig  `yaml:"boss,omitempty"`
	Hazards          []HazardZone `yaml:"hazards,omitempty"`
	Affixes          []ActiveAffix `yaml:"affixes,omitempty"`
}

// WaveMember is one spec entry inside a wave.
type WaveMember struct {
	SpecID int32 `yaml:"spec_id"`
	Count  int   `yaml:"count"`
}

// EnemyWave is a group of enemies sharing spawn and engagement configuration.
type EnemyWave struct {
	Members     []WaveMember `yaml:"members"`
	SpawnX      float64      `yaml:"spawn_x"`
	SpawnY      float64      `yaml:"spawn_y"`
	SpawnRadius float64      `yaml:"spawn_radius"`

	// EngagementRadius 0 means the server default applies.
	EngagementRadius float64 `yaml:"engagement_radius"`
	LeashRadius      float64 `yaml:"leash_radius"`

	// EngagementDelayMs 0 means the server default (500 ms) applies.
	EngagementDelayMs int64 `yaml:"engagement_delay_ms"`

	// LinkGroups lists wave indices pulled to alerted when this wave
	// alerts. Propagates one hop only, never transitively.
	LinkGroups []int `yaml:"link_groups"`

	Respawn        bool  `yaml:"respawn"`
	RespawnDelayMs int64 `yaml:"respawn_delay_ms"`
}

// BossConfig describes the optional encounter boss.
type BossConfig struct {
	SpecID        int32       `yaml:"spec_id"`
	Phases        []BossPhase `yaml:"phases"`
	ArenaX        float64     `yaml:"arena_x"`
	ArenaY        float64     `yaml:"arena_y"`
	ArenaRadius   float64     `yaml:"arena_radius"`
	EnrageTimerMs int64       `yaml:"enrage_timer_ms"` // 0 = no enrage

	// SignatureSkillID is the skill the boss teaches on defeat; a stable
	// reference into the immutable skill registry.
	SignatureSkillID int32 `yaml:"signature_skill_id"`
}

// BossPhase is a one-time state change gated by a trigger. Phases are
// evaluated in array order and fire at most once per combat instance.
type BossPhase struct {
	Name    string       `yaml:"name"`
	Trigger PhaseTrigger `yaml:"trigger"`

	// Multipliers become the boss's new baseline when the phase fires.
	// 0 means "leave unchanged".
	DamageMultiplier float64 `yaml:"damage_multiplier"`
	SpeedMultiplier  float64 `yaml:"speed_multiplier"`

	AddSpawns []AddSpawn `yaml:"add_spawns"`
	ArenaMods []ArenaMod `yaml:"arena_mods"`
}

// TriggerKind discriminates the PhaseTrigger union.
type TriggerKind string

const (
	TriggerCombatStart      TriggerKind = "combat_start"
	TriggerWarmthPercent    TriggerKind = "warmth_percent"
	TriggerTimeInCombat     TriggerKind = "time_in_combat"
	TriggerAddsKilled       TriggerKind = "adds_killed"
	TriggerSkillInterrupted TriggerKind = "skill_interrupted"
	TriggerManual           TriggerKind = "manual"
)

// PhaseTrigger is a tagged union: Kind selects which payload field applies.
// The engine switches on Kind; no dynamic dispatch.
type PhaseTrigger struct {
	Kind      TriggerKind `yaml:"kind"`
	Percent   float64     `yaml:"percent"`    // warmth_percent: fire at warmth/max ≤ this
	TimeMs    int64       `yaml:"time_ms"`    // time_in_combat
	Count     int         `yaml:"count"`      // adds_killed
	SkillName string      `yaml:"skill_name"` // skill_interrupted
}

// AddSpawn re-spawns count members of an existing wave when a phase fires.
type AddSpawn struct {
	WaveIndex int `yaml:"wave_index"`
	Count     int `yaml:"count"`
}

// ArenaModKind discriminates the ArenaMod union.
type ArenaModKind string

const (
	ArenaModActivateHazard ArenaModKind = "activate_hazard" // wake a dormant hazard
	ArenaModShrink         ArenaModKind = "shrink"          // reduce arena radius
)

// ArenaMod is a phase-driven arena change, applied by the host loop.
type ArenaMod struct {
	Kind        ArenaModKind `yaml:"kind"`
	HazardIndex int          `yaml:"hazard_index"` // activate_hazard
	Radius      float64      `yaml:"radius"`       // shrink
}

// HazardKind discriminates the hazard effect union.
type HazardKind string

const (
	HazardDamage    HazardKind = "damage"
	HazardSlow      HazardKind = "slow"
	HazardKnockdown HazardKind = "knockdown"
)

// HazardZone is a static or timed area applying a periodic effect to
// entities inside it. Shape is a circle; other authored shapes degrade to
// their bounding circle in this runtime.
type HazardZone struct {
	Name     string     `yaml:"name"`
	Kind     HazardKind `yaml:"kind"`
	CenterX  float64    `yaml:"center_x"`
	CenterY  float64    `yaml:"center_y"`
	Radius   float64    `yaml:"radius"`
	TickMs   int64      `yaml:"tick_rate_ms"`
	Duration int64      `yaml:"duration_ms"` // 0 = permanent for the encounter

	AffectsPlayers bool `yaml:"affects_players"`
	AffectsEnemies bool `yaml:"affects_enemies"`

	// Dormant zones wait for an activate_hazard arena mod.
	Dormant bool `yaml:"dormant"`

	// Effect payload by Kind.
	Amount     float64 `yaml:"amount"`      // damage per zone tick
	Factor     float64 `yaml:"factor"`      // slow: speed multiplier while slowed
	EffectMs   int64   `yaml:"effect_ms"`   // slow/knockdown duration per zone tick
}

// ActiveAffix is a named modifier applied uniformly to all enemies in an
// encounter instance.
type ActiveAffix struct {
	Name       string  `yaml:"name"`
	Stat       string  `yaml:"stat"` // warmth, energy, damage, speed
	Multiplier float64 `yaml:"multiplier"`
}

// Validate fails fast on malformed authoring so bad content is caught before
// a match starts. Phase threshold ordering is deliberately NOT validated:
// the first-untriggered-match rule gives even oddly ordered phases a defined
// outcome, so ordering stays an authoring responsibility.
func (d *EncounterDefinition) Validate(enemies *EnemyTable) error {
	for wi, wave := range d.Waves {
		if len(wave.Members) == 0 {
			return fmt.Errorf("encounter %s: wave %d has no members", d.ID, wi)
		}
		for _, m := range wave.Members {
			if enemies != nil && enemies.Get(m.SpecID) == nil {
				return fmt.Errorf("encounter %s: wave %d references unknown spec %d", d.ID, wi, m.SpecID)
			}
			if m.Count <= 0 {
				return fmt.Errorf("encounter %s: wave %d spec %d has count %d", d.ID, wi, m.SpecID, m.Count)
			}
		}
		for _, lg := range wave.LinkGroups {
			if lg < 0 || lg >= len(d.Waves) {
				return fmt.Errorf("encounter %s: wave %d links out-of-range wave %d", d.ID, wi, lg)
			}
		}
	}
	if d.Boss != nil {
		if enemies != nil && enemies.Get(d.Boss.SpecID) == nil {
			return fmt.Errorf("encounter %s: boss references unknown spec %d", d.ID, d.Boss.SpecID)
		}
		if len(d.Boss.Phases) > 64 {
			return fmt.Errorf("encounter %s: boss has %d phases, max 64", d.ID, len(d.Boss.Phases))
		}
		for pi, phase := range d.Boss.Phases {
			for _, a := range phase.AddSpawns {
				if a.WaveIndex < 0 || a.WaveIndex >= len(d.Waves) {
					return fmt.Errorf("encounter %s: phase %d add-spawn targets out-of-range wave %d", d.ID, pi, a.WaveIndex)
				}
			}
			for _, m := range phase.ArenaMods {
				if m.Kind == ArenaModActivateHazard && (m.HazardIndex < 0 || m.HazardIndex >= len(d.Hazards)) {
					return fmt.Errorf("encounter %s: phase %d activates out-of-range hazard %d", d.ID, pi, m.HazardIndex)
				}
			}
		}
	}
	for hi, h := range d.Hazards {
		if h.TickMs <= 0 {
			return fmt.Errorf("encounter %s: hazard %d has tick_rate_ms %d", d.ID, hi, h.TickMs)
		}
	}
	return nil
}

type encounterListFile struct {
	Encounters []EncounterDefinition `yaml:"encounters"`
}

// EncounterTable holds encounter definitions indexed by ID.
type EncounterTable struct {
	defs  map[string]*EncounterDefinition
	order []string
}

// LoadEncounterTable loads encounter definitions from a YAML file.
func LoadEncounterTable(path string) (*EncounterTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read encounter_list: %w", err)
	}
	var f encounterListFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse encounter_list: %w", err)
	}
	t := &EncounterTable{defs: make(map[string]*EncounterDefinition, len(f.Encounters))}
	for i := range f.Encounters {
		def := &f.Encounters[i]
		t.defs[def.ID] = def
		t.order = append(t.order, def.ID)
	}
	return t, nil
}

// Get returns a definition by ID, or nil if not found.
func (t *EncounterTable) Get(id string) *EncounterDefinition {
	return t.defs[id]
}

// All returns definitions in file order.
func (t *EncounterTable) All() []*EncounterDefinition {
	out := make([]*EncounterDefinition, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.defs[id])
	}
	return out
}

// Count returns the number of loaded definitions.
func (t *EncounterTable) Count() int {
	return len(t.defs)
}
