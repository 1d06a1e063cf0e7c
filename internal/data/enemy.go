package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EnemySpec holds the static stat template for an enemy type, loaded from
// YAML. Read-only after load; shared by reference across every instance
// spawned from it.
type EnemySpec struct {
	SpecID int32  `yaml:"spec_id"`
	Name   string `yaml:"name"`
	School string `yaml:"school"` // ember, frost, gale, stone

	// Base stats before any multiplier.
	Warmth      float64 `yaml:"warmth"`
	Energy      float64 `yaml:"energy"`
	Damage      float64 `yaml:"damage"`
	AttackRange float64 `yaml:"attack_range"`
	MoveSpeed   float64 `yaml:"move_speed"` // units per second

	// Per-spec stat multipliers, applied on top of base.
	WarmthMult float64 `yaml:"warmth_mult"`
	EnergyMult float64 `yaml:"energy_mult"`
	DamageMult float64 `yaml:"damage_mult"`

	DifficultyRating float64 `yaml:"difficulty_rating"`

	ImmuneSlow      bool `yaml:"immune_slow"`
	ImmuneKnockdown bool `yaml:"immune_knockdown"`
}

// BaseWarmth returns the warmth stat after the spec's own multiplier.
func (s *EnemySpec) BaseWarmth() float64 { return s.Warmth * orOne(s.WarmthMult) }

// BaseEnergy returns the energy stat after the spec's own multiplier.
func (s *EnemySpec) BaseEnergy() float64 { return s.Energy * orOne(s.EnergyMult) }

// BaseDamage returns the damage stat after the spec's own multiplier.
func (s *EnemySpec) BaseDamage() float64 { return s.Damage * orOne(s.DamageMult) }

func orOne(f float64) float64 {
	if f == 0 {
		return 1
	}
	return f
}

type enemyListFile struct {
	Enemies []EnemySpec `yaml:"enemies"`
}

// EnemyTable holds all enemy specs indexed by SpecID.
type EnemyTable struct {
	specs map[int32]*EnemySpec
}

// LoadEnemyTable loads enemy specs from a YAML file.
func LoadEnemyTable(path string) (*EnemyTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read enemy_list: %w", err)
	}
	var f enemyListFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse enemy_list: %w", err)
	}
	t := &EnemyTable{specs: make(map[int32]*EnemySpec, len(f.Enemies))}
	for i := range f.Enemies {
		spec := &f.Enemies[i]
		t.specs[spec.SpecID] = spec
	}
	return t, nil
}

// NewEnemyTable builds a table from in-memory specs (tests, tools).
func NewEnemyTable(specs []EnemySpec) *EnemyTable {
	t := &EnemyTable{specs: make(map[int32]*EnemySpec, len(specs))}
	for i := range specs {
		t.specs[specs[i].SpecID] = &specs[i]
	}
	return t
}

// Get returns an enemy spec by ID, or nil if not found.
func (t *EnemyTable) Get(specID int32) *EnemySpec {
	return t.specs[specID]
}

// Count returns the number of loaded specs.
func (t *EnemyTable) Count() int {
	return len(t.specs)
}
