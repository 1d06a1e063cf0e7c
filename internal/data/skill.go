package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SkillSpec is one entry in the immutable skill registry. Bosses reference
// skills by ID (signature skill taught on defeat) and by name
// (skill_interrupted phase triggers); the registry itself is read-only,
// shared content.
type SkillSpec struct {
	SkillID int32  `yaml:"skill_id"`
	Name    string `yaml:"name"`
	School  string `yaml:"school"`

	// Interruptible marks casts the combat resolver may report as
	// interrupted, feeding skill_interrupted triggers.
	Interruptible bool `yaml:"interruptible"`
}

type skillListFile struct {
	Skills []SkillSpec `yaml:"skills"`
}

// SkillTable holds the skill registry indexed by ID and name.
type SkillTable struct {
	byID   map[int32]*SkillSpec
	byName map[string]*SkillSpec
}

// LoadSkillTable loads the skill registry from a YAML file.
func LoadSkillTable(path string) (*SkillTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read skill_list: %w", err)
	}
	var f skillListFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse skill_list: %w", err)
	}
	t := &SkillTable{
		byID:   make(map[int32]*SkillSpec, len(f.Skills)),
		byName: make(map[string]*SkillSpec, len(f.Skills)),
	}
	for i := range f.Skills {
		sk := &f.Skills[i]
		t.byID[sk.SkillID] = sk
		t.byName[sk.Name] = sk
	}
	return t, nil
}

// Get returns a skill by ID, or nil if not found.
func (t *SkillTable) Get(skillID int32) *SkillSpec {
	return t.byID[skillID]
}

// GetByName returns a skill by name, or nil if not found.
func (t *SkillTable) GetByName(name string) *SkillSpec {
	return t.byName[name]
}

// Count returns the number of loaded skills.
func (t *SkillTable) Count() int {
	return len(t.byID)
}
