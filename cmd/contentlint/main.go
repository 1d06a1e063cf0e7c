// contentlint validates the YAML content tables without starting a server:
// every encounter definition is loaded and run through build-time
// validation, and boss skill references are checked against the registry.
// Exit code 1 on any finding, for CI.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hearthfall/server/internal/data"
)

func main() {
	dir := flag.String("data", "data/yaml", "content directory")
	flag.Parse()

	if err := lint(*dir); err != nil {
		fmt.Fprintf(os.Stderr, "contentlint: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("content ok")
}

func lint(dir string) error {
	enemies, err := data.LoadEnemyTable(filepath.Join(dir, "enemy_list.yaml"))
	if err != nil {
		return err
	}
	encounters, err := data.LoadEncounterTable(filepath.Join(dir, "encounter_list.yaml"))
	if err != nil {
		return err
	}
	skills, err := data.LoadSkillTable(filepath.Join(dir, "skill_list.yaml"))
	if err != nil {
		return err
	}

	for _, def := range encounters.All() {
		if err := def.Validate(enemies); err != nil {
			return err
		}
		if def.Boss == nil {
			continue
		}
		if def.Boss.SignatureSkillID != 0 && skills.Get(def.Boss.SignatureSkillID) == nil {
			return fmt.Errorf("encounter %s: boss signature skill %d not in registry",
				def.ID, def.Boss.SignatureSkillID)
		}
		for pi, phase := range def.Boss.Phases {
			if phase.Trigger.Kind == data.TriggerSkillInterrupted &&
				skills.GetByName(phase.Trigger.SkillName) == nil {
				return fmt.Errorf("encounter %s: phase %d interrupt trigger names unknown skill %q",
					def.ID, pi, phase.Trigger.SkillName)
			}
		}
	}

	fmt.Printf("checked %d encounters, %d enemy specs, %d skills\n",
		encounters.Count(), enemies.Count(), skills.Count())
	return nil
}
