package playbook

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type file struct {
	Rounds []Round `yaml:"rounds"`
}

// Load reads and validates a playbook YAML file.
func Load(path string) (Playbook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Playbook{}, fmt.Errorf("read playbook file: %w", err)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Playbook{}, fmt.Errorf("parse playbook file: %w", err)
	}

	pb, err := New(f.Rounds)
	if err != nil {
		return Playbook{}, fmt.Errorf("invalid playbook %s: %w", path, err)
	}
	return pb, nil
}

// Default returns the built-in eight-round playbook used when no file is
// supplied.
func Default() Playbook {
	pb, err := New([]Round{
		{
			ID: 0, Title: "Lobby / Setup",
			Background: "from-gray-900 to-black", Text: "text-gray-400",
			Time: 0, Phases: []string{"Standby"},
		},
		{
			ID: 1, Title: "Mission Silent",
			Background: "from-blue-950 to-slate-900", Text: "text-blue-400",
			Time: 180, Phases: []string{"Execution"},
			Rules: "Non-verbal coordination.",
			Actions: []Action{
				{Label: "Talked", Power: 0, Score: -3},
				{Label: "Completed", Power: 10, Score: 10},
			},
		},
		{
			ID: 2, Title: "Problem Storm",
			Background: "from-cyan-950 to-slate-900", Text: "text-cyan-300",
			Time:   180,
			Phases: []string{"Discussion (2m)", "Presentation (1m)"}, PhaseTimes: []int{120, 60},
			Rules: "Survive a scenario.",
			Actions: []Action{
				{Label: "Interrupt", Power: 0, Score: -5},
				{Label: "Collab Build", Power: 10, Score: 10},
			},
		},
		{
			ID: 3, Title: "The Minefield",
			Background: "from-orange-950 to-red-950", Text: "text-orange-400",
			Time: 240, Phases: []string{"Execution"},
			Rules: "Blindfolded guidance.",
			Actions: []Action{
				{Label: "Hit Mine", Power: -10, Score: -5},
				{Label: "Crossed", Power: 20, Score: 20},
			},
		},
		{
			ID: 4, Title: "The Blind Architect",
			Background: "from-green-950 to-emerald-950", Text: "text-green-400",
			Time:   240,
			Phases: []string{"Architect Build (1m)", "Builder Replication (3m)"}, PhaseTimes: []int{60, 180},
			Rules: "Verbal building.",
			Actions: []Action{
				{Label: "Builder Spoke", Power: 0, Score: -5},
				{Label: "Perfect Match", Power: 20, Score: 30},
			},
		},
		{
			ID: 5, Title: "The Pressure Hold",
			Background: "from-red-950 to-rose-950", Text: "text-red-500",
			Time: 360, Phases: []string{"Endurance"},
			Rules: "Puzzle + Physical Pain.",
			Actions: []Action{
				{Label: "Drop Pose", Power: -20, Score: 0},
				{Label: "Solved", Power: 30, Score: 30},
			},
		},
		{
			ID: 6, Title: "The Saboteur",
			Background: "from-purple-950 to-indigo-950", Text: "text-purple-400",
			Time:   150,
			Phases: []string{"Task (2m)", "Accusation (30s)"}, PhaseTimes: []int{120, 30},
			Rules: "Hidden traitor.",
			Actions: []Action{
				{Label: "Wrong Accuse", Power: -10, Score: -10},
				{Label: "Found", Power: 20, Score: 20},
			},
		},
		{
			ID: 7, Title: "FINAL SHOWDOWN",
			Background: "from-yellow-950 to-black", Text: "text-yellow-400",
			Time: 420, Phases: []string{"Sudden Death"},
			Rules: "Top 2 Teams Only.",
			Actions: []Action{
				{Label: "Massive Hit", Power: -20, Score: -10},
				{Label: "EPIC WIN", Power: 50, Score: 100},
			},
		},
	})
	if err != nil {
		panic(err) // the built-in table must always validate
	}
	return pb
}
