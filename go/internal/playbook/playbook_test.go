package playbook

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultPlaybookValidates(t *testing.T) {
	pb := Default()
	if _, ok := pb.Round(0); !ok {
		t.Fatal("default playbook missing the lobby")
	}
	if pb.FinalRound() != 7 {
		t.Fatalf("final round = %d, want 7", pb.FinalRound())
	}
	// Round 3 carries the minefield presets the control surface relies on.
	rd, ok := pb.Round(3)
	if !ok || rd.Title != "The Minefield" {
		t.Fatalf("round 3 = %+v", rd)
	}
	if rd.Actions[0].Power != -10 || rd.Actions[0].Score != -5 {
		t.Fatalf("minefield action = %+v", rd.Actions[0])
	}
}

func TestValidationErrors(t *testing.T) {
	cases := []struct {
		name   string
		rounds []Round
	}{
		{
			name:   "missing lobby",
			rounds: []Round{{ID: 1, Title: "A", Time: 60, Phases: []string{"x"}}},
		},
		{
			name: "no phases",
			rounds: []Round{
				{ID: 0, Title: "Lobby", Phases: []string{"Standby"}},
				{ID: 1, Title: "A", Time: 60, Phases: nil},
			},
		},
		{
			name: "phaseTimes length mismatch",
			rounds: []Round{
				{ID: 0, Title: "Lobby", Phases: []string{"Standby"}},
				{ID: 1, Title: "A", Time: 60, Phases: []string{"x", "y"}, PhaseTimes: []int{30}},
			},
		},
		{
			name: "zero-length phase duration",
			rounds: []Round{
				{ID: 0, Title: "Lobby", Phases: []string{"Standby"}},
				{ID: 1, Title: "A", Time: 60, Phases: []string{"x", "y"}, PhaseTimes: []int{30, 0}},
			},
		},
		{
			name: "flat time zero",
			rounds: []Round{
				{ID: 0, Title: "Lobby", Phases: []string{"Standby"}},
				{ID: 1, Title: "A", Time: 0, Phases: []string{"x"}},
			},
		},
		{
			name: "duplicate round id",
			rounds: []Round{
				{ID: 0, Title: "Lobby", Phases: []string{"Standby"}},
				{ID: 1, Title: "A", Time: 60, Phases: []string{"x"}},
				{ID: 1, Title: "B", Time: 60, Phases: []string{"x"}},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.rounds); err == nil {
				t.Fatal("expected a validation error")
			}
		})
	}
}

func TestMissingLobbyError(t *testing.T) {
	_, err := New([]Round{{ID: 1, Title: "A", Time: 60, Phases: []string{"x"}}})
	if !errors.Is(err, ErrNoLobby) {
		t.Fatalf("err = %v, want ErrNoLobby", err)
	}
}

func TestPhaseDuration(t *testing.T) {
	pb, err := New([]Round{
		{ID: 0, Title: "Lobby", Phases: []string{"Standby"}},
		{ID: 1, Title: "Flat", Time: 180, Phases: []string{"x", "y"}},
		{ID: 2, Title: "PerPhase", Time: 180, Phases: []string{"x", "y"}, PhaseTimes: []int{120, 60}},
	})
	if err != nil {
		t.Fatalf("playbook: %v", err)
	}

	cases := []struct {
		round, phase, want int
	}{
		{1, 0, 180},
		{1, 1, 180},
		{2, 0, 120},
		{2, 1, 60},
		{9, 0, 0},
		{2, 5, 0},
	}
	for _, tc := range cases {
		if got := pb.PhaseDuration(tc.round, tc.phase); got != tc.want {
			t.Fatalf("PhaseDuration(%d,%d) = %d, want %d", tc.round, tc.phase, got, tc.want)
		}
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "playbook.yaml")
	content := `rounds:
  - id: 0
    title: Lobby
    phases: [Standby]
  - id: 1
    title: Opening Run
    rules: Keep quiet.
    time: 90
    phases: [Execution]
    actions:
      - label: Slip
        power: -5
        score: -2
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	pb, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	rd, ok := pb.Round(1)
	if !ok || rd.Title != "Opening Run" || rd.Actions[0].Power != -5 {
		t.Fatalf("round 1 = %+v", rd)
	}
	if pb.PhaseDuration(1, 0) != 90 {
		t.Fatalf("duration = %d, want 90", pb.PhaseDuration(1, 0))
	}
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	content := `rounds:
  - id: 0
    title: Lobby
    phases: [Standby]
  - id: 1
    title: Broken
    time: 60
    phases: [a, b, c]
    phaseTimes: [10, 20]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected load to fail on phaseTimes mismatch")
	}
}
