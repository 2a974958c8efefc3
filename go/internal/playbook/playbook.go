package playbook

import (
	"errors"
	"fmt"
)

// The playbook is the immutable, externally supplied round table. It is
// loaded once at startup, validated, and injected into everything that needs
// round metadata; nothing in the live path mutates it.

// Action is a named (power, score) preset offered to the operator during a
// round.
type Action struct {
	Label string `yaml:"label" json:"label"`
	Power int    `yaml:"power" json:"power"`
	Score int    `yaml:"score" json:"score"`
}

// Round describes one scenario of the event. PhaseTimes, when present, runs
// parallel to Phases; otherwise the flat Time applies to every phase.
type Round struct {
	ID         int      `yaml:"id" json:"id"`
	Title      string   `yaml:"title" json:"title"`
	Rules      string   `yaml:"rules,omitempty" json:"rules,omitempty"`
	Background string   `yaml:"background,omitempty" json:"background,omitempty"`
	Text       string   `yaml:"text,omitempty" json:"text,omitempty"`
	Time       int      `yaml:"time" json:"time"`
	Phases     []string `yaml:"phases" json:"phases"`
	PhaseTimes []int    `yaml:"phaseTimes,omitempty" json:"phaseTimes,omitempty"`
	Actions    []Action `yaml:"actions,omitempty" json:"actions,omitempty"`
}

// Playbook is the validated round table, indexed by round id.
type Playbook struct {
	rounds []Round
	byID   map[int]Round
}

var ErrNoLobby = errors.New("playbook has no round 0 lobby")

// New builds and validates a playbook from a round list.
func New(rounds []Round) (Playbook, error) {
	pb := Playbook{rounds: rounds, byID: make(map[int]Round, len(rounds))}
	for _, rd := range rounds {
		if _, dup := pb.byID[rd.ID]; dup {
			return Playbook{}, fmt.Errorf("duplicate round id %d", rd.ID)
		}
		pb.byID[rd.ID] = rd
	}
	if err := pb.validate(); err != nil {
		return Playbook{}, err
	}
	return pb, nil
}

func (pb Playbook) validate() error {
	if _, ok := pb.byID[0]; !ok {
		return ErrNoLobby
	}
	for _, rd := range pb.rounds {
		if len(rd.Phases) == 0 {
			return fmt.Errorf("round %d (%q) has no phases", rd.ID, rd.Title)
		}
		if rd.PhaseTimes != nil && len(rd.PhaseTimes) != len(rd.Phases) {
			return fmt.Errorf("round %d (%q): %d phaseTimes for %d phases",
				rd.ID, rd.Title, len(rd.PhaseTimes), len(rd.Phases))
		}
		if rd.ID == 0 {
			continue // the lobby is allowed a zero-length standby timer
		}
		for i := range rd.Phases {
			if pb.PhaseDuration(rd.ID, i) <= 0 {
				return fmt.Errorf("round %d (%q) phase %d has non-positive duration", rd.ID, rd.Title, i)
			}
		}
	}
	return nil
}

// Round looks up a round by id.
func (pb Playbook) Round(id int) (Round, bool) {
	rd, ok := pb.byID[id]
	return rd, ok
}

// Rounds returns the configured rounds in declaration order.
func (pb Playbook) Rounds() []Round {
	return pb.rounds
}

// PhaseDuration returns the configured duration in seconds for one phase of
// one round. Unknown rounds or out-of-range phases report zero; validation
// guarantees the live path never sees that for playable rounds.
func (pb Playbook) PhaseDuration(roundID, phaseIdx int) int {
	rd, ok := pb.byID[roundID]
	if !ok || phaseIdx < 0 || phaseIdx >= len(rd.Phases) {
		return 0
	}
	if rd.PhaseTimes != nil {
		return rd.PhaseTimes[phaseIdx]
	}
	return rd.Time
}

// FinalRound returns the highest configured round id. It is not structurally
// terminal; it is simply the last meaningful jump target.
func (pb Playbook) FinalRound() int {
	final := 0
	for id := range pb.byID {
		if id > final {
			final = id
		}
	}
	return final
}
