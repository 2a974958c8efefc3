package game

import (
	"errors"

	"github.com/mcdev12/showrunner/go/internal/playbook"
)

var (
	ErrUnknownRound = errors.New("round not in playbook")
	ErrLastPhase    = errors.New("already on last phase")
)

// Round progression is an explicit operator decision. A timer reaching zero
// is display-only and never advances the machine on its own.

// JumpToRound moves to any configured round, forward or backward, landing on
// its first phase with the timer rearmed to that phase's duration. It is
// always enabled so the operator can recover from any mistake.
func JumpToRound(s GameState, pb playbook.Playbook, r int) (GameState, error) {
	if _, ok := pb.Round(r); !ok {
		return s, ErrUnknownRound
	}
	s.Round = r
	s.PhaseIdx = 0
	return ResetToDuration(s, pb.PhaseDuration(r, 0)), nil
}

// AdvancePhase steps to the next phase of the current round, rearming the
// timer to the new phase's duration. Advancing past the last configured phase
// is rejected and the state is left untouched.
func AdvancePhase(s GameState, pb playbook.Playbook) (GameState, error) {
	rd, ok := pb.Round(s.Round)
	if !ok {
		return s, ErrUnknownRound
	}
	if s.PhaseIdx >= len(rd.Phases)-1 {
		return s, ErrLastPhase
	}
	s.PhaseIdx++
	return ResetToDuration(s, pb.PhaseDuration(s.Round, s.PhaseIdx)), nil
}
