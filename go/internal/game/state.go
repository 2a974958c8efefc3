package game

// GameState is the single shared document synchronized to every subscriber.
// It is the sole source of truth: controllers and displays both derive
// everything they show from the latest received copy, never from a cache.
type GameState struct {
	Teams      []Team  `json:"teams"`
	Round      int     `json:"round"`
	PhaseIdx   int     `json:"phaseIdx"`
	IsFrozen   bool    `json:"isFrozen"`
	EndTime    int64   `json:"endTime"`    // unix millis; meaningful only while running
	PausedTime int     `json:"pausedTime"` // seconds remaining; authoritative while frozen
	LastEffect *Effect `json:"lastEffect"`
}

// Team tracks the two per-team resources. Power is clamped to
// [PowerMin, PowerMax] on every mutation; score is unbounded and may go
// negative.
type Team struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Power int    `json:"power"`
	Score int    `json:"score"`
}

const (
	PowerMin = 0
	PowerMax = 120

	// StartingPower is the power every team begins the session with.
	StartingPower = 50
)

// DefaultTeams returns the standard four-team roster.
func DefaultTeams() []Team {
	return []Team{
		{ID: "t1", Name: "Team Alpha", Power: StartingPower},
		{ID: "t2", Name: "Team Bravo", Power: StartingPower},
		{ID: "t3", Name: "Team Charlie", Power: StartingPower},
		{ID: "t4", Name: "Team Delta", Power: StartingPower},
	}
}

// InitialState returns the lobby document created when the controller role is
// first claimed on an empty store.
func InitialState(teams []Team) GameState {
	return GameState{
		Teams:      teams,
		Round:      0,
		PhaseIdx:   0,
		IsFrozen:   true,
		EndTime:    0,
		PausedTime: 0,
		LastEffect: nil,
	}
}

// CloneTeams returns a copy so callers never mutate a shared slice in place.
func CloneTeams(teams []Team) []Team {
	out := make([]Team, len(teams))
	copy(out, teams)
	return out
}

func clampPower(p int) int {
	if p > PowerMax {
		return PowerMax
	}
	if p < PowerMin {
		return PowerMin
	}
	return p
}
