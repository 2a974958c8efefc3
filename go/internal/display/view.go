package display

import "fmt"

// Status reports what the display should render when it has nothing better.
type Status string

const (
	// StatusAwaiting means no document exists yet; only a controller may
	// materialize one, so the display shows a well-defined waiting screen.
	StatusAwaiting Status = "awaiting"
	StatusLive     Status = "live"
	// StatusDisconnected means the transport is down; the last known
	// document keeps rendering behind a clear indicator.
	StatusDisconnected Status = "disconnected"
)

// View is the fully derived render model for one frame. It is recomputed
// from (document, local clock) on every revision and every redraw tick, so
// two displays with the same document and clock produce the same frame.
type View struct {
	Status     Status     `json:"status"`
	Round      int        `json:"round"`
	PhaseIdx   int        `json:"phaseIdx"`
	Title      string     `json:"title"`
	Rules      string     `json:"rules,omitempty"`
	Background string     `json:"background,omitempty"`
	Text       string     `json:"text,omitempty"`
	PhaseLabel string     `json:"phaseLabel"`
	PhaseCode  string     `json:"phaseCode"`
	Seconds    int        `json:"seconds"`
	Clock      string     `json:"clock"`
	Frozen     bool       `json:"frozen"`
	Overlay    bool       `json:"overlay"`
	Alarm      bool       `json:"alarm"`
	Teams      []TeamView `json:"teams"`
}

// TeamView is one team tile.
type TeamView struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Power      int    `json:"power"`
	Score      int    `json:"score"`
	Danger     bool   `json:"danger"`
	Overdrive  bool   `json:"overdrive"`
	Eliminated bool   `json:"eliminated"`
	Feedback   string `json:"feedback,omitempty"`
}

// FormatClock renders seconds as m:ss.
func FormatClock(secs int) string {
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
