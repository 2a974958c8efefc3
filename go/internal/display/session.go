package display

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/mcdev12/showrunner/go/internal/game"
	"github.com/mcdev12/showrunner/go/internal/playbook"
	"github.com/mcdev12/showrunner/go/internal/store"
)

const (
	// FeedbackDuration is how long a team tile stays highlighted after an
	// effect, independent of further document traffic.
	FeedbackDuration = 600 * time.Millisecond

	// RedrawInterval is the local cadence at which consumers should re-render
	// so the countdown keeps moving between document revisions.
	RedrawInterval = 200 * time.Millisecond

	// AlarmSeconds is the running-countdown threshold for the low-time alarm.
	AlarmSeconds = 10

	// DangerPower and OverdrivePower bound the team tile warning states.
	DangerPower    = 20
	OverdrivePower = 100

	// FinalContenders is how many teams survive into the final round.
	FinalContenders = 2
)

type feedbackEntry struct {
	kind game.EffectKind
	seq  int
}

// Session is one viewer's subscription state. Each session owns its own
// last-seen effect id, so replaying the same document snapshot to a session
// never re-triggers feedback, while a second session reacting for the first
// time still does.
type Session struct {
	store store.Store
	pb    playbook.Playbook
	clock clockwork.Clock

	mu       sync.Mutex
	doc      game.GameState
	hasDoc   bool
	lastSeen string
	feedback map[string]feedbackEntry
	timers   map[string]clockwork.Timer
	seq      int

	changed     chan struct{}
	unsubscribe func()
}

func NewSession(st store.Store, pb playbook.Playbook, clock clockwork.Clock) *Session {
	return &Session{
		store:    st,
		pb:       pb,
		clock:    clock,
		feedback: make(map[string]feedbackEntry),
		timers:   make(map[string]clockwork.Timer),
		changed:  make(chan struct{}, 1),
	}
}

// Start attaches the session to the document feed.
func (s *Session) Start(ctx context.Context) error {
	unsub, err := s.store.Subscribe(ctx, s.handleDoc)
	if err != nil {
		return fmt.Errorf("subscribe display session: %w", err)
	}
	s.unsubscribe = unsub
	return nil
}

// Stop tears the session down, cancelling any pending feedback timers so
// nothing fires after the session is gone.
func (s *Session) Stop() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	s.mu.Lock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	s.mu.Unlock()
}

// Changed signals at most once per pending revision; consumers combine it
// with their own RedrawInterval ticker.
func (s *Session) Changed() <-chan struct{} {
	return s.changed
}

func (s *Session) handleDoc(doc game.GameState) {
	s.mu.Lock()
	s.doc = doc
	s.hasDoc = true
	if e := doc.LastEffect; e != nil && e.ID != s.lastSeen {
		s.lastSeen = e.ID
		s.seq++
		seq := s.seq
		teamID := e.TeamID
		s.feedback[teamID] = feedbackEntry{kind: e.Kind, seq: seq}
		if t, ok := s.timers[teamID]; ok {
			t.Stop()
		}
		s.timers[teamID] = s.clock.AfterFunc(FeedbackDuration, func() {
			s.clearFeedback(teamID, seq)
		})
	}
	s.mu.Unlock()
	s.notify()
}

// clearFeedback removes a highlight only if a newer effect has not replaced
// it in the meantime.
func (s *Session) clearFeedback(teamID string, seq int) {
	s.mu.Lock()
	if entry, ok := s.feedback[teamID]; ok && entry.seq == seq {
		delete(s.feedback, teamID)
		delete(s.timers, teamID)
	}
	s.mu.Unlock()
	s.notify()
}

func (s *Session) notify() {
	select {
	case s.changed <- struct{}{}:
	default:
	}
}

// View derives the current frame from the latest document and the local
// clock.
func (s *Session) View() View {
	s.mu.Lock()
	doc := s.doc
	hasDoc := s.hasDoc
	feedback := make(map[string]game.EffectKind, len(s.feedback))
	for id, entry := range s.feedback {
		feedback[id] = entry.kind
	}
	s.mu.Unlock()

	if !hasDoc {
		return View{Status: StatusAwaiting}
	}

	status := StatusLive
	if !s.store.Connected() {
		status = StatusDisconnected
	}

	rd, ok := s.pb.Round(doc.Round)
	if !ok {
		// Render the lobby scenario rather than fail on a document written
		// against a different playbook.
		rd, _ = s.pb.Round(0)
	}

	now := s.clock.Now()
	secs := game.DisplayedSeconds(doc, now)

	phaseLabel := ""
	if doc.PhaseIdx >= 0 && doc.PhaseIdx < len(rd.Phases) {
		phaseLabel = rd.Phases[doc.PhaseIdx]
	}

	v := View{
		Status:     status,
		Round:      doc.Round,
		PhaseIdx:   doc.PhaseIdx,
		Title:      rd.Title,
		Rules:      rd.Rules,
		Background: rd.Background,
		Text:       rd.Text,
		PhaseLabel: phaseLabel,
		PhaseCode:  fmt.Sprintf("Phase %d.%d", doc.Round, doc.PhaseIdx+1),
		Seconds:    secs,
		Clock:      FormatClock(secs),
		Frozen:     doc.IsFrozen,
		Overlay:    doc.IsFrozen && doc.Round != 0,
		Alarm:      !doc.IsFrozen && secs > 0 && secs <= AlarmSeconds,
		Teams:      s.teamViews(doc, feedback),
	}
	return v
}

func (s *Session) teamViews(doc game.GameState, feedback map[string]game.EffectKind) []TeamView {
	teams := game.CloneTeams(doc.Teams)
	finale := doc.Round == s.pb.FinalRound() && doc.Round != 0
	if finale {
		sort.SliceStable(teams, func(i, j int) bool { return teams[i].Score > teams[j].Score })
	}

	views := make([]TeamView, len(teams))
	for i, t := range teams {
		tv := TeamView{
			ID:         t.ID,
			Name:       t.Name,
			Power:      t.Power,
			Score:      t.Score,
			Danger:     t.Power < DangerPower,
			Overdrive:  t.Power >= OverdrivePower,
			Eliminated: finale && i >= FinalContenders,
		}
		if kind, ok := feedback[t.ID]; ok {
			tv.Feedback = string(kind)
		}
		views[i] = tv
	}
	return views
}
