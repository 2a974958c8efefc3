package control

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/showrunner/go/internal/game"
	"github.com/mcdev12/showrunner/go/internal/playbook"
	"github.com/mcdev12/showrunner/go/internal/store"
)

var (
	ErrNotInitialized = errors.New("no game document yet; claim the controller role first")
	ErrUnknownAction  = errors.New("action not in current round")
)

// Controller is the single writer role. Every command is computed from the
// most recently received document, never from a privately held copy that
// could have drifted, and lands in the store as either a full write or a
// field merge. The controller's own subscription is how it sees its writes,
// same as any display.
type Controller struct {
	store store.Store
	pb    playbook.Playbook
	clock clockwork.Clock

	mu     sync.RWMutex
	doc    game.GameState
	hasDoc bool

	unsubscribe func()
}

func New(st store.Store, pb playbook.Playbook, clock clockwork.Clock) *Controller {
	return &Controller{store: st, pb: pb, clock: clock}
}

// Start attaches the controller's subscription.
func (c *Controller) Start(ctx context.Context) error {
	unsub, err := c.store.Subscribe(ctx, func(doc game.GameState) {
		c.mu.Lock()
		c.doc = doc
		c.hasDoc = true
		c.mu.Unlock()
	})
	if err != nil {
		return fmt.Errorf("subscribe controller: %w", err)
	}
	c.unsubscribe = unsub
	return nil
}

// Stop tears the subscription down.
func (c *Controller) Stop() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
}

// ClaimRole materializes the lobby document on an empty store. Claiming when
// a document already exists is a no-op so a reconnecting operator never
// wipes a live session.
func (c *Controller) ClaimRole(ctx context.Context) error {
	c.mu.RLock()
	claimed := c.hasDoc
	c.mu.RUnlock()
	if claimed {
		return nil
	}
	log.Info().Msg("claiming controller role, writing lobby document")
	return c.store.Write(ctx, game.InitialState(game.DefaultTeams()))
}

// ResetGame overwrites the whole document back to the lobby state. The
// document is never deleted during a session.
func (c *Controller) ResetGame(ctx context.Context) error {
	log.Info().Msg("resetting game to lobby state")
	return c.store.Write(ctx, game.InitialState(game.DefaultTeams()))
}

// JumpToRound moves to any configured round, the operator's escape hatch.
func (c *Controller) JumpToRound(ctx context.Context, round int) error {
	doc, err := c.snapshot()
	if err != nil {
		return err
	}
	next, err := game.JumpToRound(doc, c.pb, round)
	if err != nil {
		return err
	}
	log.Info().Int("round", round).Msg("jumping to round")
	return c.store.Update(ctx, store.Fields{
		"round":      next.Round,
		"phaseIdx":   next.PhaseIdx,
		"isFrozen":   next.IsFrozen,
		"pausedTime": next.PausedTime,
		"endTime":    next.EndTime,
	})
}

// AdvancePhase steps to the next phase of the current round. On the last
// phase the command is rejected before any update is sent.
func (c *Controller) AdvancePhase(ctx context.Context) error {
	doc, err := c.snapshot()
	if err != nil {
		return err
	}
	next, err := game.AdvancePhase(doc, c.pb)
	if err != nil {
		return err
	}
	log.Info().Int("round", next.Round).Int("phase", next.PhaseIdx).Msg("advancing phase")
	return c.store.Update(ctx, store.Fields{
		"phaseIdx":   next.PhaseIdx,
		"isFrozen":   next.IsFrozen,
		"pausedTime": next.PausedTime,
		"endTime":    next.EndTime,
	})
}

// StartResume unfreezes the countdown from its stored remainder. Already
// running is a no-op.
func (c *Controller) StartResume(ctx context.Context) error {
	doc, err := c.snapshot()
	if err != nil {
		return err
	}
	if !doc.IsFrozen {
		return nil
	}
	now := c.clock.Now()
	next := game.Resume(doc, now)
	effect := game.NewEffect(game.EffectSuccess, game.SystemTeamID, now)
	log.Info().Int("seconds", doc.PausedTime).Msg("resuming timer")
	return c.store.Update(ctx, store.Fields{
		"isFrozen":   next.IsFrozen,
		"endTime":    next.EndTime,
		"lastEffect": effect,
	})
}

// Freeze captures the remaining seconds and halts the countdown. Already
// frozen is a no-op.
func (c *Controller) Freeze(ctx context.Context) error {
	doc, err := c.snapshot()
	if err != nil {
		return err
	}
	if doc.IsFrozen {
		return nil
	}
	now := c.clock.Now()
	next := game.Freeze(doc, now)
	effect := game.NewEffect(game.EffectFreeze, game.SystemTeamID, now)
	log.Info().Int("seconds", next.PausedTime).Msg("freezing timer")
	return c.store.Update(ctx, store.Fields{
		"isFrozen":   next.IsFrozen,
		"pausedTime": next.PausedTime,
		"lastEffect": effect,
	})
}

// ResetTimer rearms the current phase's full duration, frozen.
func (c *Controller) ResetTimer(ctx context.Context) error {
	doc, err := c.snapshot()
	if err != nil {
		return err
	}
	next := game.ResetToDuration(doc, c.pb.PhaseDuration(doc.Round, doc.PhaseIdx))
	log.Info().Int("seconds", next.PausedTime).Msg("resetting timer")
	return c.store.Update(ctx, store.Fields{
		"isFrozen":   next.IsFrozen,
		"pausedTime": next.PausedTime,
		"endTime":    next.EndTime,
	})
}

// ApplyDelta mutates one team's resources and broadcasts the derived effect
// in the same document revision, so displays receive data and feedback
// atomically.
func (c *Controller) ApplyDelta(ctx context.Context, teamID string, powerDelta, scoreDelta int) error {
	doc, err := c.snapshot()
	if err != nil {
		return err
	}
	teams, kind, err := game.ApplyDelta(doc.Teams, teamID, powerDelta, scoreDelta)
	if err != nil {
		return err
	}
	effect := game.NewEffect(kind, teamID, c.clock.Now())
	log.Info().
		Str("team_id", teamID).
		Int("power_delta", powerDelta).
		Int("score_delta", scoreDelta).
		Str("effect", string(kind)).
		Msg("applying team delta")
	return c.store.Update(ctx, store.Fields{
		"teams":      teams,
		"lastEffect": effect,
	})
}

// ApplyAction applies one of the current round's named presets.
func (c *Controller) ApplyAction(ctx context.Context, teamID string, actionIdx int) error {
	doc, err := c.snapshot()
	if err != nil {
		return err
	}
	rd, ok := c.pb.Round(doc.Round)
	if !ok {
		return game.ErrUnknownRound
	}
	if actionIdx < 0 || actionIdx >= len(rd.Actions) {
		return ErrUnknownAction
	}
	act := rd.Actions[actionIdx]
	return c.ApplyDelta(ctx, teamID, act.Power, act.Score)
}

// State returns the latest received document.
func (c *Controller) State() (game.GameState, error) {
	return c.snapshot()
}

func (c *Controller) snapshot() (game.GameState, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.hasDoc {
		return game.GameState{}, ErrNotInitialized
	}
	return c.doc, nil
}
