package game

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// EffectKind classifies the one-shot feedback a mutation should trigger on
// every display.
type EffectKind string

const (
	EffectDamage  EffectKind = "damage"
	EffectSuccess EffectKind = "success"
	EffectFreeze  EffectKind = "freeze"
)

// SystemTeamID targets an effect at the whole system instead of one team,
// e.g. the global freeze overlay.
const SystemTeamID = "sys"

// Effect is the single-slot transient notification riding on the document.
// Only the most recent effect is representable; displays that react slower
// than effects arrive will coalesce them, which is accepted.
type Effect struct {
	ID     string     `json:"id"`
	TeamID string     `json:"teamId"`
	Kind   EffectKind `json:"type"`
}

// NewEffect mints an effect whose ID differs from every previously minted
// one, so repeated identical mutations are each individually observable. The
// millisecond timestamp keeps IDs ordered; the random suffix separates two
// effects minted within the same millisecond.
func NewEffect(kind EffectKind, teamID string, now time.Time) Effect {
	return Effect{
		ID:     strconv.FormatInt(now.UnixMilli(), 10) + "-" + uuid.NewString()[:8],
		TeamID: teamID,
		Kind:   kind,
	}
}
