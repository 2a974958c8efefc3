package game

import "errors"

var ErrUnknownTeam = errors.New("unknown team")

// ApplyDelta applies a bounded power delta and an unbounded score delta to
// one team and reports the effect kind the mutation should broadcast. The
// kind is derived from the signs of the requested deltas, not the post-clamp
// movement: knocking a team already at zero power still reads as damage.
// An unknown team id leaves the roster untouched.
func ApplyDelta(teams []Team, teamID string, powerDelta, scoreDelta int) ([]Team, EffectKind, error) {
	idx := -1
	for i := range teams {
		if teams[i].ID == teamID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return teams, "", ErrUnknownTeam
	}

	out := CloneTeams(teams)
	out[idx].Power = clampPower(out[idx].Power + powerDelta)
	out[idx].Score += scoreDelta

	kind := EffectSuccess
	if powerDelta < 0 || scoreDelta < 0 {
		kind = EffectDamage
	}
	return out, kind, nil
}
