package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mcdev12/showrunner/go/internal/game"
)

// Store is the persistence/transport boundary: one shared document, written
// by a single controller, fanned out to every subscriber. Implementations
// guarantee in-order delivery per subscriber and last-write-wins convergence;
// they give no cross-subscriber ordering beyond that.
type Store interface {
	// Write creates or fully overwrites the document.
	Write(ctx context.Context, doc game.GameState) error

	// Update merges the named document fields into the existing document,
	// leaving all others untouched. Keys are the document's JSON field names.
	Update(ctx context.Context, fields Fields) error

	// Subscribe invokes fn once immediately with the current document when
	// one exists, and again on every subsequent change. The returned function
	// tears the subscription down. Callbacks for one subscriber arrive in
	// write order and must not block.
	Subscribe(ctx context.Context, fn func(game.GameState)) (func(), error)

	// Connected reports whether the transport behind the store is currently
	// reachable. Displays use this for their disconnected indicator.
	Connected() bool
}

// Fields is a partial update keyed by JSON field name.
type Fields map[string]any

// ErrNoDocument is returned by Update when no document has been written yet;
// only a controller claiming its role may materialize the initial document.
var ErrNoDocument = errors.New("no document exists")

// mergeFields overlays the named fields onto doc through the JSON encoding,
// mirroring the document store's merge semantics exactly.
func mergeFields(doc game.GameState, fields Fields) (game.GameState, error) {
	base, err := json.Marshal(doc)
	if err != nil {
		return doc, fmt.Errorf("marshal document: %w", err)
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(base, &m); err != nil {
		return doc, fmt.Errorf("decode document: %w", err)
	}
	for k, v := range fields {
		b, err := json.Marshal(v)
		if err != nil {
			return doc, fmt.Errorf("marshal field %q: %w", k, err)
		}
		m[k] = b
	}
	merged, err := json.Marshal(m)
	if err != nil {
		return doc, fmt.Errorf("marshal merged document: %w", err)
	}
	var out game.GameState
	if err := json.Unmarshal(merged, &out); err != nil {
		return doc, fmt.Errorf("decode merged document: %w", err)
	}
	return out, nil
}
