package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/showrunner/go/internal/game"
	"github.com/mcdev12/showrunner/go/internal/store"
)

// Recorder appends one standings row per document revision for post-event
// review. The live system never reads these rows back; losing one under
// pressure is preferable to stalling the document feed, so the subscription
// callback only queues and a single worker does the inserts.
type Recorder struct {
	db     *sql.DB
	queue  chan game.GameState
	wg     sync.WaitGroup
	cancel func()
}

const createTable = `
CREATE TABLE IF NOT EXISTS standings_log (
    id          BIGSERIAL PRIMARY KEY,
    recorded_at TIMESTAMPTZ NOT NULL,
    round       INT NOT NULL,
    phase_idx   INT NOT NULL,
    is_frozen   BOOLEAN NOT NULL,
    teams       JSONB NOT NULL
)`

const insertRow = `
INSERT INTO standings_log (recorded_at, round, phase_idx, is_frozen, teams)
VALUES ($1, $2, $3, $4, $5)`

// NewRecorder prepares the recorder and its table.
func NewRecorder(ctx context.Context, db *sql.DB) (*Recorder, error) {
	if _, err := db.ExecContext(ctx, createTable); err != nil {
		return nil, fmt.Errorf("create standings_log table: %w", err)
	}
	return &Recorder{db: db, queue: make(chan game.GameState, 256)}, nil
}

// Start subscribes the recorder to the document feed.
func (r *Recorder) Start(ctx context.Context, st store.Store) error {
	workerCtx, cancel := context.WithCancel(ctx)

	unsub, err := st.Subscribe(ctx, func(doc game.GameState) {
		select {
		case r.queue <- doc:
		default:
			log.Warn().Msg("archive queue full, dropping revision")
		}
	})
	if err != nil {
		cancel()
		return fmt.Errorf("subscribe archive recorder: %w", err)
	}

	r.cancel = func() {
		unsub()
		cancel()
	}

	r.wg.Add(1)
	go r.worker(workerCtx)
	log.Info().Msg("archive recorder started")
	return nil
}

// Stop detaches the subscription and waits for the worker to drain.
func (r *Recorder) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
}

func (r *Recorder) worker(ctx context.Context) {
	defer r.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case doc := <-r.queue:
			if err := r.record(ctx, doc); err != nil {
				log.Error().Err(err).Msg("failed to archive revision")
			}
		}
	}
}

func (r *Recorder) record(ctx context.Context, doc game.GameState) error {
	teams, err := json.Marshal(doc.Teams)
	if err != nil {
		return fmt.Errorf("marshal teams: %w", err)
	}
	_, err = r.db.ExecContext(ctx, insertRow,
		time.Now().UTC(), doc.Round, doc.PhaseIdx, doc.IsFrozen, teams)
	if err != nil {
		return fmt.Errorf("insert standings row: %w", err)
	}
	return nil
}
