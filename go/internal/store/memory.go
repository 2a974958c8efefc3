package store

import (
	"context"
	"sync"

	"github.com/mcdev12/showrunner/go/internal/game"
)

// Memory is an in-process Store for tests and single-machine sessions.
// Delivery is synchronous on the writer's goroutine, which keeps per-
// subscriber ordering trivially correct; callbacks are expected to only
// record the document and signal their own loop.
type Memory struct {
	mu     sync.Mutex
	doc    game.GameState
	hasDoc bool
	nextID int
	subs   map[int]func(game.GameState)
}

func NewMemory() *Memory {
	return &Memory{subs: make(map[int]func(game.GameState))}
}

func (m *Memory) Write(_ context.Context, doc game.GameState) error {
	m.mu.Lock()
	m.doc = doc
	m.hasDoc = true
	fns := m.snapshotSubs()
	m.mu.Unlock()

	for _, fn := range fns {
		fn(doc)
	}
	return nil
}

func (m *Memory) Update(_ context.Context, fields Fields) error {
	m.mu.Lock()
	if !m.hasDoc {
		m.mu.Unlock()
		return ErrNoDocument
	}
	merged, err := mergeFields(m.doc, fields)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	m.doc = merged
	fns := m.snapshotSubs()
	m.mu.Unlock()

	for _, fn := range fns {
		fn(merged)
	}
	return nil
}

func (m *Memory) Subscribe(_ context.Context, fn func(game.GameState)) (func(), error) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	deliver := m.hasDoc
	doc := m.doc
	m.mu.Unlock()

	if deliver {
		fn(doc)
	}
	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}, nil
}

func (m *Memory) Connected() bool { return true }

// snapshotSubs copies the callback set so delivery happens outside the lock.
func (m *Memory) snapshotSubs() []func(game.GameState) {
	fns := make([]func(game.GameState), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	return fns
}
