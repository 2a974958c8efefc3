package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/showrunner/go/internal/display"
	"github.com/mcdev12/showrunner/go/internal/playbook"
	"github.com/mcdev12/showrunner/go/internal/store"
)

// DisplayHandler upgrades display clients and streams derived view frames to
// them. Every connection gets its own display session, so each viewer tracks
// its own last-seen effect id exactly like an independently running screen.
type DisplayHandler struct {
	manager *ConnectionManager
	store   store.Store
	pb      playbook.Playbook
	clock   clockwork.Clock
}

func NewDisplayHandler(cm *ConnectionManager, st store.Store, pb playbook.Playbook, clock clockwork.Clock) *DisplayHandler {
	return &DisplayHandler{manager: cm, store: st, pb: pb, clock: clock}
}

// HandleDisplay serves GET /ws/display.
func (h *DisplayHandler) HandleDisplay(w http.ResponseWriter, r *http.Request) {
	conn, err := h.manager.Upgrade(w, r)
	if err != nil {
		// Upgrade already replied to the client.
		log.Error().Err(err).Msg("failed to upgrade display connection")
		return
	}

	// The request context is cancelled as soon as this handler returns, which
	// would tear down the store watcher under a still-open socket. The
	// subscription lives for the connection; stream() stops it on Done.
	session := display.NewSession(h.store, h.pb, h.clock)
	if err := session.Start(context.WithoutCancel(r.Context())); err != nil {
		log.Error().Err(err).Str("connection_id", conn.ID).Msg("failed to start display session")
		conn.Conn.Close()
		return
	}

	go h.stream(conn, session)
}

// stream re-renders on every document revision and on the fixed redraw
// cadence, so the countdown keeps advancing between revisions purely from
// the local clock.
func (h *DisplayHandler) stream(conn *Connection, session *display.Session) {
	defer session.Stop()

	ticker := h.clock.NewTicker(display.RedrawInterval)
	defer ticker.Stop()

	h.push(conn, session)
	for {
		select {
		case <-conn.Done():
			return
		case <-session.Changed():
			h.push(conn, session)
		case <-ticker.Chan():
			h.push(conn, session)
		}
	}
}

func (h *DisplayHandler) push(conn *Connection, session *display.Session) {
	frame, err := json.Marshal(session.View())
	if err != nil {
		log.Error().Err(err).Str("connection_id", conn.ID).Msg("failed to marshal view frame")
		return
	}
	conn.Push(frame)
}

// HandleConnectionStats serves GET /ws/stats.
func (h *DisplayHandler) HandleConnectionStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"display_connections":` + strconv.Itoa(h.manager.ConnectionCount()) + `}`))
}

// RegisterRoutes registers the display WebSocket routes.
func (h *DisplayHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws/display", h.HandleDisplay)
	mux.HandleFunc("/ws/stats", h.HandleConnectionStats)
}
