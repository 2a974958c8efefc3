package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/showrunner/go/internal/control"
	"github.com/mcdev12/showrunner/go/internal/game"
	"github.com/mcdev12/showrunner/go/internal/store"
)

// ControlHandler exposes the controller command surface over a small JSON
// API. Every rejected command comes back as an error status; the document is
// only ever mutated through the control layer.
type ControlHandler struct {
	ctl *control.Controller
}

func NewControlHandler(ctl *control.Controller) *ControlHandler {
	return &ControlHandler{ctl: ctl}
}

type roundRequest struct {
	Round int `json:"round"`
}

type deltaRequest struct {
	TeamID string `json:"teamId"`
	Power  int    `json:"power"`
	Score  int    `json:"score"`
}

type actionRequest struct {
	TeamID string `json:"teamId"`
	Action int    `json:"action"`
}

// RegisterRoutes registers the control API routes.
func (h *ControlHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/control/claim", h.command(func(r *http.Request) error {
		return h.ctl.ClaimRole(r.Context())
	}))
	mux.HandleFunc("/api/control/reset", h.command(func(r *http.Request) error {
		return h.ctl.ResetGame(r.Context())
	}))
	mux.HandleFunc("/api/control/round", h.command(func(r *http.Request) error {
		var req roundRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return errBadRequest
		}
		return h.ctl.JumpToRound(r.Context(), req.Round)
	}))
	mux.HandleFunc("/api/control/phase/advance", h.command(func(r *http.Request) error {
		return h.ctl.AdvancePhase(r.Context())
	}))
	mux.HandleFunc("/api/control/timer/start", h.command(func(r *http.Request) error {
		return h.ctl.StartResume(r.Context())
	}))
	mux.HandleFunc("/api/control/timer/freeze", h.command(func(r *http.Request) error {
		return h.ctl.Freeze(r.Context())
	}))
	mux.HandleFunc("/api/control/timer/reset", h.command(func(r *http.Request) error {
		return h.ctl.ResetTimer(r.Context())
	}))
	mux.HandleFunc("/api/control/delta", h.command(func(r *http.Request) error {
		var req deltaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return errBadRequest
		}
		return h.ctl.ApplyDelta(r.Context(), req.TeamID, req.Power, req.Score)
	}))
	mux.HandleFunc("/api/control/action", h.command(func(r *http.Request) error {
		var req actionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return errBadRequest
		}
		return h.ctl.ApplyAction(r.Context(), req.TeamID, req.Action)
	}))
	mux.HandleFunc("/api/state", h.HandleGetState)
}

var errBadRequest = errors.New("bad request body")

func (h *ControlHandler) command(run func(r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if err := run(r); err != nil {
			writeCommandError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}
}

// HandleGetState serves GET /api/state with the raw shared document.
func (h *ControlHandler) HandleGetState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	doc, err := h.ctl.State()
	if err != nil {
		writeCommandError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(doc); err != nil {
		log.Error().Err(err).Msg("failed to encode state response")
	}
}

func writeCommandError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusBadGateway // store/transport failure: command had no effect
	switch {
	case errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, game.ErrUnknownTeam),
		errors.Is(err, game.ErrUnknownRound),
		errors.Is(err, control.ErrUnknownAction):
		status = http.StatusNotFound
	case errors.Is(err, game.ErrLastPhase):
		status = http.StatusConflict
	case errors.Is(err, control.ErrNotInitialized),
		errors.Is(err, store.ErrNoDocument):
		status = http.StatusConflict
	}

	log.Warn().
		Err(err).
		Str("path", r.URL.Path).
		Int("status", status).
		Msg("command rejected")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
