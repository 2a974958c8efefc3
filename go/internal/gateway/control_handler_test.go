package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jonboulle/clockwork"

	"github.com/mcdev12/showrunner/go/internal/control"
	"github.com/mcdev12/showrunner/go/internal/game"
	"github.com/mcdev12/showrunner/go/internal/playbook"
	"github.com/mcdev12/showrunner/go/internal/store"
)

func newTestAPI(t *testing.T) (*http.ServeMux, *control.Controller) {
	t.Helper()
	pb, err := playbook.New([]playbook.Round{
		{ID: 0, Title: "Lobby", Time: 0, Phases: []string{"Standby"}},
		{ID: 2, Title: "Two Phase", Phases: []string{"Brief", "Work"}, PhaseTimes: []int{120, 60}},
		{
			ID: 3, Title: "Presets", Time: 240, Phases: []string{"Execution"},
			Actions: []playbook.Action{{Label: "Hit", Power: -10, Score: -5}},
		},
	})
	if err != nil {
		t.Fatalf("playbook: %v", err)
	}

	ctl := control.New(store.NewMemory(), pb, clockwork.NewFakeClock())
	if err := ctl.Start(context.Background()); err != nil {
		t.Fatalf("start controller: %v", err)
	}
	t.Cleanup(ctl.Stop)

	mux := http.NewServeMux()
	NewControlHandler(ctl).RegisterRoutes(mux)
	return mux, ctl
}

func do(t *testing.T, mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestClaimThenState(t *testing.T) {
	mux, _ := newTestAPI(t)

	// Commands against an empty store are rejected, not silently absorbed.
	if rec := do(t, mux, http.MethodGet, "/api/state", ""); rec.Code != http.StatusConflict {
		t.Fatalf("state before claim = %d, want 409", rec.Code)
	}
	if rec := do(t, mux, http.MethodPost, "/api/control/timer/start", ""); rec.Code != http.StatusConflict {
		t.Fatalf("timer start before claim = %d, want 409", rec.Code)
	}

	if rec := do(t, mux, http.MethodPost, "/api/control/claim", ""); rec.Code != http.StatusOK {
		t.Fatalf("claim = %d: %s", rec.Code, rec.Body.String())
	}

	rec := do(t, mux, http.MethodGet, "/api/state", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("state = %d: %s", rec.Code, rec.Body.String())
	}
	var doc game.GameState
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if doc.Round != 0 || !doc.IsFrozen || len(doc.Teams) != 4 {
		t.Fatalf("state doc = %+v", doc)
	}
}

func TestRoundAndDeltaCommands(t *testing.T) {
	mux, ctl := newTestAPI(t)
	do(t, mux, http.MethodPost, "/api/control/claim", "")

	if rec := do(t, mux, http.MethodPost, "/api/control/round", `{"round":3}`); rec.Code != http.StatusOK {
		t.Fatalf("round = %d: %s", rec.Code, rec.Body.String())
	}
	if rec := do(t, mux, http.MethodPost, "/api/control/delta", `{"teamId":"t1","power":-10,"score":-5}`); rec.Code != http.StatusOK {
		t.Fatalf("delta = %d: %s", rec.Code, rec.Body.String())
	}
	if rec := do(t, mux, http.MethodPost, "/api/control/action", `{"teamId":"t2","action":0}`); rec.Code != http.StatusOK {
		t.Fatalf("action = %d: %s", rec.Code, rec.Body.String())
	}

	doc, err := ctl.State()
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if doc.Round != 3 {
		t.Fatalf("round = %d", doc.Round)
	}
	if doc.Teams[0].Power != 40 || doc.Teams[0].Score != -5 {
		t.Fatalf("t1 = %+v", doc.Teams[0])
	}
	if doc.Teams[1].Power != 40 || doc.Teams[1].Score != -5 {
		t.Fatalf("t2 = %+v", doc.Teams[1])
	}
	if doc.LastEffect == nil || doc.LastEffect.TeamID != "t2" {
		t.Fatalf("lastEffect = %+v", doc.LastEffect)
	}
}

func TestCommandErrorMapping(t *testing.T) {
	mux, _ := newTestAPI(t)
	do(t, mux, http.MethodPost, "/api/control/claim", "")
	do(t, mux, http.MethodPost, "/api/control/round", `{"round":2}`)
	do(t, mux, http.MethodPost, "/api/control/phase/advance", "")

	cases := []struct {
		name string
		path string
		body string
		want int
	}{
		{"malformed body", "/api/control/round", `{round}`, http.StatusBadRequest},
		{"unknown round", "/api/control/round", `{"round":42}`, http.StatusNotFound},
		{"unknown team", "/api/control/delta", `{"teamId":"ghost","power":1}`, http.StatusNotFound},
		{"no presets in round", "/api/control/action", `{"teamId":"t1","action":0}`, http.StatusNotFound},
		{"past last phase", "/api/control/phase/advance", "", http.StatusConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, mux, http.MethodPost, tc.path, tc.body)
			if rec.Code != tc.want {
				t.Fatalf("%s = %d, want %d: %s", tc.path, rec.Code, tc.want, rec.Body.String())
			}
			var payload map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
				t.Fatalf("error body not JSON: %v", err)
			}
			if payload["error"] == "" {
				t.Fatal("error body missing message")
			}
		})
	}
}

func TestCommandsRequirePost(t *testing.T) {
	mux, _ := newTestAPI(t)

	if rec := do(t, mux, http.MethodGet, "/api/control/claim", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET claim = %d, want 405", rec.Code)
	}
	if rec := do(t, mux, http.MethodPost, "/api/state", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST state = %d, want 405", rec.Code)
	}
}
