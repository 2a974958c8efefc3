package gateway

import (
	"context"
	"net/http"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/showrunner/go/internal/control"
	"github.com/mcdev12/showrunner/go/internal/playbook"
	"github.com/mcdev12/showrunner/go/internal/store"
)

// Service ties the display fan-out and the control API together behind one
// route surface.
type Service struct {
	manager        *ConnectionManager
	displayHandler *DisplayHandler
	controlHandler *ControlHandler
}

// Config holds gateway configuration.
type Config struct {
	ConnectionConfig ConnectionConfig
}

// DefaultConfig returns default gateway configuration.
func DefaultConfig() Config {
	return Config{ConnectionConfig: DefaultConnectionConfig()}
}

// NewService builds the gateway over an attached controller and store.
func NewService(cfg Config, st store.Store, pb playbook.Playbook, ctl *control.Controller, clock clockwork.Clock) *Service {
	manager := NewConnectionManager(cfg.ConnectionConfig)
	return &Service{
		manager:        manager,
		displayHandler: NewDisplayHandler(manager, st, pb, clock),
		controlHandler: NewControlHandler(ctl),
	}
}

// RegisterRoutes registers every gateway route.
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	s.displayHandler.RegisterRoutes(mux)
	s.controlHandler.RegisterRoutes(mux)
	log.Info().Msg("gateway routes registered")
}

// Start blocks until the context is cancelled, then closes every display
// connection.
func (s *Service) Start(ctx context.Context) {
	<-ctx.Done()
	log.Info().Msg("gateway shutting down")
	s.manager.CloseAll()
}

// ConnectionCount reports attached displays.
func (s *Service) ConnectionCount() int {
	return s.manager.ConnectionCount()
}
