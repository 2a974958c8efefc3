package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	_ "github.com/lib/pq"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/showrunner/go/internal/archive"
	"github.com/mcdev12/showrunner/go/internal/control"
	"github.com/mcdev12/showrunner/go/internal/dbconfig"
	"github.com/mcdev12/showrunner/go/internal/gateway"
	"github.com/mcdev12/showrunner/go/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	cfg := loadConfig()
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	pb, err := loadPlaybook(cfg.PlaybookPath)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid playbook")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open state store")
	}
	defer closeStore()

	clock := clockwork.NewRealClock()

	ctl := control.New(st, pb, clock)
	if err := ctl.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start controller")
	}
	defer ctl.Stop()

	svc := gateway.NewService(gateway.DefaultConfig(), st, pb, ctl, clock)

	var recorder *archive.Recorder
	if cfg.ArchiveOn {
		recorder, err = setupArchive(ctx, st)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to start archive recorder")
		}
		defer recorder.Stop()
	}

	mux := http.NewServeMux()
	svc.RegisterRoutes(mux)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.HandleFunc("/info", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"service":"showrunner","connections":%d,"connected":%t}`,
			svc.ConnectionCount(), st.Connected())
	})

	handler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(mux)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go svc.Start(ctx)
	go func() {
		log.Info().Str("addr", server.Addr).Str("store", cfg.StoreBackend).Msg("showrunner listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	cancel()
	log.Info().Msg("showrunner shutdown complete")
}

func openStore(ctx context.Context, cfg Config) (store.Store, func(), error) {
	switch cfg.StoreBackend {
	case "memory":
		return store.NewMemory(), func() {}, nil
	case "nats":
		kvCfg := store.DefaultKVConfig()
		kvCfg.URL = cfg.NATSURL
		kv, err := store.NewKV(ctx, kvCfg)
		if err != nil {
			return nil, nil, err
		}
		return kv, kv.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func setupArchive(ctx context.Context, st store.Store) (*archive.Recorder, error) {
	dbCfg := dbconfig.NewConfigFromEnv()
	db, err := sql.Open("postgres", dbCfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open archive database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping archive database: %w", err)
	}

	recorder, err := archive.NewRecorder(ctx, db)
	if err != nil {
		return nil, err
	}
	if err := recorder.Start(ctx, st); err != nil {
		return nil, err
	}
	log.Info().Str("database", dbCfg.Database).Msg("archive recorder attached")
	return recorder, nil
}
