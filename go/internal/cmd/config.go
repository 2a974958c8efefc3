package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/mcdev12/showrunner/go/internal/playbook"
)

// Config holds the process configuration, read from the environment.
type Config struct {
	Port         string
	StoreBackend string // "nats" or "memory"
	NATSURL      string
	PlaybookPath string // empty means the built-in playbook
	ArchiveOn    bool
	LogLevel     string
}

func loadConfig() Config {
	return Config{
		Port:         getEnv("PORT", "8080"),
		StoreBackend: getEnv("STORE_BACKEND", "nats"),
		NATSURL:      getEnv("NATS_URL", "nats://localhost:4222"),
		PlaybookPath: getEnv("PLAYBOOK_PATH", ""),
		ArchiveOn:    getEnvAsBool("ARCHIVE_ENABLED", false),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
	}
}

// loadPlaybook reads the round table, falling back to the built-in table
// when no file is configured. Validation failures are fatal: a broken round
// table must never reach the live path.
func loadPlaybook(path string) (playbook.Playbook, error) {
	if path == "" {
		return playbook.Default(), nil
	}
	pb, err := playbook.Load(path)
	if err != nil {
		return playbook.Playbook{}, fmt.Errorf("load playbook: %w", err)
	}
	return pb, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
