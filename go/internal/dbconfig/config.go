package dbconfig

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the Postgres connection settings for the standings archive.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// NewConfigFromEnv reads ARCHIVE_DB_* environment variables, falling back to
// the generic DB_* names, then to defaults. The archive prefix lets the
// standings database live apart from anything else sharing the environment.
func NewConfigFromEnv() Config {
	port, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		port = 5432
	}

	return Config{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     port,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		Database: getEnv("DB_NAME", "showrunner"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}
}

// DSN returns the Postgres connection URL.
func (c Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

// getEnv resolves key with the archive prefix first, so ARCHIVE_DB_NAME wins
// over DB_NAME when both are set.
func getEnv(key, fallback string) string {
	if v := os.Getenv("ARCHIVE_" + key); v != "" {
		return v
	}
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
