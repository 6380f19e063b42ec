package db

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
)

type Config struct {
	URL string
}

// NewConnection opens and verifies a Postgres connection.
func NewConnection(cfg Config) (*sql.DB, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}

	// Reasonable defaults for the connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

// MaskURL strips credentials from a database URL for logging.
func MaskURL(url string) string {
	if url == "" {
		return ""
	}
	parts := strings.Split(url, "@")
	if len(parts) > 1 {
		return "postgres://[masked]@" + parts[len(parts)-1]
	}
	return "postgres://[masked]"
}
