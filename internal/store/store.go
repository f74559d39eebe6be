package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"quill/internal/models"
)

const (
	busyTimeoutMS          = 5000
	defaultMaxOpenConns    = 1
	defaultMaxIdleConns    = 1
	defaultConnMaxLifetime = 5 * time.Minute

	maxOpenConnsEnvKey    = "QUILL_DB_MAX_OPEN_CONNS"
	maxIdleConnsEnvKey    = "QUILL_DB_MAX_IDLE_CONNS"
	connMaxLifetimeEnvKey = "QUILL_DB_CONN_MAX_LIFETIME"
)

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

// Info summarizes database state for the info endpoint.
type Info struct {
	SchemaVersion int                   `json:"schema_version"`
	Alive         map[models.Entity]int `json:"alive"`
	Deleted       map[models.Entity]int `json:"deleted"`
	Users         int                   `json:"users"`
	Media         int                   `json:"media"`
}

// Open opens the SQLite database and applies pending migrations.
func Open(path string) (*Store, error) {
	dsn, err := sqliteDSN(path)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := configureDB(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Info returns schema version and per-entity row counts.
func (s *Store) Info(ctx context.Context) (*Info, error) {
	info := &Info{
		Alive:   map[models.Entity]int{},
		Deleted: map[models.Entity]int{},
	}

	version, err := currentVersion(s.db)
	if err != nil {
		return nil, err
	}
	info.SchemaVersion = version

	for _, entity := range models.AuditedEntities() {
		table := auditedTables[entity].table
		rows, err := s.db.QueryContext(ctx, "SELECT is_deleted, COUNT(*) FROM "+table+" GROUP BY is_deleted")
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var deleted, count int
			if err := rows.Scan(&deleted, &count); err != nil {
				rows.Close()
				return nil, err
			}
			if deleted != 0 {
				info.Deleted[entity] = count
			} else {
				info.Alive[entity] = count
			}
		}
		if err := rows.Close(); err != nil {
			return nil, err
		}
	}

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&info.Users); err != nil {
		return nil, err
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM media").Scan(&info.Media); err != nil {
		return nil, err
	}
	return info, nil
}

func configureDB(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA foreign_keys = ON;",
		fmt.Sprintf("PRAGMA busy_timeout = %d;", busyTimeoutMS),
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	// Single writer by default; SQLite serializes anyway.
	db.SetMaxOpenConns(intFromEnv(maxOpenConnsEnvKey, defaultMaxOpenConns))
	db.SetMaxIdleConns(intFromEnv(maxIdleConnsEnvKey, defaultMaxIdleConns))
	db.SetConnMaxLifetime(durationFromEnv(connMaxLifetimeEnvKey, defaultConnMaxLifetime))

	return nil
}

func intFromEnv(key string, fallback int) int {
	value, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

// durationFromEnv accepts Go durations or bare seconds.
func durationFromEnv(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	if seconds, err := strconv.Atoi(raw); err == nil {
		if seconds <= 0 {
			return fallback
		}
		return time.Duration(seconds) * time.Second
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func sqliteDSN(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("db path is required")
	}
	// Per-connection pragmas also go in the DSN so a recycled connection keeps them.
	query := url.Values{}
	query.Add("_pragma", "foreign_keys(1)")
	query.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeoutMS))
	return "file:" + path + "?" + query.Encode(), nil
}
