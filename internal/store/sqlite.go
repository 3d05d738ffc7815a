package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/jarvis/internal/checksum"
	"github.com/starford/jarvis/internal/models"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS user_data (
	username   TEXT PRIMARY KEY,
	data       TEXT NOT NULL,
	checksum   TEXT NOT NULL DEFAULT '',
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// SQLite is the remote-of-record provider: one JSON document per user.
type SQLite struct {
	conn *sql.DB
}

var _ Provider = (*SQLite)(nil)

// OpenSQLite opens (or creates) the database at path and applies the schema.
func OpenSQLite(path string) (*SQLite, error) {
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &SQLite{conn: conn}, nil
}

// Close closes the underlying connection.
func (s *SQLite) Close() error {
	return s.conn.Close()
}

// Ping reports whether the database is reachable.
func (s *SQLite) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

// Load implements Provider.
func (s *SQLite) Load(ctx context.Context, userKey string) (*models.UserData, error) {
	var raw string
	err := s.conn.QueryRowContext(ctx, `SELECT data FROM user_data WHERE username = ?`, userKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: load %s: %w", userKey, err)
	}
	var d models.UserData
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return nil, fmt.Errorf("store: decode %s: %w", userKey, err)
	}
	return &d, nil
}

// Save implements Provider. Unchanged documents are not rewritten.
func (s *SQLite) Save(ctx context.Context, userKey string, data *models.UserData) error {
	if err := ValidateUserKey(userKey); err != nil {
		return fmt.Errorf("store: save: %w", err)
	}
	raw, sum, err := checksum.Document(data)
	if err != nil {
		return fmt.Errorf("store: save %s: %w", userKey, err)
	}
	if cur, err := s.Checksum(ctx, userKey); err == nil && cur == sum {
		return nil
	}
	_, err = s.conn.ExecContext(ctx, `
		INSERT INTO user_data (username, data, checksum, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(username) DO UPDATE SET
			data       = excluded.data,
			checksum   = excluded.checksum,
			updated_at = excluded.updated_at
	`, userKey, string(raw), sum, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("store: save %s: %w", userKey, err)
	}
	return nil
}

// Checksum returns the stored document checksum, or "" when absent.
func (s *SQLite) Checksum(ctx context.Context, userKey string) (string, error) {
	var cs string
	err := s.conn.QueryRowContext(ctx, `SELECT checksum FROM user_data WHERE username = ?`, userKey).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("store: checksum %s: %w", userKey, err)
	}
	return cs, nil
}
