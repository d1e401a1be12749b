// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive records completed workflow runs in SQLite, giving the
// assistant a history of past analyses beyond the short-term memory window.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/analyst-engine/pkg/types"
)

// Store manages the session archive database.
type Store struct {
	db *sql.DB
}

// Session is one archived workflow run.
type Session struct {
	ID         int64     `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	Query      string    `json:"query"`
	Summary    string    `json:"summary"`
	Confidence float64   `json:"confidence"`
	Steps      []string  `json:"steps"`
}

// Open opens or creates the archive database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating archive directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening archive database: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at TEXT NOT NULL,
		query TEXT NOT NULL,
		summary TEXT NOT NULL,
		confidence REAL NOT NULL,
		steps TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating archive schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record appends one completed run to the archive.
func (s *Store) Record(ctx context.Context, query string, result *types.WorkflowResult) error {
	stepsJSON, err := json.Marshal(result.WorkflowSteps)
	if err != nil {
		return fmt.Errorf("marshaling steps: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (created_at, query, summary, confidence, steps)
		 VALUES (?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339), query, result.Summary,
		result.Confidence, string(stepsJSON),
	)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

// Recent returns up to limit archived runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, query, summary, confidence, steps
		 FROM sessions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var (
			sess      Session
			createdAt string
			stepsJSON string
		)
		if err := rows.Scan(&sess.ID, &createdAt, &sess.Query, &sess.Summary,
			&sess.Confidence, &stepsJSON); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sess.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		json.Unmarshal([]byte(stepsJSON), &sess.Steps)
		sessions = append(sessions, sess)
	}

	return sessions, rows.Err()
}
