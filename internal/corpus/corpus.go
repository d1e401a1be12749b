// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpus stores ingested documents in SQLite and serves the
// retrieval capability behind the research stage.
// Implements: prd005-corpus (R1-R3).
//
// Documents are split into paragraph passages indexed with FTS5. A query
// returns the best-matching passages joined into one answer text, with the
// match count as the source count. This is the query-side collaborator the
// engine needs; vector index construction stays outside this repository.
package corpus

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/analyst-engine/pkg/types"
)

// Store manages the corpus SQLite database.
type Store struct {
	db          *sql.DB
	maxPassages int
}

// Open opens or creates the corpus database at cfg.DBPath and ensures the
// schema exists (R1.1).
func Open(cfg types.RetrievalConfig) (*Store, error) {
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating corpus directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening corpus database: %w", err)
	}

	maxPassages := cfg.MaxPassages
	if maxPassages <= 0 {
		maxPassages = 5
	}

	s := &Store{db: db, maxPassages: maxPassages}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating corpus schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			ingested_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS passages (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			document_id INTEGER NOT NULL REFERENCES documents(id),
			content TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_passages_document ON passages(document_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='passages_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE passages_fts USING fts5(content, content=passages, content_rowid=rowid)`,
			`CREATE TRIGGER passages_ai AFTER INSERT ON passages BEGIN
				INSERT INTO passages_fts(rowid, content) VALUES (new.rowid, new.content);
			END`,
			`CREATE TRIGGER passages_ad AFTER DELETE ON passages BEGIN
				INSERT INTO passages_fts(passages_fts, rowid, content) VALUES('delete', old.rowid, old.content);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// IngestSummary holds counts from a corpus ingestion run.
type IngestSummary struct {
	Ingested int
	Replaced int
	Failed   int
	Passages int
}

// IngestDir loads every .txt and .md file in dir into the corpus, one
// paragraph per passage. Re-ingesting a document replaces its passages
// (R2.1-R2.3). Progress lines go to w.
func (s *Store) IngestDir(ctx context.Context, dir string, w io.Writer) (IngestSummary, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("reading document directory %s: %w", dir, err)
	}

	var summary IngestSummary

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".txt" && ext != ".md" {
			continue
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", entry.Name(), err)
			summary.Failed++
			continue
		}

		passages := splitPassages(string(data))
		replaced, err := s.ingestDocument(ctx, entry.Name(), passages)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", entry.Name(), err)
			summary.Failed++
			continue
		}

		if replaced {
			fmt.Fprintf(w, "replaced %s (%d passages)\n", entry.Name(), len(passages))
			summary.Replaced++
		} else {
			fmt.Fprintf(w, "ingested %s (%d passages)\n", entry.Name(), len(passages))
			summary.Ingested++
		}
		summary.Passages += len(passages)
	}

	fmt.Fprintf(w, "\ningested: %d, replaced: %d, failed: %d, passages: %d\n",
		summary.Ingested, summary.Replaced, summary.Failed, summary.Passages)

	return summary, nil
}

func (s *Store) ingestDocument(ctx context.Context, name string, passages []string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var docID int64
	replaced := true
	err = tx.QueryRowContext(ctx, `SELECT id FROM documents WHERE name = ?`, name).Scan(&docID)
	switch {
	case err == sql.ErrNoRows:
		replaced = false
		res, err := tx.ExecContext(ctx,
			`INSERT INTO documents (name, ingested_at) VALUES (?, datetime('now'))`, name)
		if err != nil {
			return false, fmt.Errorf("inserting document: %w", err)
		}
		docID, _ = res.LastInsertId()
	case err != nil:
		return false, fmt.Errorf("looking up document: %w", err)
	default:
		if _, err := tx.ExecContext(ctx, `DELETE FROM passages WHERE document_id = ?`, docID); err != nil {
			return false, fmt.Errorf("deleting old passages: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE documents SET ingested_at = datetime('now') WHERE id = ?`, docID); err != nil {
			return false, fmt.Errorf("updating document: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO passages (document_id, content) VALUES (?, ?)`)
	if err != nil {
		return false, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, passage := range passages {
		if _, err := stmt.ExecContext(ctx, docID, passage); err != nil {
			return false, fmt.Errorf("inserting passage: %w", err)
		}
	}

	return replaced, tx.Commit()
}

// splitPassages breaks document text into paragraphs on blank lines.
func splitPassages(text string) []string {
	var passages []string
	for _, block := range strings.Split(text, "\n\n") {
		block = strings.TrimSpace(block)
		if block != "" {
			passages = append(passages, block)
		}
	}
	return passages
}

// Query answers a sub-query with the top-ranked matching passages joined as
// one answer text; the source count is the number of passages matched
// (R3.1-R3.3). It satisfies the engine's Retriever interface.
func (s *Store) Query(ctx context.Context, text string) (types.RetrievedAnswer, error) {
	match := ftsQuery(text)
	if match == "" {
		return types.RetrievedAnswer{Answer: "No relevant passages found."}, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT p.content
		 FROM passages_fts
		 JOIN passages p ON p.rowid = passages_fts.rowid
		 WHERE passages_fts MATCH ?
		 ORDER BY passages_fts.rank
		 LIMIT ?`,
		match, s.maxPassages)
	if err != nil {
		return types.RetrievedAnswer{}, fmt.Errorf("querying corpus: %w", err)
	}
	defer rows.Close()

	var passages []string
	for rows.Next() {
		var content string
		if err := rows.Scan(&content); err != nil {
			return types.RetrievedAnswer{}, fmt.Errorf("scanning passage: %w", err)
		}
		passages = append(passages, content)
	}
	if err := rows.Err(); err != nil {
		return types.RetrievedAnswer{}, err
	}

	if len(passages) == 0 {
		return types.RetrievedAnswer{Answer: "No relevant passages found."}, nil
	}

	return types.RetrievedAnswer{
		Answer:      strings.Join(passages, "\n\n"),
		SourceCount: len(passages),
	}, nil
}

// ftsQuery turns free text into an FTS5 OR-query of quoted terms, so user
// punctuation cannot be misread as FTS syntax.
func ftsQuery(text string) string {
	fields := strings.Fields(text)
	var terms []string
	for _, f := range fields {
		f = strings.Trim(f, `"'?,.;:()`)
		if f == "" {
			continue
		}
		terms = append(terms, `"`+strings.ReplaceAll(f, `"`, ``)+`"`)
	}
	return strings.Join(terms, " OR ")
}
