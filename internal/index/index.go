// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index maintains a SQLite search index over the merged
// dataset: full-text search across titles, abstracts, and keywords,
// with structured filters on status and change category.
package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/review-tracker/internal/classify"
	"github.com/pdiddy/review-tracker/internal/site"
	"github.com/pdiddy/review-tracker/pkg/types"
)

const dbFile = "review.db"

// Store manages the search index SQLite database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// NewStore opens or creates the search index at cfg.IndexDir/review.db,
// creating the schema if it does not exist.
func NewStore(cfg types.IndexConfig) (*Store, error) {
	indexDir := cfg.IndexDir
	if indexDir == "" {
		indexDir = filepath.Join(cfg.DataDir, "index")
	}
	if err := os.MkdirAll(indexDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(indexDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS submissions (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			number INTEGER,
			title TEXT,
			status TEXT,
			primary_area TEXT,
			keywords TEXT,
			abstract TEXT,
			change_category TEXT,
			review_count INTEGER,
			entry_count INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_submissions_status ON submissions(status)`,
		`CREATE INDEX IF NOT EXISTS idx_submissions_category ON submissions(change_category)`,
		`CREATE TABLE IF NOT EXISTS build_info (
			key TEXT PRIMARY KEY,
			value TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='submissions_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE submissions_fts USING fts5(title, abstract, keywords, content=submissions, content_rowid=rowid)`,
			`CREATE TRIGGER submissions_ai AFTER INSERT ON submissions BEGIN
				INSERT INTO submissions_fts(rowid, title, abstract, keywords) VALUES (new.rowid, new.title, new.abstract, new.keywords);
			END`,
			`CREATE TRIGGER submissions_ad AFTER DELETE ON submissions BEGIN
				INSERT INTO submissions_fts(submissions_fts, rowid, title, abstract, keywords) VALUES('delete', old.rowid, old.title, old.abstract, old.keywords);
			END`,
			`CREATE TRIGGER submissions_au AFTER UPDATE ON submissions BEGIN
				INSERT INTO submissions_fts(submissions_fts, rowid, title, abstract, keywords) VALUES('delete', old.rowid, old.title, old.abstract, old.keywords);
				INSERT INTO submissions_fts(rowid, title, abstract, keywords) VALUES (new.rowid, new.title, new.abstract, new.keywords);
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

// BuildSummary holds counts from an index build run.
type BuildSummary struct {
	Indexed int
	Skipped bool
}

// Build loads the dataset into the index inside one transaction. The
// dataset's content version is recorded; a rebuild against an unchanged
// dataset is skipped.
func (s *Store) Build(ctx context.Context, ds types.Dataset, w io.Writer) (BuildSummary, error) {
	version, err := site.DatasetVersion(ds)
	if err != nil {
		return BuildSummary{}, err
	}

	var stored string
	err = s.db.QueryRowContext(ctx,
		`SELECT value FROM build_info WHERE key = 'dataset_version'`,
	).Scan(&stored)
	if err == nil && stored == version {
		fmt.Fprintf(w, "index up to date (dataset %s)\n", version[:12])
		return BuildSummary{Skipped: true}, nil
	}
	if err != nil && err != sql.ErrNoRows {
		return BuildSummary{}, fmt.Errorf("checking build info: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return BuildSummary{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM submissions`); err != nil {
		return BuildSummary{}, fmt.Errorf("clearing submissions: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO submissions (id, number, title, status, primary_area, keywords, abstract, change_category, review_count, entry_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return BuildSummary{}, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	var summary BuildSummary
	for _, sub := range ds {
		reviewCount := 0
		for _, th := range sub.Threads() {
			if th.HasRating() {
				reviewCount++
			}
		}
		keywordsJSON, _ := json.Marshal(sub.Keywords())

		_, err := stmt.ExecContext(ctx,
			sub.ID, sub.Number, sub.Title(), string(sub.Status()),
			sub.PrimaryArea(), string(keywordsJSON), sub.Abstract(),
			string(classify.Submission(sub)), reviewCount,
			len(sub.Details.DirectReplies),
		)
		if err != nil {
			return BuildSummary{}, fmt.Errorf("inserting submission %s: %w", sub.ID, err)
		}
		summary.Indexed++
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO build_info (key, value) VALUES ('dataset_version', ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value`, version)
	if err != nil {
		return BuildSummary{}, fmt.Errorf("recording build info: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO build_info (key, value) VALUES ('built_at', ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value`,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return BuildSummary{}, fmt.Errorf("recording build time: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return BuildSummary{}, fmt.Errorf("committing build: %w", err)
	}

	fmt.Fprintf(w, "indexed %d submissions (dataset %s)\n", summary.Indexed, version[:12])
	return summary, nil
}
