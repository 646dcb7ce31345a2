// Package server exposes a discovered vocabulary over HTTP: trie-backed
// tokenization with a Redis cache, plus persistence of discovery runs in
// PostgreSQL.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/lexforge/word-discovery-platform/internal/discover"
	apperrors "github.com/lexforge/word-discovery-platform/pkg/errors"
	"github.com/lexforge/word-discovery-platform/pkg/postgres"
)

// Store persists discovery runs in PostgreSQL.
//
// It requires the tables:
//
//	CREATE TABLE vocabulary_runs (
//	    id          BIGSERIAL PRIMARY KEY,
//	    corpus      TEXT NOT NULL,
//	    entry_count INT NOT NULL,
//	    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
//	CREATE TABLE vocabulary_entries (
//	    run_id BIGINT NOT NULL REFERENCES vocabulary_runs(id) ON DELETE CASCADE,
//	    token  TEXT NOT NULL,
//	    count  BIGINT NOT NULL
//	);
type Store struct {
	db     *postgres.Client
	logger *slog.Logger
}

// NewStore creates a vocabulary persistence store.
func NewStore(db *postgres.Client) *Store {
	return &Store{
		db:     db,
		logger: slog.Default().With("component", "vocab-store"),
	}
}

// SaveRun persists a discovery run and its entries in one transaction,
// returning the new run id.
func (s *Store) SaveRun(ctx context.Context, corpus string, entries []discover.Entry) (int64, error) {
	var runID int64
	err := s.db.InTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			`INSERT INTO vocabulary_runs (corpus, entry_count, created_at) VALUES ($1, $2, $3) RETURNING id`,
			corpus, len(entries), time.Now().UTC(),
		).Scan(&runID)
		if err != nil {
			return fmt.Errorf("inserting vocabulary run: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO vocabulary_entries (run_id, token, count) VALUES ($1, $2, $3)`,
		)
		if err != nil {
			return fmt.Errorf("preparing entry insert: %w", err)
		}
		defer stmt.Close()
		for _, e := range entries {
			if _, err := stmt.ExecContext(ctx, runID, e.Token, e.Count); err != nil {
				return fmt.Errorf("inserting entry %q: %w", e.Token, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("vocabulary run saved", "run_id", runID, "entries", len(entries))
	return runID, nil
}

// LoadRun returns the entries of one run, sorted by count descending.
func (s *Store) LoadRun(ctx context.Context, runID int64) ([]discover.Entry, error) {
	rows, err := s.db.DB.QueryContext(ctx,
		`SELECT token, count FROM vocabulary_entries WHERE run_id = $1 ORDER BY count DESC, token ASC`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying vocabulary run %d: %w", runID, err)
	}
	defer rows.Close()

	var entries []discover.Entry
	for rows.Next() {
		var e discover.Entry
		if err := rows.Scan(&e.Token, &e.Count); err != nil {
			return nil, fmt.Errorf("scanning vocabulary entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading vocabulary entries: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: run %d", apperrors.ErrVocabularyNotFound, runID)
	}
	return entries, nil
}

// LatestRunID returns the id of the most recent run.
func (s *Store) LatestRunID(ctx context.Context) (int64, error) {
	var runID int64
	err := s.db.DB.QueryRowContext(ctx,
		`SELECT id FROM vocabulary_runs ORDER BY created_at DESC, id DESC LIMIT 1`,
	).Scan(&runID)
	if err == sql.ErrNoRows {
		return 0, apperrors.ErrVocabularyNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("querying latest run: %w", err)
	}
	return runID, nil
}

// LoadLatest returns the entries of the most recent run.
func (s *Store) LoadLatest(ctx context.Context) (int64, []discover.Entry, error) {
	runID, err := s.LatestRunID(ctx)
	if err != nil {
		return 0, nil, err
	}
	entries, err := s.LoadRun(ctx, runID)
	if err != nil {
		return 0, nil, err
	}
	return runID, entries, nil
}
