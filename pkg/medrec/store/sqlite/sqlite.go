package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/medrec/pkg/medrec/dataset"
	"github.com/cognicore/medrec/pkg/medrec/internalerr"
	"github.com/cognicore/medrec/pkg/medrec/store"
	"github.com/cognicore/medrec/pkg/medrec/vocab"
)

// Advice kinds stored in the advice table.
const (
	kindPrecaution = "precaution"
	kindMedication = "medication"
	kindDiet       = "diet"
	kindWorkout    = "workout"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w: %v", path, internalerr.ErrStoreUnavailable, err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS records (
	seq INTEGER PRIMARY KEY,
	disease TEXT NOT NULL,
	symptoms TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS descriptions (
	disease TEXT PRIMARY KEY,
	description TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS advice (
	disease TEXT NOT NULL,
	kind TEXT NOT NULL,
	items TEXT NOT NULL,
	PRIMARY KEY(disease, kind)
);

CREATE TABLE IF NOT EXISTS history (
	id TEXT PRIMARY KEY,
	input TEXT NOT NULL,
	matched TEXT NOT NULL,
	disease TEXT,
	tier TEXT NOT NULL,
	score REAL NOT NULL,
	created_at TEXT NOT NULL
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// ReplaceDataset swaps the stored dataset for b in a single transaction.
func (s *sqliteStore) ReplaceDataset(ctx context.Context, b *dataset.Bundle) error {
	if b == nil || len(b.Records) == 0 {
		return internalerr.ErrEmptyDataset
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"records", "descriptions", "advice"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	recStmt, err := tx.PrepareContext(ctx, `INSERT INTO records (seq, disease, symptoms) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer recStmt.Close()

	for i, r := range b.Records {
		symptoms, err := json.Marshal(r.Symptoms)
		if err != nil {
			return err
		}
		if _, err := recStmt.ExecContext(ctx, i, r.Disease, string(symptoms)); err != nil {
			return fmt.Errorf("insert record %q: %w", r.Disease, err)
		}
	}

	for disease, desc := range b.Descriptions {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO descriptions (disease, description) VALUES (?, ?)
ON CONFLICT(disease) DO UPDATE SET description=excluded.description;
`, disease, desc); err != nil {
			return fmt.Errorf("insert description %q: %w", disease, err)
		}
	}

	tables := map[string]map[string][]string{
		kindPrecaution: b.Precautions,
		kindMedication: b.Medications,
		kindDiet:       b.Diets,
		kindWorkout:    b.Workouts,
	}
	for kind, table := range tables {
		if err := insertAdvice(ctx, tx, kind, table); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func insertAdvice(ctx context.Context, tx *sql.Tx, kind string, table map[string][]string) error {
	for disease, items := range table {
		data, err := json.Marshal(items)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO advice (disease, kind, items) VALUES (?, ?, ?)
ON CONFLICT(disease, kind) DO UPDATE SET items=excluded.items;
`, disease, kind, string(data)); err != nil {
			return fmt.Errorf("insert %s for %q: %w", kind, disease, err)
		}
	}
	return nil
}

// LoadDataset reads the stored dataset. An empty store yields ErrEmptyDataset.
func (s *sqliteStore) LoadDataset(ctx context.Context) (*dataset.Bundle, error) {
	b := dataset.NewBundle()

	rows, err := s.db.QueryContext(ctx, `SELECT disease, symptoms FROM records ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var r vocab.Record
		var symptoms string
		if err := rows.Scan(&r.Disease, &symptoms); err != nil {
			rows.Close()
			return nil, err
		}
		if err := json.Unmarshal([]byte(symptoms), &r.Symptoms); err != nil {
			rows.Close()
			return nil, fmt.Errorf("decode symptoms for %q: %w", r.Disease, err)
		}
		b.Records = append(b.Records, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(b.Records) == 0 {
		return nil, internalerr.ErrEmptyDataset
	}

	if err := s.loadDescriptions(ctx, b.Descriptions); err != nil {
		return nil, err
	}
	if err := s.loadAdvice(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *sqliteStore) loadDescriptions(ctx context.Context, out map[string]string) error {
	rows, err := s.db.QueryContext(ctx, `SELECT disease, description FROM descriptions`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var disease, desc string
		if err := rows.Scan(&disease, &desc); err != nil {
			return err
		}
		out[disease] = desc
	}
	return rows.Err()
}

func (s *sqliteStore) loadAdvice(ctx context.Context, b *dataset.Bundle) error {
	rows, err := s.db.QueryContext(ctx, `SELECT disease, kind, items FROM advice`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var disease, kind, data string
		if err := rows.Scan(&disease, &kind, &data); err != nil {
			return err
		}
		var items []string
		if err := json.Unmarshal([]byte(data), &items); err != nil {
			return fmt.Errorf("decode %s for %q: %w", kind, disease, err)
		}
		switch kind {
		case kindPrecaution:
			b.Precautions[disease] = items
		case kindMedication:
			b.Medications[disease] = items
		case kindDiet:
			b.Diets[disease] = items
		case kindWorkout:
			b.Workouts[disease] = items
		}
	}
	return rows.Err()
}

// AppendHistory records a served recommendation.
func (s *sqliteStore) AppendHistory(ctx context.Context, e store.HistoryEntry) error {
	if e.ID == "" {
		return fmt.Errorf("history entry without id: %w", internalerr.ErrInvalidInput)
	}
	matched, err := json.Marshal(e.Matched)
	if err != nil {
		return err
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO history (id, input, matched, disease, tier, score, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO NOTHING;
`, e.ID, e.Input, string(matched), e.Disease, e.Tier, e.Score, e.CreatedAt.UTC().Format(time.RFC3339Nano))
	return err
}

// History returns the most recent entries, newest first. IDs are ULIDs, so
// ordering by id is ordering by time.
func (s *sqliteStore) History(ctx context.Context, limit int) ([]store.HistoryEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id, input, matched, disease, tier, score, created_at
FROM history
ORDER BY id DESC
LIMIT ?;
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.HistoryEntry
	for rows.Next() {
		var e store.HistoryEntry
		var matched, created string
		if err := rows.Scan(&e.ID, &e.Input, &matched, &e.Disease, &e.Tier, &e.Score, &created); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(matched), &e.Matched); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
			e.CreatedAt = t
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
