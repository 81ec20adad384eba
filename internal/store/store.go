// Package store exports built title records to a SQLite database so the
// feeds can be queried offline.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"site-data-builder/internal/patchlog"
	"site-data-builder/internal/titles"
)

// Store wraps the export database.
type Store struct {
	db *sql.DB
}

// Open creates or opens the database at path and ensures the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("store: mkdir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) init() error {
	schema := `
		CREATE TABLE IF NOT EXISTS titles (
			kind TEXT NOT NULL,
			form_id TEXT NOT NULL,
			edid TEXT NOT NULL,
			title TEXT NOT NULL,
			title_male TEXT NOT NULL DEFAULT '',
			title_female TEXT NOT NULL DEFAULT '',
			is_prefix INTEGER NOT NULL,
			is_suffix INTEGER NOT NULL,
			affix_type TEXT NOT NULL,
			conditions TEXT NOT NULL,
			how_to_obtain TEXT NOT NULL,
			drop_rate TEXT NOT NULL,
			tradeable INTEGER NOT NULL,
			unlock_type TEXT NOT NULL,
			season_number INTEGER,
			cut_content INTEGER NOT NULL,
			sort_order INTEGER NOT NULL,
			PRIMARY KEY (kind, form_id)
		);

		CREATE INDEX IF NOT EXISTS idx_titles_unlock ON titles(kind, unlock_type);

		CREATE TABLE IF NOT EXISTS builds (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			generated_at TEXT NOT NULL,
			kind TEXT NOT NULL,
			prev_count INTEGER NOT NULL,
			curr_count INTEGER NOT NULL,
			added INTEGER NOT NULL,
			removed INTEGER NOT NULL,
			changed INTEGER NOT NULL
		);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("store: create schema: %w", err)
	}
	return nil
}

// ReplaceTitles swaps every stored record of kind for recs, keeping their
// order, and logs the build summary. It runs in one transaction.
func (s *Store) ReplaceTitles(ctx context.Context, kind titles.Kind, recs []titles.Record, sum patchlog.Summary) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM titles WHERE kind = ?`, string(kind)); err != nil {
		return fmt.Errorf("store: clear %s titles: %w", kind, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO titles (kind, form_id, edid, title, title_male, title_female,
			is_prefix, is_suffix, affix_type, conditions, how_to_obtain, drop_rate,
			tradeable, unlock_type, season_number, cut_content, sort_order)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("store: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range recs {
		conds, err := json.Marshal(r.Conditions)
		if err != nil {
			return fmt.Errorf("store: encode conditions of %s: %w", r.FormID, err)
		}
		var season sql.NullInt64
		if r.SeasonNumber != nil {
			season = sql.NullInt64{Int64: int64(*r.SeasonNumber), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			string(kind), r.FormID, r.EDID, r.Title, r.TitleMale, r.TitleFemale,
			r.IsPrefix, r.IsSuffix, r.AffixType, string(conds), r.HowToObtain, r.DropRate,
			r.Tradeable, r.UnlockType, season, r.CutContent, i,
		); err != nil {
			return fmt.Errorf("store: insert %s %s: %w", kind, r.FormID, err)
		}
	}

	c := sum.Counts
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO builds (generated_at, kind, prev_count, curr_count, added, removed, changed)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, sum.GeneratedAt, string(kind), c.Prev, c.Curr, c.Added, c.Removed, c.Changed); err != nil {
		return fmt.Errorf("store: log %s build: %w", kind, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

// Titles returns the stored records of kind in build order.
func (s *Store) Titles(ctx context.Context, kind titles.Kind) ([]titles.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT form_id, edid, title, title_male, title_female, is_prefix, is_suffix,
			affix_type, conditions, how_to_obtain, drop_rate, tradeable, unlock_type,
			season_number, cut_content
		FROM titles WHERE kind = ? ORDER BY sort_order
	`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("store: query %s titles: %w", kind, err)
	}
	defer rows.Close()

	var out []titles.Record
	for rows.Next() {
		var (
			r      titles.Record
			conds  string
			season sql.NullInt64
		)
		if err := rows.Scan(&r.FormID, &r.EDID, &r.Title, &r.TitleMale, &r.TitleFemale,
			&r.IsPrefix, &r.IsSuffix, &r.AffixType, &conds, &r.HowToObtain, &r.DropRate,
			&r.Tradeable, &r.UnlockType, &season, &r.CutContent); err != nil {
			return nil, fmt.Errorf("store: scan %s title: %w", kind, err)
		}
		if err := json.Unmarshal([]byte(conds), &r.Conditions); err != nil {
			return nil, fmt.Errorf("store: decode conditions of %s: %w", r.FormID, err)
		}
		r.CondCount = len(r.Conditions)
		if season.Valid {
			n := int(season.Int64)
			r.SeasonNumber = &n
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// BuildCount returns how many builds of kind were logged.
func (s *Store) BuildCount(ctx context.Context, kind titles.Kind) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM builds WHERE kind = ?`, string(kind)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("store: count %s builds: %w", kind, err)
	}
	return n, nil
}
