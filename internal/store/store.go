// Package store handles SQLite persistence of recorded live stints.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/telehud/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for stint data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS stints (
			id INTEGER PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			source TEXT NOT NULL,
			elapsed REAL NOT NULL,
			samples INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS stint_samples (
			stint_id INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			delta_time REAL NOT NULL,
			drag REAL NOT NULL,
			front_downforce REAL NOT NULL,
			rear_downforce REAL NOT NULL,
			fl_load REAL NOT NULL,
			fl_wear REAL NOT NULL,
			fr_load REAL NOT NULL,
			fr_wear REAL NOT NULL,
			rl_load REAL NOT NULL,
			rl_wear REAL NOT NULL,
			rr_load REAL NOT NULL,
			rr_wear REAL NOT NULL,
			PRIMARY KEY (stint_id, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_stints_started_at ON stints(started_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertStint stores a finished stint and its samples.
func (s *Store) InsertStint(ctx context.Context, stint model.Stint, samples []model.Telemetry) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO stints (started_at, ended_at, source, elapsed, samples)
		 VALUES (?, ?, ?, ?, ?)`,
		stint.StartedAt.UTC().Format(time.RFC3339Nano),
		stint.EndedAt.UTC().Format(time.RFC3339Nano),
		stint.Source,
		stint.Elapsed,
		len(samples),
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(samples) > 0 {
		stmt, perr := tx.PrepareContext(ctx,
			`INSERT INTO stint_samples (stint_id, seq, delta_time, drag, front_downforce, rear_downforce,
				fl_load, fl_wear, fr_load, fr_wear, rl_load, rl_wear, rr_load, rr_wear)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if perr != nil {
			err = perr
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for i, t := range samples {
			w := t.Wheels
			if _, err = stmt.ExecContext(ctx, id, i, t.DeltaTime, t.Drag, t.FrontDownforce, t.RearDownforce,
				w[model.WheelFL].TireLoad, w[model.WheelFL].Wear,
				w[model.WheelFR].TireLoad, w[model.WheelFR].Wear,
				w[model.WheelRL].TireLoad, w[model.WheelRL].Wear,
				w[model.WheelRR].TireLoad, w[model.WheelRR].Wear,
			); err != nil {
				return 0, err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ListStints returns stint aggregates filtered by cfg, oldest first.
func (s *Store) ListStints(ctx context.Context, cfg model.SessionsConfig) ([]model.StintAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Source != "" {
		clauses = append(clauses, "source = ?")
		args = append(args, cfg.Source)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "started_at >= ?")
		args = append(args, cfg.Since.UTC().Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, started_at, ended_at, source, samples, elapsed
		FROM stints
		WHERE %s
		ORDER BY started_at ASC, id ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var stints []model.StintAggregate
	for rows.Next() {
		var agg model.StintAggregate
		var startedAt, endedAt string
		if err := rows.Scan(&agg.StintID, &startedAt, &endedAt, &agg.Source, &agg.Samples, &agg.Elapsed); err != nil {
			return nil, err
		}
		if agg.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, err
		}
		if agg.EndedAt, err = time.Parse(time.RFC3339Nano, endedAt); err != nil {
			return nil, err
		}
		stints = append(stints, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if cfg.Last > 0 && len(stints) > cfg.Last {
		stints = stints[len(stints)-cfg.Last:]
	}
	return stints, nil
}

// LoadSamples returns the samples of a stint in recording order.
func (s *Store) LoadSamples(ctx context.Context, stintID int64) ([]model.Telemetry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT delta_time, drag, front_downforce, rear_downforce,
			fl_load, fl_wear, fr_load, fr_wear, rl_load, rl_wear, rr_load, rr_wear
		FROM stint_samples
		WHERE stint_id = ?
		ORDER BY seq ASC`, stintID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var samples []model.Telemetry
	for rows.Next() {
		var t model.Telemetry
		w := &t.Wheels
		if err := rows.Scan(&t.DeltaTime, &t.Drag, &t.FrontDownforce, &t.RearDownforce,
			&w[model.WheelFL].TireLoad, &w[model.WheelFL].Wear,
			&w[model.WheelFR].TireLoad, &w[model.WheelFR].Wear,
			&w[model.WheelRL].TireLoad, &w[model.WheelRL].Wear,
			&w[model.WheelRR].TireLoad, &w[model.WheelRR].Wear,
		); err != nil {
			return nil, err
		}
		samples = append(samples, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return samples, nil
}
