// Package sqlite implements the durable reading store on a local
// SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/nzmdn/trackship/internal/domain"
)

const schema = `CREATE TABLE IF NOT EXISTS readings (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	lat REAL, lon REAL, altitude REAL, accuracy REAL,
	timestamp TEXT, speed REAL, bearing REAL, battery REAL
)`

// Store implements ports.ReadingStore using a SQLite database file.
//
// Every operation opens and closes its own database handle. Holding no
// pooled connection across calls trades throughput for crash-safety
// simplicity; the store is touched at most twice per pipeline cycle.
type Store struct {
	path string
}

// NewStore creates a Store backed by the database file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Init creates the readings table if absent. Idempotent; safe to call
// on every process start.
func (s *Store) Init(ctx context.Context) error {
	db, err := s.open()
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("%w: init: %v", domain.ErrStorage, err)
	}
	return nil
}

// Append persists the readings in order. The auto-increment row id is
// storage bookkeeping only and never surfaces to callers.
func (s *Store) Append(ctx context.Context, readings []domain.Reading) error {
	if len(readings) == 0 {
		return nil
	}

	db, err := s.open()
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin append: %v", domain.ErrStorage, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO readings (lat, lon, altitude, accuracy, timestamp, speed, bearing, battery)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("%w: prepare append: %v", domain.ErrStorage, err)
	}
	defer stmt.Close()

	for _, r := range readings {
		if _, err := stmt.ExecContext(ctx,
			r.Lat, r.Lon, r.Altitude, r.Accuracy, r.Timestamp, r.Speed,
			nullable(r.Bearing), nullable(r.Battery),
		); err != nil {
			return fmt.Errorf("%w: append: %v", domain.ErrStorage, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit append: %v", domain.ErrStorage, err)
	}
	return nil
}

// FetchAll returns every persisted reading, oldest first by insertion
// order. An empty store yields an empty slice and no error.
func (s *Store) FetchAll(ctx context.Context) ([]domain.Reading, error) {
	db, err := s.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx,
		`SELECT lat, lon, altitude, accuracy, timestamp, speed, bearing, battery
		 FROM readings ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch: %v", domain.ErrStorage, err)
	}
	defer rows.Close()

	var readings []domain.Reading
	for rows.Next() {
		var r domain.Reading
		var bearing, battery sql.NullFloat64
		if err := rows.Scan(&r.Lat, &r.Lon, &r.Altitude, &r.Accuracy,
			&r.Timestamp, &r.Speed, &bearing, &battery); err != nil {
			return nil, fmt.Errorf("%w: scan: %v", domain.ErrStorage, err)
		}
		if bearing.Valid {
			v := bearing.Float64
			r.Bearing = &v
		}
		if battery.Valid {
			v := battery.Float64
			r.Battery = &v
		}
		readings = append(readings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: fetch: %v", domain.ErrStorage, err)
	}
	return readings, nil
}

// ClearAll deletes every persisted reading unconditionally. Clearing an
// already-empty store is a no-op.
func (s *Store) ClearAll(ctx context.Context) error {
	db, err := s.open()
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, `DELETE FROM readings`); err != nil {
		return fmt.Errorf("%w: clear: %v", domain.ErrStorage, err)
	}
	return nil
}

func (s *Store) open() (*sql.DB, error) {
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", domain.ErrStorage, s.path, err)
	}
	return db, nil
}

func nullable(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
