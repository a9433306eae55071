/*
Package sqlite provides a SQLite-backed historical record store.

SCHEMA:

	history(date TEXT PRIMARY KEY, calls, agents, aht, talk_time, sl, updated_at)

Dates are stored as canonical YYYY-MM-DD keys. Metric columns are nullable:
a NULL column was never supplied, and reads as zero.

MERGE SEMANTICS:

	Put upserts with COALESCE so that only the fields present in the patch
	overwrite stored values.

USAGE:

	st, err := sqlite.New("./wfm.db")
	if err != nil {
	    return err
	}
	defer st.Close()
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"wfm-planner/models"
)

// Store implements store.Store on SQLite.
type Store struct {
	db *sql.DB
}

// New opens (and migrates) the database at dbPath.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps ":memory:" databases alive and serializes writers.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS history (
		date       TEXT PRIMARY KEY,
		calls      INTEGER,
		agents     INTEGER,
		aht        REAL,
		talk_time  REAL,
		sl         REAL,
		updated_at TEXT NOT NULL
	);`
	_, err := s.db.Exec(schema)
	return err
}

const selectColumns = `date, calls, agents, aht, talk_time, sl`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (models.HistoricalRecord, error) {
	var (
		key           string
		calls, agents sql.NullInt64
		aht, talk, sl sql.NullFloat64
	)
	if err := row.Scan(&key, &calls, &agents, &aht, &talk, &sl); err != nil {
		return models.HistoricalRecord{}, err
	}
	date, err := models.ParseDateKey(key)
	if err != nil {
		return models.HistoricalRecord{}, err
	}
	return models.HistoricalRecord{
		Date:     date,
		Calls:    int(calls.Int64),
		Agents:   int(agents.Int64),
		AHT:      aht.Float64,
		TalkTime: talk.Float64,
		SL:       sl.Float64,
	}, nil
}

// Get returns the record for date.
func (s *Store) Get(ctx context.Context, date time.Time) (models.HistoricalRecord, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM history WHERE date = ?`, models.DateKey(date))
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.HistoricalRecord{}, false, nil
	}
	if err != nil {
		return models.HistoricalRecord{}, false, fmt.Errorf("failed to get record: %w", err)
	}
	return rec, true, nil
}

// Dates returns all stored dates in ascending order.
func (s *Store) Dates(ctx context.Context) ([]time.Time, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT date FROM history ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("failed to list dates: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		d, err := models.ParseDateKey(key)
		if err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// All returns every record ordered by date.
func (s *Store) All(ctx context.Context) ([]models.HistoricalRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM history ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var recs []models.HistoricalRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// Put merges patch into the stored record for date.
func (s *Store) Put(ctx context.Context, date time.Time, patch models.RecordPatch) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO history (date, calls, agents, aht, talk_time, sl, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			calls      = COALESCE(excluded.calls, history.calls),
			agents     = COALESCE(excluded.agents, history.agents),
			aht        = COALESCE(excluded.aht, history.aht),
			talk_time  = COALESCE(excluded.talk_time, history.talk_time),
			sl         = COALESCE(excluded.sl, history.sl),
			updated_at = excluded.updated_at`,
		models.DateKey(date),
		nullInt(patch.Calls),
		nullInt(patch.Agents),
		nullFloat(patch.AHT),
		nullFloat(patch.TalkTime),
		nullFloat(patch.SL),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to put record: %w", err)
	}
	return nil
}

// Delete removes the record for date.
func (s *Store) Delete(ctx context.Context, date time.Time) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM history WHERE date = ?`, models.DateKey(date)); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}

// Clear removes every record.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM history`); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
