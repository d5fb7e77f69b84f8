// Package store persists analysis results in a SQLite database so runs can be
// compared after the fact.
package store

import (
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mdevolde/trace-analyzer/internal/activity"
	"github.com/mdevolde/trace-analyzer/internal/timeutil"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Run modes.
const (
	ModeFile   = "file"
	ModeDaily  = "daily"
	ModeMedian = "median"
)

// Run describes one recorded analysis.
type Run struct {
	ID        string
	Mode      string
	Source    string
	Devices   []string
	CreatedAt time.Time
}

// HourlyCount is one (label, hour) cell of a recorded run.
type HourlyCount struct {
	Label string
	Hour  int
	Count int
}

// Store wraps the results database.
type Store struct {
	*sql.DB
	clock timeutil.Clock
}

// Open opens (creating if needed) the database at path and applies pending
// migrations. A nil clock uses the real clock.
func Open(path string, clock timeutil.Clock) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA busy_timeout = 5000;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if clock == nil {
		clock = timeutil.RealClock{}
	}

	s := &Store{DB: db, clock: clock}
	if err := s.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// MigrateUp runs all pending migrations up to the latest version.
// Returns nil if no migrations were needed (already at latest version).
func (s *Store) MigrateUp() error {
	m, err := s.newMigrate()
	if err != nil {
		return err
	}
	// Not closing m: it would close the shared DB connection.

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// MigrateVersion returns the current migration version and dirty state.
// Returns 0, false, nil if no migrations have been applied yet.
func (s *Store) MigrateVersion() (version uint, dirty bool, err error) {
	m, err := s.newMigrate()
	if err != nil {
		return 0, false, err
	}

	version, dirty, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func (s *Store) newMigrate() (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	driver, err := sqlite.WithInstance(s.DB, &sqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create sqlite driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	m.Log = &migrateLogger{}
	return m, nil
}

// migrateLogger implements migrate.Logger
type migrateLogger struct{}

func (l *migrateLogger) Printf(format string, v ...interface{}) {
	log.Printf("[migrate] "+format, v...)
}

func (l *migrateLogger) Verbose() bool {
	return false
}

// RecordSeries stores a comparative result: for each label, its full
// 24-hour histogram.
func (s *Store) RecordSeries(mode, source string, devices []string, series activity.Series) (string, error) {
	hist := series.Histograms()
	rows := make([]HourlyCount, 0, len(hist)*activity.HoursPerDay)
	for _, label := range series.Labels() {
		for hour, count := range hist[label] {
			rows = append(rows, HourlyCount{Label: label, Hour: hour, Count: count})
		}
	}
	return s.record(mode, source, devices, rows)
}

// RecordMedian stores a median profile under the device's label.
func (s *Store) RecordMedian(source, device string, profile activity.MedianProfile) (string, error) {
	rows := make([]HourlyCount, 0, activity.HoursPerDay)
	for hour, count := range profile {
		rows = append(rows, HourlyCount{Label: device, Hour: hour, Count: count})
	}
	return s.record(ModeMedian, source, []string{device}, rows)
}

func (s *Store) record(mode, source string, devices []string, rows []HourlyCount) (string, error) {
	if devices == nil {
		devices = []string{}
	}
	devicesJSON, err := json.Marshal(devices)
	if err != nil {
		return "", fmt.Errorf("failed to encode devices: %w", err)
	}

	runID := uuid.NewString()
	createdAt := s.clock.Now().UTC().Format(time.RFC3339Nano)

	tx, err := s.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO runs (run_id, mode, source, devices, created_at) VALUES (?, ?, ?, ?, ?)`,
		runID, mode, source, string(devicesJSON), createdAt,
	); err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO hourly_counts (run_id, label, hour, count) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.Exec(runID, r.Label, r.Hour, r.Count); err != nil {
			return "", fmt.Errorf("failed to insert hourly count: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return runID, nil
}

// Runs returns every recorded run, oldest first.
func (s *Store) Runs() ([]Run, error) {
	rows, err := s.Query(`SELECT run_id, mode, source, devices, created_at FROM runs ORDER BY created_at, run_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var devices, createdAt string
		if err := rows.Scan(&r.ID, &r.Mode, &r.Source, &devices, &createdAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(devices), &r.Devices); err != nil {
			return nil, fmt.Errorf("run %s: failed to decode devices: %w", r.ID, err)
		}
		if r.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("run %s: failed to parse created_at: %w", r.ID, err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// HourlyCounts returns the cells of a run ordered by label then hour.
func (s *Store) HourlyCounts(runID string) ([]HourlyCount, error) {
	rows, err := s.Query(`SELECT label, hour, count FROM hourly_counts WHERE run_id = ? ORDER BY label, hour`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HourlyCount
	for rows.Next() {
		var c HourlyCount
		if err := rows.Scan(&c.Label, &c.Hour, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
