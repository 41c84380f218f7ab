// Package sqlite persists simulation output. Each simulation run gets a row
// in runs keyed by a generated id, with its measurements and trajectory
// samples written in batches as the engine's callback flushes them.
package sqlite

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/bhjolly/helios/internal/monitoring"
	"github.com/bhjolly/helios/internal/scan"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps the output database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the database at path and applies any
// pending schema migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database %q: %w", path, err)
	}
	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, path: path}, nil
}

func migrateUp(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load embedded migrations: %w", err)
	}
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite migrate driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	m.Log = &migrateLogger{}
	// Note: m is not closed here because that would close the underlying DB
	// connection.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// migrateLogger implements migrate.Logger on the package diagnostic logger.
type migrateLogger struct{}

func (l *migrateLogger) Printf(format string, v ...interface{}) {
	monitoring.Logf("Store: [migrate] "+format, v...)
}

func (l *migrateLogger) Verbose() bool { return false }

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// BeginRun registers a new simulation run and returns its id.
func (s *Store) BeginRun(surveyName string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		"INSERT INTO runs (id, survey_name) VALUES (?, ?)",
		id, surveyName,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// WriteMeasurements appends a batch of measurements for the given run in one
// transaction.
func (s *Store) WriteMeasurements(runID string, ms []scan.Measurement) error {
	if len(ms) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin measurements batch: %w", err)
	}
	stmt, err := tx.Prepare(`
		INSERT INTO measurements
			(run_id, leg_index, gps_time_ns, x, y, z, range_m, incidence_rad, emitted_power_w, received_power_w)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare measurements insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range ms {
		if _, err := stmt.Exec(
			runID, m.LegIndex, m.GpsTimeNs,
			m.Hit.X, m.Hit.Y, m.Hit.Z,
			m.RangeM, m.IncidenceRad, m.EmittedPowerW, m.ReceivedPowerW,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert measurement: %w", err)
		}
	}
	return tx.Commit()
}

// WriteTrajectories appends a batch of trajectory samples for the given run
// in one transaction.
func (s *Store) WriteTrajectories(runID string, ts []scan.TrajectorySample) error {
	if len(ts) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin trajectories batch: %w", err)
	}
	stmt, err := tx.Prepare(`
		INSERT INTO trajectories (run_id, leg_index, gps_time_ns, x, y, z)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare trajectories insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range ts {
		if _, err := stmt.Exec(
			runID, p.LegIndex, p.GpsTimeNs,
			p.Position.X, p.Position.Y, p.Position.Z,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert trajectory sample: %w", err)
		}
	}
	return tx.Commit()
}

// WriteCycle persists one callback flush: measurements and trajectory
// samples together.
func (s *Store) WriteCycle(runID string, ms []scan.Measurement, ts []scan.TrajectorySample) error {
	if err := s.WriteMeasurements(runID, ms); err != nil {
		return err
	}
	return s.WriteTrajectories(runID, ts)
}

// RunInfo summarizes one stored run.
type RunInfo struct {
	ID           string
	SurveyName   string
	Measurements int
	Trajectories int
}

// Runs lists the stored runs, oldest first.
func (s *Store) Runs() ([]RunInfo, error) {
	rows, err := s.db.Query(`
		SELECT r.id, r.survey_name,
			(SELECT COUNT(*) FROM measurements m WHERE m.run_id = r.id),
			(SELECT COUNT(*) FROM trajectories t WHERE t.run_id = r.id)
		FROM runs r ORDER BY r.created_at, r.id
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunInfo
	for rows.Next() {
		var info RunInfo
		if err := rows.Scan(&info.ID, &info.SurveyName, &info.Measurements, &info.Trajectories); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		runs = append(runs, info)
	}
	return runs, rows.Err()
}

// ReceivedPowers returns the received power of every measurement in a run,
// in insertion order.
func (s *Store) ReceivedPowers(runID string) ([]float64, error) {
	rows, err := s.db.Query(
		"SELECT received_power_w FROM measurements WHERE run_id = ? ORDER BY id",
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query received powers: %w", err)
	}
	defer rows.Close()

	var powers []float64
	for rows.Next() {
		var p float64
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan received power: %w", err)
		}
		powers = append(powers, p)
	}
	return powers, rows.Err()
}

// Measurements returns the measurements of a run in insertion order.
func (s *Store) Measurements(runID string) ([]scan.Measurement, error) {
	rows, err := s.db.Query(`
		SELECT leg_index, gps_time_ns, x, y, z, range_m, incidence_rad, emitted_power_w, received_power_w
		FROM measurements WHERE run_id = ? ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query measurements: %w", err)
	}
	defer rows.Close()

	var ms []scan.Measurement
	for rows.Next() {
		var m scan.Measurement
		if err := rows.Scan(
			&m.LegIndex, &m.GpsTimeNs,
			&m.Hit.X, &m.Hit.Y, &m.Hit.Z,
			&m.RangeM, &m.IncidenceRad, &m.EmittedPowerW, &m.ReceivedPowerW,
		); err != nil {
			return nil, fmt.Errorf("scan measurement row: %w", err)
		}
		ms = append(ms, m)
	}
	return ms, rows.Err()
}
