// Package store keeps an optional on-disk history of polled samples.
package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/playok/astermon/internal/model"
	_ "modernc.org/sqlite"
)

// Store provides database operations.
type Store struct {
	db     *sql.DB
	dbPath string
}

// New opens (or creates) the SQLite database and runs migrations.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite single-writer
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}
	return &Store{db: db, dbPath: dbPath}, nil
}

// DBPath returns the database file path.
func (s *Store) DBPath() string { return s.dbPath }

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// InsertSamples batch-inserts metric samples.
func (s *Store) InsertSamples(samples []model.MetricSample) error {
	if len(samples) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare("INSERT INTO metric_samples (timestamp, dashboard, metric_name, value, labels) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, m := range samples {
		if _, err := stmt.Exec(m.Timestamp, m.Dashboard, m.MetricName, m.Value, m.Labels); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// QueryMetrics retrieves samples for one or more metric names with optional
// downsampling. step is in seconds; if step > 0, values are averaged per step
// and label.
func (s *Store) QueryMetrics(names []string, from, to int64, step int) ([]model.MetricSample, error) {
	if len(names) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(names))
	args := make([]interface{}, 0, len(names)+2)
	for i, n := range names {
		placeholders[i] = "?"
		args = append(args, n)
	}
	args = append(args, from, to)

	var query string
	if step > 0 {
		query = fmt.Sprintf(`
			SELECT 0, (timestamp / %d * %d) as ts, dashboard, metric_name, AVG(value), labels
			FROM metric_samples
			WHERE metric_name IN (%s) AND timestamp >= ? AND timestamp <= ?
			GROUP BY metric_name, ts, labels
			ORDER BY ts`, step, step, strings.Join(placeholders, ","))
	} else {
		query = fmt.Sprintf(`
			SELECT id, timestamp, dashboard, metric_name, value, labels
			FROM metric_samples
			WHERE metric_name IN (%s) AND timestamp >= ? AND timestamp <= ?
			ORDER BY timestamp, id`, strings.Join(placeholders, ","))
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.MetricSample
	for rows.Next() {
		var m model.MetricSample
		if err := rows.Scan(&m.ID, &m.Timestamp, &m.Dashboard, &m.MetricName, &m.Value, &m.Labels); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

// PurgeOlderThan removes samples older than the given number of hours.
func (s *Store) PurgeOlderThan(hours int) (int64, error) {
	cutoff := time.Now().Unix() - int64(hours*3600)
	res, err := s.db.Exec("DELETE FROM metric_samples WHERE timestamp < ?", cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// GetDistinctMetrics returns all distinct (dashboard, metric_name) pairs.
func (s *Store) GetDistinctMetrics() ([]model.MetricMeta, error) {
	rows, err := s.db.Query("SELECT DISTINCT dashboard, metric_name FROM metric_samples ORDER BY dashboard, metric_name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []model.MetricMeta
	for rows.Next() {
		var m model.MetricMeta
		if err := rows.Scan(&m.Dashboard, &m.MetricName); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}
