package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/quentinrf/ambient-light/internal/domain"
)

// ReadingRepository implements domain.ReadingRepository with SQLite.
// Timestamps are stored as unix nanoseconds.
type ReadingRepository struct {
	db *sql.DB
}

// NewReadingRepository creates a SQLite-backed repository
func NewReadingRepository(dbPath string) (*ReadingRepository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS lux_readings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		lux REAL NOT NULL,
		average REAL NOT NULL,
		timestamp INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_lux_timestamp ON lux_readings(timestamp);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &ReadingRepository{db: db}, nil
}

// SaveReading stores a reading in SQLite
func (r *ReadingRepository) SaveReading(ctx context.Context, reading *domain.LightReading) error {
	query := `INSERT INTO lux_readings (lux, average, timestamp) VALUES (?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query, reading.Lux, reading.Average, reading.Timestamp.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to insert reading: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get insert id: %w", err)
	}

	reading.ID = id
	return nil
}

// GetReading retrieves a reading by ID
func (r *ReadingRepository) GetReading(ctx context.Context, id int64) (*domain.LightReading, error) {
	query := `SELECT id, lux, average, timestamp FROM lux_readings WHERE id = ?`

	reading, err := scanReading(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrReadingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query reading: %w", err)
	}
	return reading, nil
}

// GetReadingsInRange returns all readings in [start, end), oldest first
func (r *ReadingRepository) GetReadingsInRange(ctx context.Context, start, end time.Time) ([]*domain.LightReading, error) {
	query := `
		SELECT id, lux, average, timestamp
		FROM lux_readings
		WHERE timestamp >= ? AND timestamp < ?
		ORDER BY timestamp ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, start.UnixNano(), end.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("failed to query readings: %w", err)
	}
	defer rows.Close()

	var readings []*domain.LightReading
	for rows.Next() {
		reading, err := scanReading(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reading: %w", err)
		}
		readings = append(readings, reading)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate readings: %w", err)
	}

	return readings, nil
}

// GetLatestReading returns the most recent reading
func (r *ReadingRepository) GetLatestReading(ctx context.Context) (*domain.LightReading, error) {
	query := `
		SELECT id, lux, average, timestamp
		FROM lux_readings
		ORDER BY timestamp DESC, id DESC
		LIMIT 1
	`

	reading, err := scanReading(r.db.QueryRowContext(ctx, query))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrReadingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest reading: %w", err)
	}
	return reading, nil
}

// DeleteOldReadings removes readings older than specified duration
func (r *ReadingRepository) DeleteOldReadings(ctx context.Context, olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan)
	query := `DELETE FROM lux_readings WHERE timestamp < ?`

	if _, err := r.db.ExecContext(ctx, query, cutoff.UnixNano()); err != nil {
		return fmt.Errorf("failed to delete old readings: %w", err)
	}

	return nil
}

// Close closes the database connection
func (r *ReadingRepository) Close() error {
	return r.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReading(row scanner) (*domain.LightReading, error) {
	var reading domain.LightReading
	var nanos int64

	if err := row.Scan(&reading.ID, &reading.Lux, &reading.Average, &nanos); err != nil {
		return nil, err
	}
	reading.Timestamp = time.Unix(0, nanos)
	return &reading, nil
}
