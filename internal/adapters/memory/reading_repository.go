package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/quentinrf/ambient-light/internal/domain"
)

// ReadingRepository implements domain.ReadingRepository with in-memory storage.
// It backs the gRPC history when no database path is configured.
type ReadingRepository struct {
	mu       sync.RWMutex
	readings map[int64]*domain.LightReading
	nextID   int64
}

// NewReadingRepository creates an empty in-memory repository
func NewReadingRepository() *ReadingRepository {
	return &ReadingRepository{
		readings: make(map[int64]*domain.LightReading),
		nextID:   1,
	}
}

// SaveReading stores a copy of the reading in memory
func (r *ReadingRepository) SaveReading(ctx context.Context, reading *domain.LightReading) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if reading.ID == 0 {
		reading.ID = r.nextID
		r.nextID++
	}

	stored := *reading
	r.readings[reading.ID] = &stored
	return nil
}

// GetReading retrieves a reading by ID
func (r *ReadingRepository) GetReading(ctx context.Context, id int64) (*domain.LightReading, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reading, exists := r.readings[id]
	if !exists {
		return nil, domain.ErrReadingNotFound
	}

	out := *reading
	return &out, nil
}

// GetReadingsInRange returns all readings in [start, end), oldest first
func (r *ReadingRepository) GetReadingsInRange(ctx context.Context, start, end time.Time) ([]*domain.LightReading, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var results []*domain.LightReading
	for _, reading := range r.readings {
		if !reading.Timestamp.Before(start) && reading.Timestamp.Before(end) {
			out := *reading
			results = append(results, &out)
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return newer(results[j], results[i])
	})

	return results, nil
}

// GetLatestReading returns the most recent reading
func (r *ReadingRepository) GetLatestReading(ctx context.Context) (*domain.LightReading, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.readings) == 0 {
		return nil, domain.ErrReadingNotFound
	}

	var latest *domain.LightReading
	for _, reading := range r.readings {
		if latest == nil || newer(reading, latest) {
			latest = reading
		}
	}

	out := *latest
	return &out, nil
}

// DeleteOldReadings removes readings older than specified duration
func (r *ReadingRepository) DeleteOldReadings(ctx context.Context, olderThan time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-olderThan)

	for id, reading := range r.readings {
		if reading.Timestamp.Before(cutoff) {
			delete(r.readings, id)
		}
	}

	return nil
}

// newer orders by timestamp, then by insertion for equal timestamps
func newer(a, b *domain.LightReading) bool {
	if a.Timestamp.Equal(b.Timestamp) {
		return a.ID > b.ID
	}
	return a.Timestamp.After(b.Timestamp)
}
