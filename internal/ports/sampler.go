package ports

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quentinrf/ambient-light/internal/domain"
)

const (
	// DefaultInterval is the polling period in listen mode
	DefaultInterval = time.Second

	// DefaultRetention is how long recorded readings are kept
	DefaultRetention = 30 * 24 * time.Hour

	cleanupInterval = 24 * time.Hour
)

// Sampler reads the sensor, smooths readings through the window and
// prints them. It owns the window; ticks never overlap.
type Sampler struct {
	sensor   LightSensor
	window   *domain.WindowAverager
	interval time.Duration

	bare   bool
	out    io.Writer
	logger zerolog.Logger
	now    func() time.Time

	repo       domain.ReadingRepository
	retention  time.Duration
	publishers []Publisher
}

// SamplerOption configures optional Sampler behaviour
type SamplerOption func(*Sampler)

// WithBare prints only the averaged value
func WithBare(bare bool) SamplerOption {
	return func(s *Sampler) { s.bare = bare }
}

// WithOutput redirects reading lines (stdout by default)
func WithOutput(w io.Writer) SamplerOption {
	return func(s *Sampler) { s.out = w }
}

// WithLogger sets the diagnostic logger (global logger by default)
func WithLogger(l zerolog.Logger) SamplerOption {
	return func(s *Sampler) { s.logger = l }
}

// WithClock overrides the timestamp source
func WithClock(now func() time.Time) SamplerOption {
	return func(s *Sampler) { s.now = now }
}

// WithRepository records every reading and prunes those older than retention.
// A zero retention disables pruning.
func WithRepository(repo domain.ReadingRepository, retention time.Duration) SamplerOption {
	return func(s *Sampler) {
		s.repo = repo
		s.retention = retention
	}
}

// WithPublishers forwards every reading to pubs
func WithPublishers(pubs ...Publisher) SamplerOption {
	return func(s *Sampler) { s.publishers = append(s.publishers, pubs...) }
}

// NewSampler creates a sampler for one session
func NewSampler(sensor LightSensor, window *domain.WindowAverager, interval time.Duration, opts ...SamplerOption) *Sampler {
	s := &Sampler{
		sensor:   sensor,
		window:   window,
		interval: interval,
		out:      os.Stdout,
		logger:   log.Logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RunOnce reads the sensor a single time and prints the average.
// A missed read is reported and returned as domain.ErrSensorUnavailable.
func (s *Sampler) RunOnce(ctx context.Context) error {
	reading, ok := s.sample(ctx)
	if !ok {
		return domain.ErrSensorUnavailable
	}
	_, err := fmt.Fprintf(s.out, "%.1f\n", reading.Average)
	return err
}

// Run samples every interval until ctx is cancelled.
// Missed reads are logged and the loop carries on.
func (s *Sampler) Run(ctx context.Context) error {
	s.logger.Debug().
		Dur("interval", s.interval).
		Int("window", s.window.Capacity()).
		Msg("starting sampler")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// nil channel blocks forever when there is nothing to prune
	var cleanup <-chan time.Time
	if s.repo != nil && s.retention > 0 {
		cleanupTicker := time.NewTicker(cleanupInterval)
		defer cleanupTicker.Stop()
		cleanup = cleanupTicker.C
	}

	for {
		select {
		case <-ticker.C:
			if ctx.Err() != nil {
				return nil
			}
			s.tick(ctx)

		case <-cleanup:
			s.prune(ctx)

		case <-ctx.Done():
			s.logger.Debug().Msg("stopping sampler")
			return nil
		}
	}
}

func (s *Sampler) tick(ctx context.Context) {
	reading, ok := s.sample(ctx)
	if !ok {
		return
	}
	if _, err := io.WriteString(s.out, s.format(reading)); err != nil {
		s.logger.Error().Err(err).Msg("failed to write reading")
	}
}

func (s *Sampler) format(r *domain.LightReading) string {
	if s.bare {
		return fmt.Sprintf("%.1f\n", r.Average)
	}
	return fmt.Sprintf("%.1f lux (avg: %.1f)\n", r.Lux, r.Average)
}

// sample reads the sensor, updates the window and hands the reading to the sinks
func (s *Sampler) sample(ctx context.Context) (*domain.LightReading, bool) {
	lux, ok := s.sensor.Read()
	avg, ok := s.window.Update(lux, ok)
	if !ok {
		s.logger.Error().Msg(domain.ErrSensorUnavailable.Error())
		return nil, false
	}

	reading := &domain.LightReading{
		Lux:       lux,
		Average:   avg,
		Timestamp: s.now(),
	}
	s.record(ctx, reading)
	return reading, true
}

func (s *Sampler) record(ctx context.Context, reading *domain.LightReading) {
	if s.repo != nil {
		if err := s.repo.SaveReading(ctx, reading); err != nil {
			s.logger.Warn().Err(err).Msg("failed to save reading")
		}
	}
	for _, p := range s.publishers {
		if err := p.Publish(ctx, reading); err != nil {
			s.logger.Warn().Err(err).Msg("failed to publish reading")
		}
	}

	s.logger.Debug().
		Float64("lux", reading.Lux).
		Float64("average", reading.Average).
		Str("category", reading.LightCategory()).
		Msg("sampled light reading")
}

func (s *Sampler) prune(ctx context.Context) {
	if err := s.repo.DeleteOldReadings(ctx, s.retention); err != nil {
		s.logger.Error().Err(err).Msg("failed to delete old readings")
		return
	}
	s.logger.Info().Dur("retention", s.retention).Msg("deleted old readings")
}
