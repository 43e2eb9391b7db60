package ports

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/quentinrf/ambient-light/internal/adapters/memory"
	"github.com/quentinrf/ambient-light/internal/domain"
)

type step struct {
	lux float64
	ok  bool
}

// scriptedSensor replays steps, then calls onDone once exhausted
type scriptedSensor struct {
	steps  []step
	reads  int
	onDone func()
	closed int
}

func (s *scriptedSensor) Read() (float64, bool) {
	if s.reads >= len(s.steps) {
		return 0, false
	}
	st := s.steps[s.reads]
	s.reads++
	if s.reads == len(s.steps) && s.onDone != nil {
		s.onDone()
	}
	return st.lux, st.ok
}

func (s *scriptedSensor) Close() error {
	s.closed++
	return nil
}

type recordingPublisher struct {
	got []*domain.LightReading
	err error
}

func (p *recordingPublisher) Publish(_ context.Context, r *domain.LightReading) error {
	p.got = append(p.got, r)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func newTestSampler(t *testing.T, sensor LightSensor, capacity int, opts ...SamplerOption) (*Sampler, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	window, err := domain.NewWindowAverager(capacity)
	if err != nil {
		t.Fatalf("NewWindowAverager: %v", err)
	}
	var out, diag bytes.Buffer
	opts = append([]SamplerOption{
		WithOutput(&out),
		WithLogger(zerolog.New(&diag).Level(zerolog.InfoLevel)),
	}, opts...)
	return NewSampler(sensor, window, 10*time.Millisecond, opts...), &out, &diag
}

func countLines(s string) int {
	return strings.Count(s, "\n")
}

func TestRunOnce_PrintsAverage(t *testing.T) {
	sensor := &scriptedSensor{steps: []step{{500.0, true}}}
	s, out, diag := newTestSampler(t, sensor, domain.DefaultWindowSize, WithBare(true))

	if err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}
	if got := out.String(); got != "500.0\n" {
		t.Errorf("output = %q, want %q", got, "500.0\n")
	}
	if diag.Len() != 0 {
		t.Errorf("unexpected diagnostics: %q", diag.String())
	}
}

func TestRunOnce_NormalModePrintsAverageOnly(t *testing.T) {
	sensor := &scriptedSensor{steps: []step{{12.34, true}}}
	s, out, _ := newTestSampler(t, sensor, 3)

	if err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}
	if got := out.String(); got != "12.3\n" {
		t.Errorf("output = %q, want %q", got, "12.3\n")
	}
}

func TestRunOnce_MissIsAnError(t *testing.T) {
	sensor := &scriptedSensor{steps: []step{{0, false}}}
	s, out, diag := newTestSampler(t, sensor, 3)

	err := s.RunOnce(context.Background())
	if !errors.Is(err, domain.ErrSensorUnavailable) {
		t.Fatalf("RunOnce err = %v, want ErrSensorUnavailable", err)
	}
	if out.Len() != 0 {
		t.Errorf("expected no output, got %q", out.String())
	}
	if countLines(diag.String()) != 1 {
		t.Errorf("expected one diagnostic line, got %q", diag.String())
	}
}

func TestRun_TransientMissKeepsLooping(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sensor := &scriptedSensor{
		steps:  []step{{100, true}, {0, false}, {200, true}},
		onDone: cancel,
	}
	s, out, diag := newTestSampler(t, sensor, domain.DefaultWindowSize)

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("sampler did not stop after cancellation")
	}

	want := "100.0 lux (avg: 100.0)\n200.0 lux (avg: 150.0)\n"
	if got := out.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
	if n := countLines(diag.String()); n != 1 {
		t.Errorf("expected 1 diagnostic line, got %d: %q", n, diag.String())
	}
	if sensor.reads != 3 {
		t.Errorf("expected 3 reads, got %d", sensor.reads)
	}
}

func TestRun_BareOutput(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sensor := &scriptedSensor{
		steps:  []step{{10, true}, {20, true}, {30, true}, {40, true}},
		onDone: cancel,
	}
	s, out, _ := newTestSampler(t, sensor, 3, WithBare(true))

	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	want := "10.0\n15.0\n20.0\n30.0\n"
	if got := out.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestRun_RecordsAndPublishes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo := memory.NewReadingRepository()
	pub := &recordingPublisher{err: errors.New("broker down")}
	ts := time.Date(2025, 9, 19, 14, 41, 54, 0, time.UTC)

	sensor := &scriptedSensor{
		steps:  []step{{300, true}, {0, false}, {600, true}},
		onDone: cancel,
	}
	s, _, diag := newTestSampler(t, sensor, 5,
		WithRepository(repo, DefaultRetention),
		WithPublishers(pub),
		WithClock(func() time.Time { return ts }),
	)

	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	latest, err := repo.GetLatestReading(context.Background())
	if err != nil {
		t.Fatalf("GetLatestReading failed: %v", err)
	}
	if latest.Lux != 600 || latest.Average != 450 {
		t.Errorf("latest = %+v, want lux 600 avg 450", latest)
	}
	if !latest.Timestamp.Equal(ts) {
		t.Errorf("timestamp = %v, want %v", latest.Timestamp, ts)
	}

	if len(pub.got) != 2 {
		t.Fatalf("expected 2 published readings, got %d", len(pub.got))
	}
	// one miss plus two publish failures
	if n := countLines(diag.String()); n != 3 {
		t.Errorf("expected 3 diagnostic lines, got %d: %q", n, diag.String())
	}
}

func TestRunOnce_DoesNotCloseSensor(t *testing.T) {
	sensor := &scriptedSensor{steps: []step{{1, true}}}
	s, _, _ := newTestSampler(t, sensor, 1)

	_ = s.RunOnce(context.Background())
	if sensor.closed != 0 {
		t.Errorf("sampler must leave sensor lifetime to its owner, closed %d times", sensor.closed)
	}
}
