package mock

import (
	"math/rand"
	"sync"
	"time"
)

// FakeSensor simulates an ambient light sensor for development.
// It implements ports.LightSensor.
type FakeSensor struct {
	baseValue float64
	variation float64
	dropout   float64

	mu  sync.Mutex
	rng *rand.Rand
}

// Option tunes a FakeSensor
type Option func(*FakeSensor)

// WithSeed makes the sequence of readings reproducible
func WithSeed(seed int64) Option {
	return func(s *FakeSensor) { s.rng = rand.New(rand.NewSource(seed)) }
}

// WithDropout makes Read report no value with probability p
func WithDropout(p float64) Option {
	return func(s *FakeSensor) { s.dropout = p }
}

// NewFakeSensor creates a sensor that returns realistic values
// baseValue: average lux (e.g., 500 for indoor lighting)
// variation: +/- range (e.g., 100 means 400-600)
func NewFakeSensor(baseValue, variation float64, opts ...Option) *FakeSensor {
	s := &FakeSensor{
		baseValue: baseValue,
		variation: variation,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Read returns a simulated light reading
func (s *FakeSensor) Read() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dropout > 0 && s.rng.Float64() < s.dropout {
		return 0, false
	}

	lux := s.baseValue + (s.rng.Float64()-0.5)*2*s.variation
	if lux < 0 {
		lux = 0
	}
	return lux, true
}

// Close is a no-op for fake sensor
func (s *FakeSensor) Close() error {
	return nil
}
