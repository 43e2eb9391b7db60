package domain

import (
	"time"
)

// LightReading is one sampled measurement: the raw lux from the sensor
// and the windowed average at the time it was taken.
type LightReading struct {
	ID        int64
	Lux       float64
	Average   float64
	Timestamp time.Time
}

// NewLightReading creates a new reading with validation
func NewLightReading(lux, average float64) (*LightReading, error) {
	if lux < 0 || average < 0 {
		return nil, ErrInvalidLux
	}

	return &LightReading{
		Lux:       lux,
		Average:   average,
		Timestamp: time.Now(),
	}, nil
}

// IsLowLight returns true below 200 lux
func (r *LightReading) IsLowLight() bool {
	return r.Average < 200
}

// IsMediumLight returns true for 200-2500 lux
func (r *LightReading) IsMediumLight() bool {
	return r.Average >= 200 && r.Average < 2500
}

// IsHighLight returns true at or above 2500 lux
func (r *LightReading) IsHighLight() bool {
	return r.Average >= 2500
}

// LightCategory returns human-readable category of the smoothed value
func (r *LightReading) LightCategory() string {
	if r.IsLowLight() {
		return "Low Light"
	} else if r.IsMediumLight() {
		return "Medium Light"
	}
	return "High Light"
}
