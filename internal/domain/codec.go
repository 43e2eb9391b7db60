package domain

import "math"

const (
	// MinLux and MaxLux bound every decoded fixed-point reading.
	MinLux = 0.0
	MaxLux = 30000.0
)

// packFactor is 2^-16, the double with bit pattern 0x3EF0000000000000.
var packFactor = math.Float64frombits(0x3EF0_0000_0000_0000)

// Decode turns a raw sensor value into lux.
// Raw values that need unpacking are 16.16 fixed-point integers; they are
// rescaled and clamped to [MinLux, MaxLux]. Everything else passes through.
func Decode(raw float64, needsUnpacking bool) float64 {
	if !needsUnpacking {
		return raw
	}
	return clamp(raw*packFactor, MinLux, MaxLux)
}

func clamp(v, lo, hi float64) float64 {
	// NaN compares false everywhere, pin it to the lower bound
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(v, hi))
}
