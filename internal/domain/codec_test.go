package domain

import (
	"math"
	"testing"
)

func TestDecode_PassThrough(t *testing.T) {
	for _, raw := range []float64{-5, 0, 0.25, 500, 65536, 1e9, math.Inf(1)} {
		if got := Decode(raw, false); got != raw {
			t.Errorf("Decode(%v, false) = %v, want unchanged", raw, got)
		}
	}
}

func TestDecode_Unpacking(t *testing.T) {
	tests := []struct {
		name string
		raw  float64
		want float64
	}{
		{name: "fixed point ten", raw: 655360, want: 10.0},
		{name: "one", raw: 0x10000, want: 1.0},
		{name: "fraction", raw: 0x8000, want: 0.5},
		{name: "zero", raw: 0, want: 0},
		{name: "negative clamps to zero", raw: -655360, want: 0},
		{name: "huge clamps to max", raw: 1e15, want: MaxLux},
		{name: "exactly max", raw: 30000 * 65536, want: MaxLux},
		{name: "positive infinity", raw: math.Inf(1), want: MaxLux},
		{name: "negative infinity", raw: math.Inf(-1), want: MinLux},
		{name: "nan", raw: math.NaN(), want: MinLux},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decode(tt.raw, true); got != tt.want {
				t.Errorf("Decode(%v, true) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestDecode_UnpackingStaysInRange(t *testing.T) {
	for raw := -1e12; raw < 1e12; raw += 7.3e9 {
		got := Decode(raw, true)
		if got < MinLux || got > MaxLux {
			t.Fatalf("Decode(%v, true) = %v, outside [%v, %v]", raw, got, MinLux, MaxLux)
		}
	}
}

func TestPackFactor(t *testing.T) {
	if packFactor != 1.0/65536 {
		t.Errorf("packFactor = %v, want 2^-16", packFactor)
	}
}
