// Package bh1750 drives a BH1750 ambient light sensor over I2C.
package bh1750

import (
	"context"
	"fmt"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

const (
	// DefaultAddress is the address with the ADDR pin low
	DefaultAddress = 0x23

	opPowerOn        = 0x01
	opContinuousHRes = 0x10

	// first high-resolution conversion takes up to 180ms
	measurementTime = 180 * time.Millisecond

	// counts per lux at the default measurement time
	countsPerLux = 1.2
)

// Sensor is a BH1750 in continuous high-resolution mode
type Sensor struct {
	dev *i2c.Dev
	bus i2c.BusCloser
}

// Open initializes the host, opens the named bus and starts measuring
func Open(ctx context.Context, busName string, addr uint16) (*Sensor, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host init: %w", err)
	}
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("open i2c: %w", err)
	}

	s, err := New(ctx, bus, addr)
	if err != nil {
		bus.Close()
		return nil, err
	}
	s.bus = bus
	return s, nil
}

// New starts continuous measurement on an already opened bus.
// The bus is not closed by the sensor.
func New(ctx context.Context, bus i2c.Bus, addr uint16) (*Sensor, error) {
	dev := &i2c.Dev{Addr: addr, Bus: bus}

	if err := dev.Tx([]byte{opPowerOn}, nil); err != nil {
		return nil, fmt.Errorf("power on: %w", err)
	}
	if err := dev.Tx([]byte{opContinuousHRes}, nil); err != nil {
		return nil, fmt.Errorf("set mode: %w", err)
	}

	select {
	case <-time.After(measurementTime):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	return &Sensor{dev: dev}, nil
}

// Read returns the latest conversion in lux
func (s *Sensor) Read() (float64, bool) {
	if s.dev == nil {
		return 0, false
	}
	buf := make([]byte, 2)
	if err := s.dev.Tx(nil, buf); err != nil {
		return 0, false
	}
	raw := uint16(buf[0])<<8 | uint16(buf[1])
	return float64(raw) / countsPerLux, true
}

func (s *Sensor) Close() error {
	s.dev = nil
	if s.bus != nil {
		err := s.bus.Close()
		s.bus = nil
		return err
	}
	return nil
}
