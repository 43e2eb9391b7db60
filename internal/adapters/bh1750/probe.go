package bh1750

import (
	"context"

	"github.com/quentinrf/ambient-light/internal/ports"
)

// Probe looks for a BH1750 on a configured bus. It finds nothing when Bus is empty.
type Probe struct {
	Bus     string
	Address uint16
}

func (Probe) Name() string { return "bh1750" }

func (p Probe) Probe(ctx context.Context) (ports.LightSensor, bool) {
	if p.Bus == "" {
		return nil, false
	}
	addr := p.Address
	if addr == 0 {
		addr = DefaultAddress
	}

	s, err := Open(ctx, p.Bus, addr)
	if err != nil {
		return nil, false
	}
	if _, ok := s.Read(); !ok {
		s.Close()
		return nil, false
	}
	return s, true
}
