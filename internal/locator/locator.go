// Package locator finds the ambient light sensor of the current machine.
//
// Discovery runs a fixed chain of probes and keeps the first one that
// yields a usable sensor. A probe that fails is skipped silently; every
// handle it opened is released before the next probe runs.
package locator

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/quentinrf/ambient-light/internal/ports"
)

// ErrNoSensor is reported when every probe comes up empty
var ErrNoSensor = errors.New("no ambient light sensor found")

// Probe tries one discovery strategy.
type Probe interface {
	// Name identifies the strategy in logs
	Name() string

	// Probe returns a live sensor, or false if this strategy found nothing.
	// The returned sensor owns its handle; nothing else is left open.
	Probe(ctx context.Context) (ports.LightSensor, bool)
}

// Locator runs probes in order.
type Locator struct {
	probes []Probe
	logger zerolog.Logger
}

// New creates a locator trying probes in the given order
func New(logger zerolog.Logger, probes ...Probe) *Locator {
	return &Locator{probes: probes, logger: logger}
}

// Locate returns the first sensor any probe finds
func (l *Locator) Locate(ctx context.Context) (ports.LightSensor, bool) {
	for _, p := range l.probes {
		if ctx.Err() != nil {
			return nil, false
		}
		sensor, ok := p.Probe(ctx)
		if ok {
			l.logger.Debug().Str("probe", p.Name()).Msg("ambient light sensor found")
			return sensor, true
		}
		l.logger.Debug().Str("probe", p.Name()).Msg("probe found no sensor")
	}
	return nil, false
}

// Chain returns the discovery order for this build: the event service,
// the lux registry property, the display heuristic (arm64 only), then extra.
// A nil opener or registry disables the probes that need it.
func Chain(events EventOpener, registry ports.Registry, extra ...Probe) []Probe {
	probes := []Probe{
		EventProbe{Open: events},
		LuxPropertyProbe{Registry: registry},
	}
	if displayProbeEnabled {
		probes = append(probes, DisplayProbe{Registry: registry})
	}
	return append(probes, extra...)
}
