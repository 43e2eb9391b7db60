package locator

import (
	"github.com/quentinrf/ambient-light/internal/domain"
	"github.com/quentinrf/ambient-light/internal/ports"
)

// eventSensor re-queries the ambient light event on every read
type eventSensor struct {
	client ports.EventClient
}

func (s *eventSensor) Read() (float64, bool) {
	if s.client == nil {
		return 0, false
	}
	lux, ok := s.client.AmbientLux()
	if !ok || lux < 0 {
		return 0, false
	}
	return lux, true
}

func (s *eventSensor) Close() error {
	if s.client != nil {
		s.client.Release()
		s.client = nil
	}
	return nil
}

// registrySensor re-reads a registry property on every read
type registrySensor struct {
	node           ports.Node
	key            string
	needsUnpacking bool
}

func (s *registrySensor) Read() (float64, bool) {
	if s.node == nil {
		return 0, false
	}
	raw, ok := numberProperty(s.node, s.key)
	if !ok {
		return 0, false
	}
	return domain.Decode(raw, s.needsUnpacking), true
}

func (s *registrySensor) Close() error {
	if s.node != nil {
		s.node.Release()
		s.node = nil
	}
	return nil
}
