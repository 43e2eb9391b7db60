package ports

import (
	"context"

	"github.com/quentinrf/ambient-light/internal/domain"
)

// Publisher forwards sampled readings to an external consumer (MQTT).
type Publisher interface {
	Publish(ctx context.Context, reading *domain.LightReading) error
	Close() error
}
