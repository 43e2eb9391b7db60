package main

import (
	"github.com/rs/zerolog/log"

	"github.com/quentinrf/ambient-light/internal/adapters/sensorproxy"
	"github.com/quentinrf/ambient-light/internal/adapters/sysfs"
	"github.com/quentinrf/ambient-light/internal/config"
	"github.com/quentinrf/ambient-light/internal/locator"
	"github.com/quentinrf/ambient-light/internal/ports"
)

// platformSources returns iio-sensor-proxy and the IIO sysfs tree
func platformSources(cfg config.Config) (locator.EventOpener, ports.Registry) {
	open := func() (ports.EventClient, bool) {
		c, err := sensorproxy.Open()
		if err != nil {
			log.Debug().Err(err).Msg("iio-sensor-proxy unavailable")
			return nil, false
		}
		return c, true
	}
	return open, sysfs.NewRegistry(cfg.SysfsRoot)
}
