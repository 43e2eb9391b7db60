//go:build !linux && !(darwin && cgo)

package main

import (
	"github.com/quentinrf/ambient-light/internal/config"
	"github.com/quentinrf/ambient-light/internal/locator"
	"github.com/quentinrf/ambient-light/internal/ports"
)

// platformSources has nothing to offer here; only the I2C probe can succeed
func platformSources(config.Config) (locator.EventOpener, ports.Registry) {
	return nil, nil
}
