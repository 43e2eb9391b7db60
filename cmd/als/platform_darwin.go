//go:build darwin && cgo

package main

import (
	"github.com/quentinrf/ambient-light/internal/adapters/iokit"
	"github.com/quentinrf/ambient-light/internal/config"
	"github.com/quentinrf/ambient-light/internal/locator"
	"github.com/quentinrf/ambient-light/internal/ports"
)

// platformSources returns the HID ambient light client and the I/O Registry
func platformSources(config.Config) (locator.EventOpener, ports.Registry) {
	open := func() (ports.EventClient, bool) {
		c, ok := iokit.OpenEventClient()
		if !ok {
			return nil, false
		}
		return c, true
	}
	return open, iokit.NewRegistry()
}
