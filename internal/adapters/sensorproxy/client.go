// Package sensorproxy reads ambient light from iio-sensor-proxy over the
// D-Bus system bus.
package sensorproxy

import (
	"errors"
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	busName    = "net.hadess.SensorProxy"
	objectPath = dbus.ObjectPath("/net/hadess/SensorProxy")
	iface      = "net.hadess.SensorProxy"

	unitLux = "lux"
)

var (
	// ErrNoLightSensor is returned when the proxy has no ambient light sensor
	ErrNoLightSensor = errors.New("sensor proxy has no ambient light sensor")
)

// busObject is the subset of dbus.BusObject used here
type busObject interface {
	Call(method string, flags dbus.Flags, args ...interface{}) *dbus.Call
	GetProperty(p string) (dbus.Variant, error)
}

// Client holds a light claim on the sensor proxy until Release
type Client struct {
	conn *dbus.Conn
	obj  busObject
}

// Open connects to the system bus and claims the light sensor
func Open() (*Client, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, fmt.Errorf("connect system bus: %w", err)
	}

	c, err := claim(conn.Object(busName, objectPath))
	if err != nil {
		conn.Close()
		return nil, err
	}
	c.conn = conn
	return c, nil
}

func claim(obj busObject) (*Client, error) {
	v, err := obj.GetProperty(iface + ".HasAmbientLight")
	if err != nil {
		return nil, fmt.Errorf("query HasAmbientLight: %w", err)
	}
	if has, _ := v.Value().(bool); !has {
		return nil, ErrNoLightSensor
	}

	if err := obj.Call(iface+".ClaimLight", 0).Err; err != nil {
		return nil, fmt.Errorf("claim light: %w", err)
	}
	return &Client{obj: obj}, nil
}

// AmbientLux returns the current light level when the proxy reports it in lux.
// Vendor-unit levels are not comparable and read as no value.
func (c *Client) AmbientLux() (float64, bool) {
	if c.obj == nil {
		return 0, false
	}

	unit, err := c.obj.GetProperty(iface + ".LightLevelUnit")
	if err != nil {
		return 0, false
	}
	if s, _ := unit.Value().(string); s != unitLux {
		return 0, false
	}

	level, err := c.obj.GetProperty(iface + ".LightLevel")
	if err != nil {
		return 0, false
	}
	lux, ok := level.Value().(float64)
	return lux, ok
}

// Release drops the light claim and closes the bus connection
func (c *Client) Release() {
	if c.obj != nil {
		c.obj.Call(iface+".ReleaseLight", 0)
		c.obj = nil
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}
