package ports

// LightSensor is the one ambient light source chosen at startup.
// Adapters (registry nodes, event clients, I2C, mock) implement it.
type LightSensor interface {
	// Read performs a single synchronous probe and returns lux.
	// ok is false when the sensor is present but has no value right now.
	Read() (lux float64, ok bool)

	// Close releases the underlying handle. Safe to call more than once.
	Close() error
}
