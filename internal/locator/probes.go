package locator

import (
	"context"

	"github.com/quentinrf/ambient-light/internal/ports"
)

// Registry property keys
const (
	KeyCurrentLux        = ports.PropCurrentLux
	KeyAmbientBrightness = ports.PropAmbientBrightness
	KeyDisplayAttributes = ports.PropDisplayAttributes

	keyProductAttributes = "ProductAttributes"
	keyProductName       = "ProductName"
)

// Ambient brightness values a display reports when its sensor is present
// but not producing data. Observed on real hardware.
const (
	sentinelIdle     = 0x10000
	sentinelNoSignal = 0x12C0000
)

// builtinDisplayParent is the registry name of the built-in panel.
const builtinDisplayParent = "disp0"

// knownToWork lists external displays whose ambient brightness is usable.
var knownToWork = map[string]bool{
	"StudioDisplay": true,
	"ProDisplayXDR": true,
	"LG UltraFine":  true,
	"LED Cinema":    true,
	"Thunderbolt":   true,
}

// EventOpener connects to the platform's ambient light event service
type EventOpener func() (ports.EventClient, bool)

// EventProbe uses the low-level ambient light event service.
type EventProbe struct {
	Open EventOpener
}

func (EventProbe) Name() string { return "event-service" }

func (p EventProbe) Probe(ctx context.Context) (ports.LightSensor, bool) {
	if p.Open == nil {
		return nil, false
	}
	client, ok := p.Open()
	if !ok {
		return nil, false
	}
	if lux, ok := client.AmbientLux(); !ok || lux < 0 {
		client.Release()
		return nil, false
	}
	return &eventSensor{client: client}, true
}

// LuxPropertyProbe picks the first registry node exposing calibrated lux.
type LuxPropertyProbe struct {
	Registry ports.Registry
}

func (LuxPropertyProbe) Name() string { return "lux-property" }

func (p LuxPropertyProbe) Probe(ctx context.Context) (ports.LightSensor, bool) {
	if p.Registry == nil {
		return nil, false
	}
	it, err := p.Registry.Match(KeyCurrentLux)
	if err != nil {
		return nil, false
	}
	defer it.Release()

	node, ok := it.Next()
	if !ok {
		return nil, false
	}
	return &registrySensor{node: node, key: KeyCurrentLux}, true
}

// DisplayProbe looks for a display panel that reports ambient brightness
// as a fixed-point value.
type DisplayProbe struct {
	Registry ports.Registry
}

func (DisplayProbe) Name() string { return "display-brightness" }

func (p DisplayProbe) Probe(ctx context.Context) (ports.LightSensor, bool) {
	if p.Registry == nil {
		return nil, false
	}
	it, err := p.Registry.Match(KeyAmbientBrightness)
	if err != nil {
		return nil, false
	}
	defer it.Release()

	for {
		node, ok := it.Next()
		if !ok {
			return nil, false
		}
		if ctx.Err() == nil && acceptDisplay(node) {
			return &registrySensor{node: node, key: KeyAmbientBrightness, needsUnpacking: true}, true
		}
		node.Release()
	}
}

func acceptDisplay(node ports.Node) bool {
	light, ok := numberProperty(node, KeyAmbientBrightness)
	if !ok || light == sentinelIdle || light == sentinelNoSignal || light < 0 {
		return false
	}

	if name, ok := node.ParentName(); ok && name == builtinDisplayParent {
		return true
	}

	return knownToWork[productName(node)]
}

// productName digs DisplayAttributes.ProductAttributes.ProductName out of node
func productName(node ports.Node) string {
	v, ok := node.Property(KeyDisplayAttributes)
	if !ok {
		return ""
	}
	attrs, ok := v.(map[string]any)
	if !ok {
		return ""
	}
	product, ok := attrs[keyProductAttributes].(map[string]any)
	if !ok {
		return ""
	}
	name, _ := product[keyProductName].(string)
	return name
}

func numberProperty(node ports.Node, key string) (float64, bool) {
	v, ok := node.Property(key)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}
