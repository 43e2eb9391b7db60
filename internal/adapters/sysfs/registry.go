// Package sysfs exposes Linux IIO light sensors as a registry.
//
// Each /sys/bus/iio/devices/iio:deviceN directory is a node. The only
// property served is ports.PropCurrentLux, read from in_illuminance_input
// or computed as (raw + offset) * scale.
package sysfs

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/quentinrf/ambient-light/internal/ports"
)

// DefaultRoot is where the kernel lists IIO devices
const DefaultRoot = "/sys/bus/iio/devices"

var (
	inputAttrs  = []string{"in_illuminance_input", "in_illuminance0_input"}
	rawAttrs    = []string{"in_illuminance_raw", "in_illuminance0_raw"}
	scaleAttrs  = []string{"in_illuminance_scale", "in_illuminance0_scale"}
	offsetAttrs = []string{"in_illuminance_offset", "in_illuminance0_offset"}
)

// Registry lists IIO devices under a sysfs root
type Registry struct {
	root string
}

// NewRegistry creates a registry rooted at root (DefaultRoot when empty)
func NewRegistry(root string) *Registry {
	if root == "" {
		root = DefaultRoot
	}
	return &Registry{root: root}
}

// Match returns every device that currently serves key
func (r *Registry) Match(key string) (ports.NodeIterator, error) {
	dirs, err := filepath.Glob(filepath.Join(r.root, "iio:device*"))
	if err != nil {
		return nil, err
	}

	it := &iterator{}
	for _, dir := range dirs {
		n := &node{dir: dir}
		if _, ok := n.Property(key); ok {
			it.nodes = append(it.nodes, n)
		}
	}
	return it, nil
}

type iterator struct {
	nodes []*node
	pos   int
}

func (it *iterator) Next() (ports.Node, bool) {
	if it.pos >= len(it.nodes) {
		return nil, false
	}
	n := it.nodes[it.pos]
	it.pos++
	return n, true
}

// Release drops nodes that were never handed out
func (it *iterator) Release() {
	it.nodes = nil
	it.pos = 0
}

type node struct {
	dir string
}

func (n *node) Property(key string) (any, bool) {
	if key != ports.PropCurrentLux {
		return nil, false
	}
	if v, ok := n.first(inputAttrs); ok {
		return v, true
	}

	raw, ok := n.first(rawAttrs)
	if !ok {
		return nil, false
	}
	scale, ok := n.first(scaleAttrs)
	if !ok {
		scale = 1
	}
	offset, _ := n.first(offsetAttrs)
	return (raw + offset) * scale, true
}

// ParentName returns the name of the bus device the sensor hangs off
func (n *node) ParentName() (string, bool) {
	dir, err := filepath.EvalSymlinks(n.dir)
	if err != nil {
		return "", false
	}
	parent := filepath.Base(filepath.Dir(dir))
	if parent == "." || parent == string(filepath.Separator) {
		return "", false
	}
	return parent, true
}

// Release is a no-op, sysfs nodes hold no handle
func (n *node) Release() {}

func (n *node) first(attrs []string) (float64, bool) {
	for _, a := range attrs {
		if v, ok := readFloat(filepath.Join(n.dir, a)); ok {
			return v, true
		}
	}
	return 0, false
}

func readFloat(path string) (float64, bool) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(string(b)), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
