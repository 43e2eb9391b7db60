package ports

// Registry is a hardware registry that can be searched for nodes exposing
// a given property (IOKit on darwin, IIO sysfs on linux).
type Registry interface {
	// Match returns an iterator over every node exposing key.
	Match(key string) (NodeIterator, error)
}

// NodeIterator walks matched nodes. Each returned node is owned by the
// caller. Release must be called once iteration is done.
type NodeIterator interface {
	// Next returns the next node, or false once exhausted
	Next() (Node, bool)
	Release()
}

// Node is a handle to one registry entry.
type Node interface {
	// Property returns the value stored under key. Numbers come back as
	// float64, dictionaries as map[string]any and strings as string.
	Property(key string) (any, bool)

	// ParentName returns the name of the parent entry, if any
	ParentName() (string, bool)

	// Release drops the handle. Safe to call more than once.
	Release()
}

// EventClient is a low-level ambient light event service.
type EventClient interface {
	// AmbientLux returns the current ambient light event value.
	AmbientLux() (float64, bool)
	Release()
}

// Well-known registry property keys
const (
	PropCurrentLux        = "CurrentLux"
	PropAmbientBrightness = "AmbientBrightness"
	PropDisplayAttributes = "DisplayAttributes"
)
