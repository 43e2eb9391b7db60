// Package iokit exposes the macOS I/O Registry and the ambient light HID
// service as ports.Registry and ports.EventClient. It is only built on
// darwin with cgo enabled.
package iokit
