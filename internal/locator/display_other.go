//go:build !arm64

package locator

const displayProbeEnabled = false
