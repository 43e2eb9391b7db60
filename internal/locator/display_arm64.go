//go:build arm64

package locator

// External displays only report ambient brightness to Apple silicon hosts.
const displayProbeEnabled = true
