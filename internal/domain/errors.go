package domain

import "errors"

var (
	// ErrInvalidLux indicates lux value is invalid
	ErrInvalidLux = errors.New("lux value cannot be negative")

	// ErrReadingNotFound indicates requested reading doesn't exist
	ErrReadingNotFound = errors.New("reading not found")

	// ErrSensorUnavailable indicates sensor cannot be read
	ErrSensorUnavailable = errors.New("failed to read lux value")

	// ErrInvalidWindowSize indicates a non-positive averaging window
	ErrInvalidWindowSize = errors.New("window size must be a positive integer")
)
