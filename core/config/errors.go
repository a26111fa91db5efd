package config

import "errors"

var (
	// ErrInvalidTarget is returned when Load receives anything but a non-nil struct pointer.
	ErrInvalidTarget = errors.New("config target must be a non-nil struct pointer")
	// ErrParseFailed is returned when environment parsing fails.
	ErrParseFailed = errors.New("failed to parse environment configuration")
)
