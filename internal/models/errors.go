package models

import "errors"

// Custom errors
var (
	ErrUpstreamUnavailable = errors.New("market lines unavailable")
	ErrPlayerNotFound      = errors.New("player not found")
	ErrNoPredictions       = errors.New("no predictions available")
	ErrNoQuotes            = errors.New("no over quotes for prop")
)
