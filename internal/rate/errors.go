package rate

import "errors"

var (
	// ErrLimited is returned when an identity has spent its failure budget
	// for the current window.
	ErrLimited = errors.New("rate limited")
	// ErrUnavailable is returned when the Redis backend cannot be reached.
	ErrUnavailable = errors.New("rate limiter backend unavailable")
)
