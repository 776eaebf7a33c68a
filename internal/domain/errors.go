package domain

import "errors"

var (
	ErrNotInitialized = errors.New("not initialized")
	ErrNotAvailable   = errors.New("not available in this mode")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrRateLimited    = errors.New("rate limited")
)
