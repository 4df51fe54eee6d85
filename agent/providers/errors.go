package providers

import "errors"

// Sentinel errors for provider construction and calls.
var (
	ErrMissingProvider = errors.New("provider config is missing")
	ErrUnknownProvider = errors.New("unknown provider")
	ErrEmptyResponse   = errors.New("provider returned no choices")
)
