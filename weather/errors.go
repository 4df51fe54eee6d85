package weather

import (
	"errors"
	"fmt"
)

// MsgRequestFailed is reported when a failed response carries no message.
const MsgRequestFailed = "API request failed"

var (
	ErrMissingAPIKey = errors.New("weather API key is not configured")
	ErrMissingCity   = errors.New("city is required")
)

// APIError is a non-200 answer from the weather service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("weather API returned %d: %s", e.StatusCode, e.Message)
}
