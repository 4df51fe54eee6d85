package kernel

import "errors"

// ErrEmptyResponse is returned when the language service answers with no choices.
var ErrEmptyResponse = errors.New("agent returned empty response")
