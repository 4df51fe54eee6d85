package agent

import "errors"

var (
	ErrAgentNotFound       = errors.New("agent not found")
	ErrAgentExists         = errors.New("agent already registered")
	ErrEmptyAgentName      = errors.New("agent name is empty")
	ErrMissingProvider     = errors.New("agent config has no provider")
	ErrMissingModel        = errors.New("agent config has no model name")
	ErrUnsupportedProtocol = errors.New("protocol not supported by model")
)
