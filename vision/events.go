package vision

import "github.com/tailored-agentic-units/assistant/observability"

const (
	EventFrames   observability.EventType = "vision.frames"
	EventDescribe observability.EventType = "vision.describe"
	EventAsk      observability.EventType = "vision.ask"
	EventFallback observability.EventType = "vision.describe.fallback"
)
