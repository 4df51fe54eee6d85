package kernel

import "github.com/tailored-agentic-units/assistant/observability"

// Kernel event types emitted during a turn.
const (
	EventTurnStart    observability.EventType = "kernel.turn.start"
	EventTurnComplete observability.EventType = "kernel.turn.complete"
	EventToolCall     observability.EventType = "kernel.tool.call"
	EventToolComplete observability.EventType = "kernel.tool.complete"
	EventResponse     observability.EventType = "kernel.response"
	EventJournal      observability.EventType = "kernel.journal.failed"
	EventError        observability.EventType = "kernel.error"
)
