package schedule

import "github.com/tailored-agentic-units/assistant/observability"

const (
	EventAdd           observability.EventType = "schedule.add"
	EventGetToday      observability.EventType = "schedule.get_today"
	EventRejected      observability.EventType = "schedule.rejected"
	EventUnknownAction observability.EventType = "schedule.unknown_action"
	EventCorrupt       observability.EventType = "schedule.load.corrupt"
	EventSaveFailed    observability.EventType = "schedule.save.failed"
)
