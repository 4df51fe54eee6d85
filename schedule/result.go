package schedule

import (
	"encoding/json"

	"github.com/tailored-agentic-units/assistant/tools"
)

// Actions accepted by Execute.
const (
	ActionAdd      = "add"
	ActionGetToday = "get_today"
)

// Messages returned in result payloads.
const (
	MsgMissingFields = "Missing event, date, or time for adding schedule."
	MsgUnknownAction = "Unknown action."
	MsgToday         = "Here is your schedule for today."
	MsgNoneToday     = "You have no schedules today."
)

// Request is one manage_schedule invocation. Optional fields are nil when the
// language service omits them.
type Request struct {
	Action string  `json:"action"`
	Event  *string `json:"event,omitempty"`
	Date   *string `json:"date,omitempty"`
	Time   *string `json:"time,omitempty"`
}

// UnmarshalJSON accepts numbers for the optional fields, so "time": 19 is
// filed under "19".
func (r *Request) UnmarshalJSON(data []byte) error {
	var raw struct {
		Action string      `json:"action"`
		Event  *tools.Text `json:"event"`
		Date   *tools.Text `json:"date"`
		Time   *tools.Text `json:"time"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Request{
		Action: raw.Action,
		Event:  textPtr(raw.Event),
		Date:   textPtr(raw.Date),
		Time:   textPtr(raw.Time),
	}
	return nil
}

func textPtr(t *tools.Text) *string {
	if t == nil {
		return nil
	}
	s := string(*t)
	return &s
}

// Result is the payload handed back to the language service. Exactly one of
// three shapes is rendered: an error, a success confirmation, or a day listing.
type Result struct {
	Status  string
	Message string
	Date    string
	Events  Day
	Error   string
}

// IsError reports whether r is an error payload.
func (r Result) IsError() bool { return r.Error != "" }

func (r Result) MarshalJSON() ([]byte, error) {
	switch {
	case r.Error != "":
		return json.Marshal(struct {
			Error string `json:"error"`
		}{r.Error})
	case r.Events != nil:
		return json.Marshal(struct {
			Date    string `json:"date"`
			Events  Day    `json:"events"`
			Message string `json:"message"`
		}{r.Date, r.Events, r.Message})
	default:
		return json.Marshal(struct {
			Status  string `json:"status"`
			Message string `json:"message"`
		}{r.Status, r.Message})
	}
}

func errorResult(msg string) Result {
	return Result{Error: msg}
}
