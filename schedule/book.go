package schedule

import (
	"bytes"
	"encoding/json"
	"maps"
	"slices"
)

// Day maps a free-form time label to the events filed under it, in arrival order.
type Day map[string][]string

// Book is the whole schedule document: date -> time -> events. A date key
// exists only with at least one time slot and a slot only with at least one
// event.
type Book map[string]Day

// Add appends event to the (date, time) slot, creating it as needed.
func (b Book) Add(date, time, event string) {
	day := b[date]
	if day == nil {
		day = make(Day)
		b[date] = day
	}
	day[time] = append(day[time], event)
}

// Day returns a copy of the slots for date; the result is empty, not nil,
// when the date has no entries.
func (b Book) Day(date string) Day {
	out := make(Day, len(b[date]))
	for t, events := range b[date] {
		out[t] = slices.Clone(events)
	}
	return out
}

// Count returns the number of events in the (date, time) slot.
func (b Book) Count(date, time string) int {
	return len(b[date][time])
}

// Dates returns the dates that have entries, sorted.
func (b Book) Dates() []string {
	return slices.Sorted(maps.Keys(b))
}

// decodeBook parses a schedule document. JSON null decodes to an empty book;
// null or empty dates and slots are dropped.
func decodeBook(data []byte) (Book, error) {
	var b Book
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, err
	}
	if b == nil {
		b = make(Book)
	}
	for date, day := range b {
		for t, events := range day {
			if len(events) == 0 {
				delete(day, t)
			}
		}
		if len(day) == 0 {
			delete(b, date)
		}
	}
	return b, nil
}

// encode renders the book with 4-space indentation, leaving non-ASCII and
// HTML characters unescaped.
func (b Book) encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(b); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
