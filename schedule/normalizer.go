package schedule

import (
	"strings"
	"time"
)

// DateLayout is the canonical date form, YYYY-MM-DD.
const DateLayout = "2006-01-02"

// Normalizer maps the literal date tokens "today" and "tomorrow" to canonical
// dates. Every other token passes through trimmed and lowercased, so an
// expression like "next monday" is stored verbatim and never matched by
// get_today.
type Normalizer struct {
	now func() time.Time
}

// NewNormalizer creates a Normalizer reading the given clock. A nil clock
// uses time.Now.
func NewNormalizer(now func() time.Time) *Normalizer {
	if now == nil {
		now = time.Now
	}
	return &Normalizer{now: now}
}

// Normalize returns nil for a nil token.
func (n *Normalizer) Normalize(token *string) *string {
	if token == nil {
		return nil
	}

	ds := strings.ToLower(strings.TrimSpace(*token))
	switch ds {
	case "today":
		ds = n.Today()
	case "tomorrow":
		ds = n.now().AddDate(0, 0, 1).Format(DateLayout)
	}
	return &ds
}

// Today returns the clock's current date in canonical form.
func (n *Normalizer) Today() string {
	return n.now().Format(DateLayout)
}
