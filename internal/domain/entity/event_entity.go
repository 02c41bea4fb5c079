package entity

import "time"

// DefaultEventStatus is applied when an event is created without a status.
const DefaultEventStatus = "En cours"

// Event is a scheduled happening. Status is free-form; no transitions are enforced.
type Event struct {
	ID           string
	Title        string
	Description  string
	Status       string
	StreamingURL string
	StartAt      time.Time
	EndAt        time.Time
	Author       string
	Category     string
}

// HasValidWindow reports whether the event starts strictly before it ends.
func (e Event) HasValidWindow() bool {
	return e.StartAt.Before(e.EndAt)
}
