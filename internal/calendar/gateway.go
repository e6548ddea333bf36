package calendar

import (
	"context"
	"time"
)

// Event is a provider calendar event mapped into the shape the availability
// logic needs. For all-day events the provider supplies dates only; Start
// and End then hold midnight UTC of those dates and AllDay is set, and the
// caller expands them to full local days in the query timezone.
type Event struct {
	Start   time.Time
	End     time.Time
	AllDay  bool
	Summary string
}

// EventInput is the payload for a new appointment event.
type EventInput struct {
	Summary         string
	DescriptionHTML string
	Start           time.Time
	End             time.Time
	AttendeeEmail   string
	AttendeeName    string
}

// Gateway is the narrow boundary to the external calendar provider. The
// provider is the sole durable store of bookings; nothing behind this
// interface is cached between requests.
type Gateway interface {
	ListEvents(ctx context.Context, from, to time.Time) ([]Event, error)
	InsertEvent(ctx context.Context, in EventInput) (string, error)
}
