package calendar

import (
	"context"
	"errors"
	"net"
	"time"

	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"booking-api/internal/apperrors"
)

const maxEventsPerList = 250

// GoogleGateway implements Gateway against the Google Calendar API using a
// service account that has been shared on the target calendar.
type GoogleGateway struct {
	svc        *gcal.Service
	calendarID string
}

// NewGoogle builds a gateway from service-account credentials JSON.
func NewGoogle(ctx context.Context, credentialsJSON []byte, calendarID string) (*GoogleGateway, error) {
	cfg, err := google.JWTConfigFromJSON(credentialsJSON, gcal.CalendarScope)
	if err != nil {
		return nil, apperrors.Configf("calendar credentials: %v", err)
	}
	svc, err := gcal.NewService(ctx, option.WithHTTPClient(cfg.Client(ctx)))
	if err != nil {
		return nil, apperrors.Configf("calendar service: %v", err)
	}
	return &GoogleGateway{svc: svc, calendarID: calendarID}, nil
}

func (g *GoogleGateway) ListEvents(ctx context.Context, from, to time.Time) ([]Event, error) {
	res, err := g.svc.Events.List(g.calendarID).
		SingleEvents(true).
		OrderBy("startTime").
		TimeMin(from.UTC().Format(time.RFC3339)).
		TimeMax(to.UTC().Format(time.RFC3339)).
		MaxResults(maxEventsPerList).
		Context(ctx).
		Do()
	if err != nil {
		return nil, apperrors.Upstream("list events", err)
	}

	var events []Event
	for _, item := range res.Items {
		if item.Start == nil || item.End == nil {
			continue
		}
		ev, ok := mapEvent(item)
		if !ok {
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

func mapEvent(item *gcal.Event) (Event, bool) {
	ev := Event{Summary: item.Summary}
	if item.Start.DateTime != "" {
		start, err := time.Parse(time.RFC3339, item.Start.DateTime)
		if err != nil {
			return Event{}, false
		}
		end, err := time.Parse(time.RFC3339, item.End.DateTime)
		if err != nil {
			return Event{}, false
		}
		ev.Start, ev.End = start.UTC(), end.UTC()
		return ev, true
	}
	// Date-only event: provider End date is exclusive.
	start, err := time.Parse("2006-01-02", item.Start.Date)
	if err != nil {
		return Event{}, false
	}
	end, err := time.Parse("2006-01-02", item.End.Date)
	if err != nil {
		return Event{}, false
	}
	ev.Start, ev.End, ev.AllDay = start, end, true
	return ev, true
}

func (g *GoogleGateway) InsertEvent(ctx context.Context, in EventInput) (string, error) {
	ev := &gcal.Event{
		Summary:     in.Summary,
		Description: in.DescriptionHTML,
		Start:       &gcal.EventDateTime{DateTime: in.Start.UTC().Format(time.RFC3339), TimeZone: "UTC"},
		End:         &gcal.EventDateTime{DateTime: in.End.UTC().Format(time.RFC3339), TimeZone: "UTC"},
	}
	if in.AttendeeEmail != "" {
		ev.Attendees = []*gcal.EventAttendee{
			{Email: in.AttendeeEmail, DisplayName: in.AttendeeName},
		}
	}

	created, err := g.svc.Events.Insert(g.calendarID, ev).Context(ctx).Do()
	if err != nil {
		// A timeout after the request went out leaves the outcome unknown:
		// the event may or may not exist on the calendar.
		if isTimeout(err) {
			return "", apperrors.Ambiguous("insert event", err)
		}
		return "", apperrors.Upstream("insert event", err)
	}
	return created.Id, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
