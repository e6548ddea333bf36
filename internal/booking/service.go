package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"booking-api/internal/apperrors"
	"booking-api/internal/audit"
	"booking-api/internal/availability"
	"booking-api/internal/calendar"
	"booking-api/internal/notify"
	"booking-api/internal/slotpolicy"
	"booking-api/internal/timewindow"
)

const (
	defaultPhone = "not provided"
	defaultTopic = "General appointment"
)

// Request is one booking attempt as received from the widget. Date is
// "YYYY-MM-DD" and Time "HH:MM" in the booking timezone; phone and topic
// are optional.
type Request struct {
	Name  string
	Email string
	Phone string
	Topic string
	Date  string
	Time  string
}

// Confirmation is returned after the provider accepted the event. It is
// not persisted anywhere in this service; the calendar holds the booking.
type Confirmation struct {
	EventID   string
	Reference string
	Start     time.Time
	End       time.Time
}

// Service books appointments into the external calendar. A booking attempt
// moves through validate → compute window → advisory availability check →
// insert → best-effort notify/audit; the provider insert is the single
// point of truth, and two concurrent requests for the same slot can both
// succeed there (last-writer-wins, matching real calendar semantics).
type Service struct {
	gw       calendar.Gateway
	avail    *availability.Service
	policy   slotpolicy.Policy
	rule     timewindow.Rule
	notifier notify.Notifier
	recorder audit.Recorder
	log      *zap.Logger
}

func NewService(
	gw calendar.Gateway,
	avail *availability.Service,
	policy slotpolicy.Policy,
	rule timewindow.Rule,
	notifier notify.Notifier,
	recorder audit.Recorder,
	log *zap.Logger,
) *Service {
	return &Service{
		gw:       gw,
		avail:    avail,
		policy:   policy,
		rule:     rule,
		notifier: notifier,
		recorder: recorder,
		log:      log,
	}
}

func (s *Service) Book(ctx context.Context, req Request) (Confirmation, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	if name == "" {
		return Confirmation{}, apperrors.Validationf("name is required")
	}
	if email == "" {
		return Confirmation{}, apperrors.Validationf("email is required")
	}
	phone := strings.TrimSpace(req.Phone)
	if phone == "" {
		phone = defaultPhone
	}
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		topic = defaultTopic
	}

	d, err := timewindow.ParseDate(strings.TrimSpace(req.Date))
	if err != nil {
		return Confirmation{}, err
	}
	def, ok := s.policy.Match(strings.TrimSpace(req.Time))
	if !ok {
		return Confirmation{}, apperrors.Validationf("time %q is not a bookable slot", req.Time)
	}

	// The UTC range is always re-derived server-side; a client-supplied
	// timestamp is never trusted.
	start, end, err := s.rule.SlotRange(d, def.Start.Hour, def.Start.Minute, def.DurationMinutes)
	if err != nil {
		return Confirmation{}, err
	}

	// Advisory check against a fresh calendar read. It narrows the race
	// window but the provider insert below is the authority.
	open, err := s.avail.DaySlots(ctx, d)
	if err != nil {
		return Confirmation{}, err
	}
	free := false
	for _, slot := range open {
		if slot.Start.Equal(start) {
			free = true
			break
		}
	}
	if !free {
		return Confirmation{}, apperrors.Conflictf("slot %s on %s is no longer available", def.Label(), d)
	}

	ref := uuid.NewString()
	in := calendar.EventInput{
		Summary:         fmt.Sprintf("Appointment: %s", name),
		DescriptionHTML: buildDescription(name, email, phone, topic, ref),
		Start:           start,
		End:             end,
		AttendeeEmail:   email,
		AttendeeName:    name,
	}

	eventID, err := s.gw.InsertEvent(ctx, in)
	if err != nil {
		status := audit.StatusFailed
		var amb *apperrors.AmbiguousError
		if errors.As(err, &amb) {
			status = audit.StatusAmbiguous
		}
		s.recordAttempt(ctx, req, ref, start, end, status, "", err.Error())
		s.log.Error("calendar insert failed",
			zap.String("date", d.String()),
			zap.String("time", def.Label()),
			zap.String("status", status),
			zap.Error(err))
		return Confirmation{}, err
	}

	conf := Confirmation{EventID: eventID, Reference: ref, Start: start, End: end}
	s.recordAttempt(ctx, req, ref, start, end, audit.StatusConfirmed, eventID, "")

	// The event is on the calendar; notification failures must not unwind
	// the booking. Each send is independent.
	nb := notify.Booking{
		Name:      name,
		Email:     email,
		Phone:     phone,
		Topic:     topic,
		Date:      d.String(),
		Time:      def.Label(),
		Reference: ref,
		EventID:   eventID,
		Start:     start,
		End:       end,
	}
	if err := s.notifier.NotifyOwner(nb); err != nil {
		s.log.Warn("owner notification failed", zap.String("reference", ref), zap.Error(err))
	}
	if err := s.notifier.NotifyCustomer(nb); err != nil {
		s.log.Warn("customer notification failed", zap.String("reference", ref), zap.Error(err))
	}

	return conf, nil
}

// recordAttempt is best-effort. It runs detached from the request context
// so that a timed-out insert can still leave an audit row behind.
func (s *Service) recordAttempt(ctx context.Context, req Request, ref string, start, end time.Time, status, eventID, detail string) {
	a := audit.Attempt{
		Reference: ref,
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.TrimSpace(req.Email),
		Date:      strings.TrimSpace(req.Date),
		Time:      strings.TrimSpace(req.Time),
		StartUTC:  start,
		EndUTC:    end,
		Status:    status,
		EventID:   eventID,
		Detail:    detail,
	}
	if err := s.recorder.Record(context.WithoutCancel(ctx), a); err != nil {
		s.log.Warn("audit write failed", zap.String("reference", ref), zap.Error(err))
	}
}

func buildDescription(name, email, phone, topic, ref string) string {
	return fmt.Sprintf(
		"Name: %s<br>Email: %s<br>Phone: %s<br>Topic: %s<br>Reference: %s<br>Booked via website",
		name, email, phone, topic, ref,
	)
}
