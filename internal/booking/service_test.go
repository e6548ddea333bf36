package booking

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"booking-api/internal/apperrors"
	"booking-api/internal/audit"
	"booking-api/internal/availability"
	"booking-api/internal/calendar"
	"booking-api/internal/notify"
	"booking-api/internal/slotpolicy"
	"booking-api/internal/timewindow"
)

type fakeGateway struct {
	events      []calendar.Event
	listErr     error
	listCalls   int
	insertErr   error
	insertCalls int
	lastInsert  calendar.EventInput
}

func (f *fakeGateway) ListEvents(ctx context.Context, from, to time.Time) ([]calendar.Event, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.events, nil
}

func (f *fakeGateway) InsertEvent(ctx context.Context, in calendar.EventInput) (string, error) {
	f.insertCalls++
	f.lastInsert = in
	if f.insertErr != nil {
		return "", f.insertErr
	}
	return "evt-123", nil
}

type fakeNotifier struct {
	ownerCalls    int
	customerCalls int
	ownerErr      error
	customerErr   error
}

func (f *fakeNotifier) NotifyOwner(b notify.Booking) error {
	f.ownerCalls++
	return f.ownerErr
}

func (f *fakeNotifier) NotifyCustomer(b notify.Booking) error {
	f.customerCalls++
	return f.customerErr
}

type fakeRecorder struct {
	attempts []audit.Attempt
	err      error
}

func (f *fakeRecorder) Record(ctx context.Context, a audit.Attempt) error {
	f.attempts = append(f.attempts, a)
	return f.err
}

func testPolicy(t *testing.T) slotpolicy.Policy {
	t.Helper()
	p, err := slotpolicy.Fixed([]slotpolicy.TimeOfDay{
		{Hour: 8}, {Hour: 10}, {Hour: 14},
	}, 60)
	if err != nil {
		t.Fatalf("policy: %v", err)
	}
	return p
}

func newTestService(t *testing.T, gw *fakeGateway, n *fakeNotifier, rec *fakeRecorder) *Service {
	t.Helper()
	rule := timewindow.Fixed(60)
	policy := testPolicy(t)
	log := zap.NewNop()
	avail := availability.NewService(gw, policy, rule, log)
	return NewService(gw, avail, policy, rule, n, rec, log)
}

func validRequest() Request {
	return Request{
		Name:  "Jane Doe",
		Email: "jane@example.com",
		Date:  "2025-01-15",
		Time:  "10:00",
	}
}

func TestBook_Success(t *testing.T) {
	gw := &fakeGateway{}
	n := &fakeNotifier{}
	rec := &fakeRecorder{}
	svc := newTestService(t, gw, n, rec)

	conf, err := svc.Book(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conf.EventID != "evt-123" {
		t.Fatalf("event id = %q", conf.EventID)
	}
	// 10:00 local at +1 is 09:00Z.
	wantStart := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)
	if !conf.Start.Equal(wantStart) || !conf.End.Equal(wantStart.Add(time.Hour)) {
		t.Fatalf("confirmation range [%s, %s]", conf.Start, conf.End)
	}
	if gw.insertCalls != 1 {
		t.Fatalf("insert calls = %d", gw.insertCalls)
	}
	if !gw.lastInsert.Start.Equal(wantStart) {
		t.Fatalf("insert payload start = %s", gw.lastInsert.Start)
	}
	if gw.lastInsert.AttendeeEmail != "jane@example.com" {
		t.Fatalf("attendee = %q", gw.lastInsert.AttendeeEmail)
	}
	if n.ownerCalls != 1 || n.customerCalls != 1 {
		t.Fatalf("notifier calls owner=%d customer=%d", n.ownerCalls, n.customerCalls)
	}
	if len(rec.attempts) != 1 || rec.attempts[0].Status != audit.StatusConfirmed {
		t.Fatalf("audit attempts = %+v", rec.attempts)
	}
}

func TestBook_TimeOffPolicyBoundary(t *testing.T) {
	gw := &fakeGateway{}
	svc := newTestService(t, gw, &fakeNotifier{}, &fakeRecorder{})

	req := validRequest()
	req.Time = "09:00"
	_, err := svc.Book(context.Background(), req)
	var ve *apperrors.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if gw.listCalls != 0 || gw.insertCalls != 0 {
		t.Fatalf("no gateway call expected, got list=%d insert=%d", gw.listCalls, gw.insertCalls)
	}
}

func TestBook_MissingFields(t *testing.T) {
	svc := newTestService(t, &fakeGateway{}, &fakeNotifier{}, &fakeRecorder{})

	for _, req := range []Request{
		{Email: "a@b.c", Date: "2025-01-15", Time: "10:00"},
		{Name: "Jane", Date: "2025-01-15", Time: "10:00"},
		{Name: "Jane", Email: "a@b.c", Date: "2025-13-40", Time: "10:00"},
	} {
		_, err := svc.Book(context.Background(), req)
		var ve *apperrors.ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("expected ValidationError for %+v, got %v", req, err)
		}
	}
}

func TestBook_SlotTaken(t *testing.T) {
	// Busy interval covering the 10:00 local slot (09:00Z-10:00Z).
	gw := &fakeGateway{events: []calendar.Event{{
		Start: time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC),
	}}}
	svc := newTestService(t, gw, &fakeNotifier{}, &fakeRecorder{})

	_, err := svc.Book(context.Background(), validRequest())
	var ce *apperrors.ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if gw.insertCalls != 0 {
		t.Fatalf("insert must not be called for a taken slot")
	}
}

func TestBook_UpstreamListFailure(t *testing.T) {
	gw := &fakeGateway{listErr: apperrors.Upstream("list events", errors.New("boom"))}
	svc := newTestService(t, gw, &fakeNotifier{}, &fakeRecorder{})

	_, err := svc.Book(context.Background(), validRequest())
	var ue *apperrors.UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if gw.insertCalls != 0 {
		t.Fatalf("insert must not run when availability cannot be checked")
	}
}

func TestBook_AmbiguousInsert(t *testing.T) {
	gw := &fakeGateway{insertErr: apperrors.Ambiguous("insert event", context.DeadlineExceeded)}
	n := &fakeNotifier{}
	rec := &fakeRecorder{}
	svc := newTestService(t, gw, n, rec)

	_, err := svc.Book(context.Background(), validRequest())
	var amb *apperrors.AmbiguousError
	if !errors.As(err, &amb) {
		t.Fatalf("expected AmbiguousError, got %v", err)
	}
	if gw.insertCalls != 1 {
		t.Fatalf("ambiguous failure must not be retried, insert calls = %d", gw.insertCalls)
	}
	if n.ownerCalls != 0 || n.customerCalls != 0 {
		t.Fatal("notifier must not run after an ambiguous insert")
	}
	if len(rec.attempts) != 1 || rec.attempts[0].Status != audit.StatusAmbiguous {
		t.Fatalf("audit attempts = %+v", rec.attempts)
	}
}

func TestBook_FailedInsert(t *testing.T) {
	gw := &fakeGateway{insertErr: apperrors.Upstream("insert event", errors.New("quota"))}
	rec := &fakeRecorder{}
	svc := newTestService(t, gw, &fakeNotifier{}, rec)

	_, err := svc.Book(context.Background(), validRequest())
	var ue *apperrors.UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if len(rec.attempts) != 1 || rec.attempts[0].Status != audit.StatusFailed {
		t.Fatalf("audit attempts = %+v", rec.attempts)
	}
}

func TestBook_NotifierFailureDoesNotFailBooking(t *testing.T) {
	gw := &fakeGateway{}
	n := &fakeNotifier{ownerErr: errors.New("smtp down"), customerErr: errors.New("smtp down")}
	svc := newTestService(t, gw, n, &fakeRecorder{})

	conf, err := svc.Book(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("notification failure must not fail the booking: %v", err)
	}
	if conf.EventID != "evt-123" {
		t.Fatalf("event id = %q", conf.EventID)
	}
	if n.ownerCalls != 1 || n.customerCalls != 1 {
		t.Fatal("both notifications must still be attempted")
	}
}

func TestBook_AuditFailureDoesNotFailBooking(t *testing.T) {
	gw := &fakeGateway{}
	rec := &fakeRecorder{err: errors.New("db down")}
	svc := newTestService(t, gw, &fakeNotifier{}, rec)

	if _, err := svc.Book(context.Background(), validRequest()); err != nil {
		t.Fatalf("audit failure must not fail the booking: %v", err)
	}
}

func TestBook_DefaultsPhoneAndTopic(t *testing.T) {
	gw := &fakeGateway{}
	svc := newTestService(t, gw, &fakeNotifier{}, &fakeRecorder{})

	if _, err := svc.Book(context.Background(), validRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	desc := gw.lastInsert.DescriptionHTML
	for _, want := range []string{"Phone: not provided", "Topic: General appointment"} {
		if !strings.Contains(desc, want) {
			t.Fatalf("description %q missing %q", desc, want)
		}
	}
}
