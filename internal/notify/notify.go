package notify

import "time"

// Booking carries everything the notification mails need. Kept separate
// from the booking package's types so notification stays a one-way sink.
type Booking struct {
	Name      string
	Email     string
	Phone     string
	Topic     string
	Date      string
	Time      string
	Reference string
	EventID   string
	Start     time.Time
	End       time.Time
}

// Notifier sends the post-booking mails. Both calls are best-effort from
// the caller's perspective: a failure is logged, never propagated into the
// booking outcome.
type Notifier interface {
	NotifyOwner(b Booking) error
	NotifyCustomer(b Booking) error
}

// Mailer is the raw send used for non-booking transactional mail.
type Mailer interface {
	Send(to, subject, body string) error
}
