package notify

import (
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPNotifier sends mail over plain SMTP. With an empty username it sends
// unauthenticated (local relay / Mailpit); otherwise PLAIN auth.
type SMTPNotifier struct {
	addr       string
	auth       smtp.Auth
	from       string
	ownerEmail string
}

func NewSMTP(host, port, username, password, from, ownerEmail string) *SMTPNotifier {
	host = strings.TrimSpace(host)
	port = strings.TrimSpace(port)
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPNotifier{
		addr:       fmt.Sprintf("%s:%s", host, port),
		auth:       auth,
		from:       from,
		ownerEmail: ownerEmail,
	}
}

func (s *SMTPNotifier) NotifyOwner(b Booking) error {
	subject := fmt.Sprintf("New appointment %s %s - %s", b.Date, b.Time, b.Name)
	body := fmt.Sprintf(
		"A new appointment was booked.\r\n\r\n"+
			"Date: %s\r\nTime: %s\r\nName: %s\r\nEmail: %s\r\nPhone: %s\r\nTopic: %s\r\n"+
			"Reference: %s\r\nCalendar event: %s\r\n",
		b.Date, b.Time, b.Name, b.Email, b.Phone, b.Topic, b.Reference, b.EventID,
	)
	return s.Send(s.ownerEmail, subject, body)
}

func (s *SMTPNotifier) NotifyCustomer(b Booking) error {
	subject := fmt.Sprintf("Your appointment on %s at %s", b.Date, b.Time)
	body := fmt.Sprintf(
		"Hello %s,\r\n\r\n"+
			"your appointment is confirmed.\r\n\r\n"+
			"Date: %s\r\nTime: %s\r\nTopic: %s\r\nReference: %s\r\n\r\n"+
			"If you need to reschedule, reply to this email.\r\n",
		b.Name, b.Date, b.Time, b.Topic, b.Reference,
	)
	return s.Send(b.Email, subject, body)
}

func (s *SMTPNotifier) Send(to, subject, body string) error {
	msg := buildMessage(s.from, to, subject, body)
	return smtp.SendMail(s.addr, s.auth, s.from, []string{to}, []byte(msg))
}

func buildMessage(from, to, subject, body string) string {
	// Minimal RFC 5322 message; enough for common SMTP relays.
	return fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		from, to, subject, body,
	)
}
