// Package notify sends booking confirmations to patients.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wolfman30/therapy-booking/internal/appointments"
	"github.com/wolfman30/therapy-booking/internal/calendar"
	"github.com/wolfman30/therapy-booking/pkg/logging"
)

// Confirmation is everything the confirmation email needs.
type Confirmation struct {
	Email       string
	Appointment appointments.Appointment
	Artifacts   calendar.Artifacts
	Location    *time.Location
}

// Service turns confirmed bookings into emails.
type Service struct {
	email  EmailSender
	logger *logging.Logger
}

// NewService creates a notification service. A nil sender disables email.
func NewService(email EmailSender, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{email: email, logger: logger}
}

// NotifyBookingConfirmed emails the patient their session details with the .ics attached.
func (s *Service) NotifyBookingConfirmed(ctx context.Context, c Confirmation) error {
	if s == nil || s.email == nil {
		return nil
	}
	if strings.TrimSpace(c.Email) == "" {
		s.logger.Debug("notify: no patient email, skipping confirmation", "appointment_id", c.Appointment.ID)
		return nil
	}

	msg := BuildConfirmationEmail(c)
	if err := s.email.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: send confirmation: %w", err)
	}
	s.logger.Info("booking confirmation sent", "appointment_id", c.Appointment.ID)
	return nil
}

// BuildConfirmationEmail renders the plain-text confirmation.
func BuildConfirmationEmail(c Confirmation) EmailMessage {
	a := c.Appointment
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	when := a.Date + " " + a.Time
	if start, err := a.StartsAt(loc); err == nil {
		when = start.Format("Monday, 2 January 2006 at 3:04 PM MST")
	}

	var b strings.Builder
	name := "there"
	if a.Patient != nil && a.Patient.Name != "" {
		name = a.Patient.Name
	}
	fmt.Fprintf(&b, "Hi %s,\n\n", name)
	fmt.Fprintf(&b, "Your %s with %s is confirmed for %s (%d minutes).\n", sessionLabel(a.Type), a.Therapist.Name, when, a.SessionMinutes())
	if a.MeetingLink != "" {
		fmt.Fprintf(&b, "\nJoin link (opens 15 minutes before start): %s\n", a.MeetingLink)
	}
	if a.Fee > 0 {
		fmt.Fprintf(&b, "\nAmount paid: Rs %d", a.Fee)
		if a.InvoiceNumber != "" {
			fmt.Fprintf(&b, " (invoice %s)", a.InvoiceNumber)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "You can reschedule up to %d more time(s).\n", a.ReschedulesLeft)
	if c.Artifacts.GoogleURL != "" {
		fmt.Fprintf(&b, "\nAdd to Google Calendar: %s\n", c.Artifacts.GoogleURL)
	}
	if c.Artifacts.OutlookURL != "" {
		fmt.Fprintf(&b, "Add to Outlook: %s\n", c.Artifacts.OutlookURL)
	}

	msg := EmailMessage{
		To:      c.Email,
		Subject: fmt.Sprintf("Confirmed: %s with %s", sessionLabel(a.Type), a.Therapist.Name),
		Body:    b.String(),
	}
	if a.Patient != nil {
		msg.ToName = a.Patient.Name
	}
	if c.Artifacts.ICS != "" {
		msg.Attachments = append(msg.Attachments, Attachment{
			Filename:    a.ID + ".ics",
			ContentType: "text/calendar",
			Content:     []byte(c.Artifacts.ICS),
		})
	}
	return msg
}

func sessionLabel(t appointments.Type) string {
	switch t {
	case appointments.TypeAssessment:
		return "free assessment"
	case appointments.TypeFollowUp:
		return "follow-up session"
	default:
		return "therapy session"
	}
}
