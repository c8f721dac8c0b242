// Package booking turns a completed draft, or a questionnaire submission, into
// a confirmed appointment with calendar artifacts and a confirmation email.
package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/therapy-booking/internal/appointments"
	"github.com/wolfman30/therapy-booking/internal/calendar"
	"github.com/wolfman30/therapy-booking/internal/catalog"
	"github.com/wolfman30/therapy-booking/internal/clock"
	"github.com/wolfman30/therapy-booking/internal/draft"
	"github.com/wolfman30/therapy-booking/internal/matching"
	"github.com/wolfman30/therapy-booking/internal/notify"
	"github.com/wolfman30/therapy-booking/internal/observability/metrics"
	"github.com/wolfman30/therapy-booking/internal/pricing"
	"github.com/wolfman30/therapy-booking/pkg/logging"
)

var bookingTracer = otel.Tracer("therapy.internal.booking")

// Deps wires a Service. Publisher, Notifier and Metrics are optional.
type Deps struct {
	Drafts       *draft.Service
	Appointments *appointments.Store
	Matcher      *matching.Matcher
	Clock        clock.Clock
	Publisher    *calendar.Publisher
	Notifier     *notify.Service
	Metrics      *metrics.BookingMetrics
	Logger       *logging.Logger

	MeetingBaseURL    string
	CalendarProductID string
}

// Service orchestrates confirmation.
type Service struct {
	drafts    *draft.Service
	store     *appointments.Store
	matcher   *matching.Matcher
	clock     clock.Clock
	publisher *calendar.Publisher
	notifier  *notify.Service
	metrics   *metrics.BookingMetrics
	logger    *logging.Logger

	meetingBaseURL string
	productID      string
	newToken       func() string
}

// NewService constructs a booking service.
func NewService(deps Deps) *Service {
	if deps.Drafts == nil || deps.Appointments == nil || deps.Matcher == nil {
		panic("booking: drafts, appointments and matcher required")
	}
	if deps.Logger == nil {
		deps.Logger = logging.Default()
	}
	return &Service{
		drafts:         deps.Drafts,
		store:          deps.Appointments,
		matcher:        deps.Matcher,
		clock:          clock.OrSystem(deps.Clock),
		publisher:      deps.Publisher,
		notifier:       deps.Notifier,
		metrics:        deps.Metrics,
		logger:         deps.Logger,
		meetingBaseURL: strings.TrimRight(deps.MeetingBaseURL, "/"),
		productID:      deps.CalendarProductID,
		newToken:       uuid.NewString,
	}
}

// ConfirmRequest carries what the checkout step collects beyond the draft.
type ConfirmRequest struct {
	Patient *appointments.PatientSnapshot `json:"patient,omitempty"`
	Email   string                        `json:"email,omitempty"`
}

// Confirmation is the result of a successful booking.
type Confirmation struct {
	Appointment      appointments.Appointment `json:"appointment"`
	Quote            pricing.Quote            `json:"quote"`
	Calendar         calendar.Artifacts       `json:"calendar"`
	CalendarLocation string                   `json:"calendarLocation,omitempty"`
}

// Confirm books the current draft. The draft is cleared only after the
// appointment has been persisted.
func (s *Service) Confirm(ctx context.Context, req ConfirmRequest) (Confirmation, error) {
	ctx, span := bookingTracer.Start(ctx, "booking.confirm")
	defer span.End()

	d := s.drafts.Current()
	if err := d.Validate(); err != nil {
		s.metrics.ObserveConfirmation("draft", "incomplete")
		span.RecordError(err)
		return Confirmation{}, fmt.Errorf("%w: %v", ErrIncompleteDraft, err)
	}
	if _, err := appointments.CombineDateTime(*d.Date, *d.Time, s.store.Location()); err != nil {
		s.metrics.ObserveConfirmation("draft", "invalid_schedule")
		span.RecordError(err)
		return Confirmation{}, err
	}

	var quote pricing.Quote
	if d.Package != nil {
		quote = pricing.Calculate(*d.Package, d.IsAssessment)
	}
	kind := s.sessionType(*d.Therapist, d.IsAssessment)
	span.SetAttributes(
		attribute.String("therapy.therapist_id", d.Therapist.ID),
		attribute.String("therapy.session_type", string(kind)),
	)

	conf, err := s.book(ctx, appointments.NewAppointment{
		Therapist:     appointments.SnapshotTherapist(*d.Therapist),
		Patient:       req.Patient,
		Date:          *d.Date,
		Time:          *d.Time,
		Type:          kind,
		Fee:           quote.Total,
		PaymentStatus: appointments.PaymentPaid,
	}, req.Email)
	if err != nil {
		span.RecordError(err)
		return Confirmation{}, err
	}
	conf.Quote = quote

	if err := s.drafts.Clear(ctx); err != nil {
		s.logger.Warn("booking confirmed but draft not cleared", "appointment_id", conf.Appointment.ID, "error", err)
	}
	span.SetAttributes(attribute.String("therapy.appointment_id", conf.Appointment.ID))
	return conf, nil
}

// AssessmentRequest is the questionnaire submission for a free assessment.
type AssessmentRequest struct {
	Concerns          []catalog.Concern             `json:"concerns"`
	PreferredGender   catalog.Gender                `json:"preferredGender,omitempty"`
	PreferredLanguage catalog.Language              `json:"preferredLanguage,omitempty"`
	Date              string                        `json:"date"`
	Time              string                        `json:"time"`
	Patient           *appointments.PatientSnapshot `json:"patient,omitempty"`
	Email             string                        `json:"email,omitempty"`
}

// BookAssessment matches a therapist and books a free 30-minute assessment
// without going through the draft.
func (s *Service) BookAssessment(ctx context.Context, req AssessmentRequest) (Confirmation, error) {
	ctx, span := bookingTracer.Start(ctx, "booking.assessment")
	defer span.End()

	if strings.TrimSpace(req.Date) == "" || strings.TrimSpace(req.Time) == "" {
		s.metrics.ObserveConfirmation(string(appointments.TypeAssessment), "incomplete")
		return Confirmation{}, ErrMissingSchedule
	}
	if _, err := appointments.CombineDateTime(req.Date, req.Time, s.store.Location()); err != nil {
		s.metrics.ObserveConfirmation(string(appointments.TypeAssessment), "invalid_schedule")
		return Confirmation{}, err
	}

	therapist, err := s.matcher.Match(matching.Request{
		Concerns:          req.Concerns,
		PreferredGender:   req.PreferredGender,
		PreferredLanguage: req.PreferredLanguage,
	})
	if err != nil {
		span.RecordError(err)
		return Confirmation{}, fmt.Errorf("booking: match: %w", err)
	}
	span.SetAttributes(attribute.String("therapy.therapist_id", therapist.ID))

	conf, err := s.book(ctx, appointments.NewAppointment{
		Therapist:     appointments.SnapshotTherapist(therapist),
		Patient:       req.Patient,
		Date:          req.Date,
		Time:          req.Time,
		Type:          appointments.TypeAssessment,
		Duration:      appointments.TypeAssessment.DefaultDuration(),
		Fee:           0,
		PaymentStatus: appointments.PaymentPaid,
	}, req.Email)
	if err != nil {
		span.RecordError(err)
		return Confirmation{}, err
	}
	return conf, nil
}

// RefundQuote reports what the cancellation policy would return if the
// appointment were cancelled now.
func (s *Service) RefundQuote(ctx context.Context, id string) (pricing.RefundQuote, error) {
	_, span := bookingTracer.Start(ctx, "booking.refund_quote")
	defer span.End()

	appt, err := s.store.Get(id)
	if err != nil {
		return pricing.RefundQuote{}, err
	}
	start, err := appt.StartsAt(s.store.Location())
	if err != nil {
		return pricing.RefundQuote{}, err
	}
	hours := start.Sub(s.clock.Now()).Hours()
	return pricing.QuoteRefund(appt.Fee, hours), nil
}

// CalendarFor builds calendar artifacts for an existing appointment.
func (s *Service) CalendarFor(id string) (calendar.Artifacts, error) {
	appt, err := s.store.Get(id)
	if err != nil {
		return calendar.Artifacts{}, err
	}
	return calendar.BuildArtifacts(appt, s.calendarOptions())
}

func (s *Service) book(ctx context.Context, data appointments.NewAppointment, email string) (Confirmation, error) {
	token := s.newToken()
	if s.meetingBaseURL != "" {
		data.MeetingLink = s.meetingBaseURL + "/" + token
	}
	if data.Fee > 0 {
		data.InvoiceNumber = invoiceNumber(s.clock.Now().In(s.store.Location()).Format("20060102"), token)
	}

	appt, err := s.store.Create(ctx, data)
	if err != nil {
		s.metrics.ObserveConfirmation(string(data.Type), "error")
		return Confirmation{}, fmt.Errorf("booking: create appointment: %w", err)
	}
	s.metrics.ObserveConfirmation(string(appt.Type), "confirmed")

	conf := Confirmation{Appointment: appt}
	artifacts, err := calendar.BuildArtifacts(appt, s.calendarOptions())
	if err != nil {
		s.logger.Warn("calendar artifacts unavailable", "appointment_id", appt.ID, "error", err)
		return conf, nil
	}
	conf.Calendar = artifacts

	if s.publisher.Enabled() {
		loc, err := s.publisher.Publish(ctx, appt.ID, artifacts.ICS)
		if err != nil {
			s.logger.Warn("calendar publish failed", "appointment_id", appt.ID, "error", err)
		}
		conf.CalendarLocation = loc
	}
	if err := s.notifier.NotifyBookingConfirmed(ctx, notify.Confirmation{
		Email:       email,
		Appointment: appt,
		Artifacts:   artifacts,
		Location:    s.store.Location(),
	}); err != nil {
		s.logger.Warn("confirmation email failed", "appointment_id", appt.ID, "error", err)
	}

	s.logger.Info("booking confirmed",
		"appointment_id", appt.ID,
		"therapist_id", appt.Therapist.ID,
		"type", appt.Type,
		"fee", appt.Fee,
	)
	return conf, nil
}

// sessionType is Assessment for the free path, FollowUp once the patient has a
// completed session with this therapist, Consultation otherwise.
func (s *Service) sessionType(t catalog.Therapist, isAssessment bool) appointments.Type {
	if isAssessment {
		return appointments.TypeAssessment
	}
	for _, a := range s.store.Past() {
		if a.Therapist.ID == t.ID && a.Status == appointments.StatusCompleted {
			return appointments.TypeFollowUp
		}
	}
	return appointments.TypeConsultation
}

func (s *Service) calendarOptions() calendar.Options {
	return calendar.Options{
		Location:  s.store.Location(),
		ProductID: s.productID,
	}
}

func invoiceNumber(day, token string) string {
	short := strings.ToUpper(strings.ReplaceAll(token, "-", ""))
	if len(short) > 8 {
		short = short[:8]
	}
	return "INV-" + day + "-" + short
}

// IsValidation reports whether err is a caller mistake rather than a backend failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrIncompleteDraft) ||
		errors.Is(err, ErrMissingSchedule) ||
		errors.Is(err, appointments.ErrInvalidSchedule)
}
