package booking

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/therapy-booking/internal/appointments"
	"github.com/wolfman30/therapy-booking/internal/calendar"
	"github.com/wolfman30/therapy-booking/internal/catalog"
	"github.com/wolfman30/therapy-booking/internal/clock"
	"github.com/wolfman30/therapy-booking/internal/draft"
	"github.com/wolfman30/therapy-booking/internal/matching"
	"github.com/wolfman30/therapy-booking/internal/notify"
	"github.com/wolfman30/therapy-booking/internal/observability/metrics"
	"github.com/wolfman30/therapy-booking/internal/persistence"
	"github.com/wolfman30/therapy-booking/pkg/logging"
)

var now = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

type recordingSender struct{ sent []notify.EmailMessage }

func (r *recordingSender) Send(_ context.Context, msg notify.EmailMessage) error {
	r.sent = append(r.sent, msg)
	return nil
}

type fakeS3 struct{ keys []string }

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	_, _ = io.ReadAll(in.Body)
	f.keys = append(f.keys, *in.Key)
	return &s3.PutObjectOutput{}, nil
}

// togglePort fails saves of the appointment collection on demand.
type togglePort struct {
	persistence.Port
	failAppointments bool
}

func (p *togglePort) Save(ctx context.Context, key, value string) error {
	if p.failAppointments && key == persistence.KeyAppointments {
		return errors.New("write refused")
	}
	return p.Port.Save(ctx, key, value)
}

type fixture struct {
	svc     *Service
	drafts  *draft.Service
	store   *appointments.Store
	port    *togglePort
	clock   *clock.Fixed
	email   *recordingSender
	s3      *fakeS3
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	port := &togglePort{Port: persistence.NewMemoryStore()}
	c := clock.NewFixed(now)
	cat := catalog.Default()
	logger := logging.Discard()
	m := metrics.NewBookingMetrics(prometheus.NewRegistry())

	n := 0
	store, err := appointments.NewStore(ctx, port, appointments.Options{
		Clock:   c,
		Logger:  logger,
		Metrics: m,
		NewID: func() string {
			n++
			return fmt.Sprintf("apt-%d", n)
		},
	})
	require.NoError(t, err)
	drafts, err := draft.NewService(ctx, port, cat, logger)
	require.NoError(t, err)

	email := &recordingSender{}
	s3c := &fakeS3{}
	svc := NewService(Deps{
		Drafts:         drafts,
		Appointments:   store,
		Matcher:        matching.NewMatcher(cat),
		Clock:          c,
		Publisher:      calendar.NewPublisher(s3c, "calendars", logger),
		Notifier:       notify.NewService(email, logger),
		Metrics:        m,
		Logger:         logger,
		MeetingBaseURL: "https://meet.example/session/",
	})
	svc.newToken = func() string { return "3f2a9c1e-0000-4000-8000-000000000000" }
	return &fixture{svc: svc, drafts: drafts, store: store, port: port, clock: c, email: email, s3: s3c}
}

func (f *fixture) fillDraft(t *testing.T, therapistID string, pkg catalog.PackageKey) {
	t.Helper()
	ctx := context.Background()
	th, err := catalog.Default().Therapist(therapistID)
	require.NoError(t, err)
	require.NoError(t, f.drafts.SetTherapist(ctx, th))
	require.NoError(t, f.drafts.SetPackage(ctx, pkg))
	require.NoError(t, f.drafts.SetDateTime(ctx, "2025-06-03", "18:00"))
}

func TestConfirmRejectsIncompleteDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	th, _ := catalog.Default().Therapist("th-001")
	require.NoError(t, f.drafts.SetTherapist(ctx, th))

	_, err := f.svc.Confirm(ctx, ConfirmRequest{})
	assert.ErrorIs(t, err, ErrIncompleteDraft)
	assert.True(t, IsValidation(err))
	assert.Empty(t, f.store.All())
	assert.NotNil(t, f.drafts.Current().Therapist)
}

func TestConfirmBooksDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fillDraft(t, "th-002", catalog.PackageStarter)

	conf, err := f.svc.Confirm(ctx, ConfirmRequest{
		Patient: &appointments.PatientSnapshot{ID: "pt-1", Name: "Asha"},
		Email:   "asha@example.com",
	})
	require.NoError(t, err)

	appt := conf.Appointment
	assert.Equal(t, "apt-1", appt.ID)
	assert.Equal(t, appointments.TypeConsultation, appt.Type)
	assert.Equal(t, 50, appt.Duration)
	assert.Equal(t, int64(5899), appt.Fee)
	assert.Equal(t, appointments.PaymentPaid, appt.PaymentStatus)
	assert.Equal(t, 2, appt.ReschedulesLeft)
	assert.Equal(t, "https://meet.example/session/3f2a9c1e-0000-4000-8000-000000000000", appt.MeetingLink)
	assert.Equal(t, "INV-20250601-3F2A9C1E", appt.InvoiceNumber)
	assert.Equal(t, "Couples Therapy", appt.Therapist.Specialization)
	assert.Equal(t, int64(900), conf.Quote.Tax)

	assert.Contains(t, conf.Calendar.ICS, "DTSTART:20250603T180000Z")
	assert.Equal(t, "s3://calendars/appointments/apt-1.ics", conf.CalendarLocation)
	assert.Equal(t, []string{"appointments/apt-1.ics"}, f.s3.keys)
	require.Len(t, f.email.sent, 1)
	assert.Len(t, f.email.sent[0].Attachments, 1)

	assert.True(t, f.drafts.Current().Empty())
	_, ok, err := f.port.Load(ctx, persistence.KeyBookingDraft)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConfirmMarksFollowUp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.store.Create(ctx, appointments.NewAppointment{
		Therapist: appointments.TherapistSnapshot{ID: "th-002", Name: "Dr. Rohan Mehta"},
		Date:      "2025-05-20",
		Time:      "18:00",
		Status:    appointments.StatusCompleted,
		Fee:       1769,
	})
	require.NoError(t, err)
	f.fillDraft(t, "th-002", catalog.PackageSingle)

	conf, err := f.svc.Confirm(ctx, ConfirmRequest{})
	require.NoError(t, err)
	assert.Equal(t, appointments.TypeFollowUp, conf.Appointment.Type)
}

func TestConfirmAssessmentDraftIsFree(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	th, _ := catalog.Default().Therapist("th-004")
	require.NoError(t, f.drafts.SetTherapist(ctx, th))
	require.NoError(t, f.drafts.SetIsAssessment(ctx, true))
	require.NoError(t, f.drafts.SetDateTime(ctx, "2025-06-02", "11:00"))

	conf, err := f.svc.Confirm(ctx, ConfirmRequest{})
	require.NoError(t, err)
	assert.True(t, conf.Appointment.IsFreeAssessment())
	assert.Equal(t, 30, conf.Appointment.Duration)
	assert.Empty(t, conf.Appointment.InvoiceNumber)
	assert.Contains(t, conf.Calendar.ICS, "DTEND:20250602T113000Z")
}

func TestConfirmKeepsDraftWhenPersistFails(t *testing.T) {
	f := newFixture(t)
	f.fillDraft(t, "th-001", catalog.PackageSingle)
	f.port.failAppointments = true

	_, err := f.svc.Confirm(context.Background(), ConfirmRequest{})
	require.Error(t, err)
	assert.False(t, IsValidation(err))
	assert.NotNil(t, f.drafts.Current().Therapist)
	assert.Empty(t, f.store.All())
}

func TestConfirmRejectsUnparsableSchedule(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fillDraft(t, "th-001", catalog.PackageSingle)
	require.NoError(t, f.drafts.SetDateTime(ctx, "2025-06-03", "teatime"))

	_, err := f.svc.Confirm(ctx, ConfirmRequest{})
	assert.ErrorIs(t, err, appointments.ErrInvalidSchedule)
	assert.Empty(t, f.store.All())
}

func TestBookAssessment(t *testing.T) {
	f := newFixture(t)
	conf, err := f.svc.BookAssessment(context.Background(), AssessmentRequest{
		Concerns: []catalog.Concern{catalog.ConcernTrauma},
		Date:     "2025-06-02",
		Time:     "3:00 PM",
		Email:    "pt@example.com",
	})
	require.NoError(t, err)
	appt := conf.Appointment
	assert.Equal(t, "th-003", appt.Therapist.ID)
	assert.Equal(t, appointments.TypeAssessment, appt.Type)
	assert.Equal(t, int64(0), appt.Fee)
	assert.Equal(t, 30, appt.Duration)
	assert.Equal(t, 2, appt.ReschedulesLeft)
	assert.Len(t, f.email.sent, 1)
}

func TestBookAssessmentRequiresSchedule(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.BookAssessment(context.Background(), AssessmentRequest{Concerns: []catalog.Concern{catalog.ConcernSleep}})
	assert.ErrorIs(t, err, ErrMissingSchedule)
	assert.Empty(t, f.store.All())
}

func TestRefundQuote(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	appt, err := f.store.Create(ctx, appointments.NewAppointment{
		Therapist: appointments.TherapistSnapshot{ID: "th-001", Name: "Dr. Ananya Sharma"},
		Date:      "2025-06-04",
		Time:      "09:00",
		Fee:       1769,
	})
	require.NoError(t, err)

	q, err := f.svc.RefundQuote(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, q.Tier.Percent)
	assert.Equal(t, int64(1769), q.Amount)
	assert.InDelta(t, 72.0, q.HoursBefore, 0.001)

	f.clock.Advance(42 * time.Hour)
	q, err = f.svc.RefundQuote(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, q.Tier.Percent)
	assert.Equal(t, int64(885), q.Amount)

	f.clock.Advance(12 * time.Hour)
	q, err = f.svc.RefundQuote(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, q.Tier.Percent)
	assert.Equal(t, int64(0), q.Amount)

	_, err = f.svc.RefundQuote(ctx, "missing")
	assert.ErrorIs(t, err, appointments.ErrNotFound)
}
