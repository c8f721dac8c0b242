package appointments

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/therapy-booking/internal/clock"
	"github.com/wolfman30/therapy-booking/internal/observability/metrics"
	"github.com/wolfman30/therapy-booking/internal/persistence"
	"github.com/wolfman30/therapy-booking/pkg/logging"
)

var storeTracer = otel.Tracer("therapy.internal.appointments")

// Options configures a Store. Zero values fall back to the wall clock, UTC,
// the default logger and no metrics.
type Options struct {
	Clock    clock.Clock
	Location *time.Location
	Logger   *logging.Logger
	Metrics  *metrics.BookingMetrics
	// SeedDemo fills an empty or unreadable collection with demo appointments.
	SeedDemo bool
	// NewID overrides id generation in tests.
	NewID func() string
}

// Store owns the appointment collection and persists the whole of it after every
// mutation. Mutations are applied to a copy and only swapped in once the write
// succeeds, so a failed write leaves the in-memory view unchanged.
type Store struct {
	mu      sync.RWMutex
	items   []Appointment
	port    persistence.Port
	clock   clock.Clock
	loc     *time.Location
	logger  *logging.Logger
	metrics *metrics.BookingMetrics
	newID   func() string
}

// NewStore loads the persisted collection from port.
func NewStore(ctx context.Context, port persistence.Port, opts Options) (*Store, error) {
	if port == nil {
		panic("appointments: persistence port required")
	}
	s := &Store{
		port:    port,
		clock:   clock.OrSystem(opts.Clock),
		loc:     opts.Location,
		logger:  opts.Logger,
		metrics: opts.Metrics,
		newID:   opts.NewID,
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.logger == nil {
		s.logger = logging.Default()
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}

	raw, ok, err := port.Load(ctx, persistence.KeyAppointments)
	if err != nil {
		return nil, fmt.Errorf("appointments: load: %w", err)
	}
	switch {
	case !ok:
		if opts.SeedDemo {
			s.items = SeedAppointments(s.clock.Now(), s.loc)
			s.logger.Info("appointments seeded with demo data", "count", len(s.items))
		}
	default:
		var items []Appointment
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			s.logger.Warn("persisted appointments unreadable, falling back to seed", "error", err)
			if opts.SeedDemo {
				items = SeedAppointments(s.clock.Now(), s.loc)
			} else {
				items = nil
			}
		}
		s.items = items
	}
	return s, nil
}

// Location is the zone Date and Time are interpreted in.
func (s *Store) Location() *time.Location { return s.loc }

// Create assigns an id, defaults the reschedule budget, appends and persists.
func (s *Store) Create(ctx context.Context, data NewAppointment) (Appointment, error) {
	appt := Appointment{
		ID:              s.newID(),
		Therapist:       data.Therapist,
		Patient:         data.Patient,
		Date:            data.Date,
		Time:            data.Time,
		Duration:        data.Duration,
		Type:            data.Type,
		Status:          data.Status,
		Fee:             data.Fee,
		MeetingLink:     data.MeetingLink,
		Notes:           data.Notes,
		Rating:          data.Rating,
		ReschedulesLeft: DefaultReschedules,
		PaymentStatus:   data.PaymentStatus,
		InvoiceNumber:   data.InvoiceNumber,
		CreatedAt:       s.clock.Now().UTC(),
	}
	if data.ReschedulesLeft != nil {
		appt.ReschedulesLeft = *data.ReschedulesLeft
	}
	if appt.Type == "" {
		appt.Type = TypeConsultation
	}
	if appt.Duration <= 0 {
		appt.Duration = appt.Type.DefaultDuration()
	}
	if appt.Status == "" {
		appt.Status = StatusUpcoming
	}
	if appt.PaymentStatus == "" {
		appt.PaymentStatus = PaymentPaid
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next := append(slices.Clone(s.items), appt)
	if err := s.commit(ctx, next); err != nil {
		return Appointment{}, err
	}
	s.metrics.ObserveAppointmentEvent("created")
	s.logger.Info("appointment created",
		"appointment_id", appt.ID,
		"therapist_id", appt.Therapist.ID,
		"type", appt.Type,
		"date", appt.Date,
		"time", appt.Time,
		"fee", appt.Fee,
	)
	return appt, nil
}

// Update merges patch into the appointment. An unknown id is a no-op.
// Status changes out of a terminal state and fee changes to a free assessment are ignored.
func (s *Store) Update(ctx context.Context, id string, patch Patch) error {
	if patch.Rating != nil && (*patch.Rating < 1 || *patch.Rating > 5) {
		return ErrInvalidRating
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, *patch.Status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return nil
	}
	next := slices.Clone(s.items)
	a := next[idx]
	if patch.Status != nil && !a.Status.Terminal() {
		a.Status = *patch.Status
	}
	if patch.Fee != nil && !a.IsFreeAssessment() {
		a.Fee = *patch.Fee
	}
	if patch.Duration != nil && *patch.Duration > 0 {
		a.Duration = *patch.Duration
	}
	if patch.MeetingLink != nil {
		a.MeetingLink = *patch.MeetingLink
	}
	if patch.Notes != nil {
		a.Notes = *patch.Notes
	}
	if patch.Rating != nil {
		r := *patch.Rating
		a.Rating = &r
	}
	if patch.PaymentStatus != nil {
		a.PaymentStatus = *patch.PaymentStatus
	}
	if patch.InvoiceNumber != nil {
		a.InvoiceNumber = *patch.InvoiceNumber
	}
	if patch.Patient != nil {
		p := *patch.Patient
		a.Patient = &p
	}
	next[idx] = a
	if err := s.commit(ctx, next); err != nil {
		return err
	}
	s.metrics.ObserveAppointmentEvent("updated")
	return nil
}

// Cancel moves the appointment to Cancelled and marks a paid fee as refunded.
// The reason is logged but not stored. Unknown ids and terminal appointments are no-ops.
func (s *Store) Cancel(ctx context.Context, id, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 || s.items[idx].Status.Terminal() {
		return nil
	}
	next := slices.Clone(s.items)
	a := next[idx]
	a.Status = StatusCancelled
	if a.Fee > 0 {
		a.PaymentStatus = PaymentRefunded
	}
	next[idx] = a
	if err := s.commit(ctx, next); err != nil {
		return err
	}
	s.metrics.ObserveAppointmentEvent("cancelled")
	s.logger.Info("appointment cancelled",
		"appointment_id", id,
		"reason", reason,
		"payment_status", a.PaymentStatus,
	)
	return nil
}

// Reschedule moves the appointment to newDate/newTime and spends one reschedule.
// It returns false without mutating anything when the id is unknown, the budget is
// spent, or the appointment is already completed or cancelled. The error is only
// set when persisting fails.
func (s *Store) Reschedule(ctx context.Context, id, newDate, newTime string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.metrics.ObserveRescheduleRejected("not_found")
		return false, nil
	}
	a := s.items[idx]
	if a.ReschedulesLeft <= 0 {
		s.metrics.ObserveRescheduleRejected("budget_exhausted")
		s.logger.Info("reschedule rejected: no reschedules left", "appointment_id", id)
		return false, nil
	}
	if a.Status.Terminal() {
		s.metrics.ObserveRescheduleRejected("terminal")
		return false, nil
	}

	next := slices.Clone(s.items)
	a.Date = newDate
	a.Time = newTime
	a.ReschedulesLeft--
	next[idx] = a
	if err := s.commit(ctx, next); err != nil {
		return false, err
	}
	s.metrics.ObserveAppointmentEvent("rescheduled")
	s.logger.Info("appointment rescheduled",
		"appointment_id", id,
		"date", newDate,
		"time", newTime,
		"reschedules_left", a.ReschedulesLeft,
	)
	return true, nil
}

// Get returns one appointment.
func (s *Store) Get(id string) (Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return Appointment{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.items[idx], nil
}

// All returns the collection in insertion order.
func (s *Store) All() []Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

// Upcoming returns Upcoming and InProgress appointments, earliest first.
func (s *Store) Upcoming() []Appointment {
	out := s.filter(func(a Appointment) bool {
		return a.Status == StatusUpcoming || a.Status == StatusInProgress
	})
	s.sortChronological(out, false)
	return out
}

// Past returns Completed and Cancelled appointments, most recent first.
func (s *Store) Past() []Appointment {
	out := s.filter(func(a Appointment) bool { return a.Status.Terminal() })
	s.sortChronological(out, true)
	return out
}

// NextAppointment is the earliest Upcoming appointment starting strictly after now.
func (s *Store) NextAppointment() (Appointment, bool) {
	now := s.clock.Now()
	var (
		best      Appointment
		bestStart time.Time
		found     bool
	)
	for _, a := range s.filter(func(a Appointment) bool { return a.Status == StatusUpcoming }) {
		start, err := a.StartsAt(s.loc)
		if err != nil || !start.After(now) {
			continue
		}
		if !found || start.Before(bestStart) {
			best, bestStart, found = a, start, true
		}
	}
	return best, found
}

// TotalCompletedSessions counts Completed appointments.
func (s *Store) TotalCompletedSessions() int {
	return len(s.filter(func(a Appointment) bool { return a.Status == StatusCompleted }))
}

// TotalCompletedHours sums completed durations in hours, rounded to one decimal.
func (s *Store) TotalCompletedHours() float64 {
	minutes := 0
	for _, a := range s.filter(func(a Appointment) bool { return a.Status == StatusCompleted }) {
		minutes += a.Duration
	}
	return math.Round(float64(minutes)/60*10) / 10
}

// Stats aggregates the dashboard numbers in one read.
func (s *Store) Stats() Stats {
	st := Stats{
		TotalSessions: s.TotalCompletedSessions(),
		TotalHours:    s.TotalCompletedHours(),
		Upcoming:      len(s.Upcoming()),
	}
	st.Cancelled = len(s.filter(func(a Appointment) bool { return a.Status == StatusCancelled }))
	return st
}

func (s *Store) filter(keep func(Appointment) bool) []Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Appointment
	for _, a := range s.items {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}

// sortChronological orders by the combined date and time. Unparsable schedules
// sort as the zero instant.
func (s *Store) sortChronological(items []Appointment, descending bool) {
	key := func(a Appointment) time.Time {
		t, err := a.StartsAt(s.loc)
		if err != nil {
			return time.Time{}
		}
		return t
	}
	sort.SliceStable(items, func(i, j int) bool {
		if descending {
			return key(items[i]).After(key(items[j]))
		}
		return key(items[i]).Before(key(items[j]))
	})
}

func (s *Store) indexOf(id string) int {
	for i, a := range s.items {
		if a.ID == id {
			return i
		}
	}
	return -1
}

// commit persists next and swaps it in. Callers hold s.mu.
func (s *Store) commit(ctx context.Context, next []Appointment) error {
	ctx, span := storeTracer.Start(ctx, "appointments.commit")
	defer span.End()
	span.SetAttributes(attribute.Int("appointments.count", len(next)))

	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("appointments: encode: %w", err)
	}
	start := time.Now()
	if err := s.port.Save(ctx, persistence.KeyAppointments, string(data)); err != nil {
		span.RecordError(err)
		s.logger.Error("failed to persist appointments", "error", err)
		return fmt.Errorf("appointments: persist: %w", err)
	}
	s.metrics.ObservePersistLatency(persistence.KeyAppointments, time.Since(start).Seconds())
	s.items = next
	return nil
}
