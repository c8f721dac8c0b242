// Package appointments is the authoritative appointment collection: creation,
// rescheduling under a fixed budget, cancellation, and the time-derived views
// (upcoming/past ordering, next session, join windows) built on an injected clock.
package appointments

import (
	"fmt"
	"strings"
	"time"

	"github.com/wolfman30/therapy-booking/internal/catalog"
)

// DefaultReschedules is the reschedule budget every new appointment starts with.
const DefaultReschedules = 2

// Status tracks an appointment's lifecycle. Completed and Cancelled are terminal.
type Status string

const (
	StatusUpcoming   Status = "upcoming"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Terminal reports whether no operation may move the appointment out of s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusUpcoming, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Type is the kind of session booked.
type Type string

const (
	TypeAssessment   Type = "assessment"
	TypeConsultation Type = "consultation"
	TypeFollowUp     Type = "follow-up"
)

// DefaultDuration is the session length in minutes: 30 for assessments, 50 otherwise.
func (t Type) DefaultDuration() int {
	if t == TypeAssessment {
		return 30
	}
	return 50
}

// PaymentStatus tracks the money side of an appointment.
type PaymentStatus string

const (
	PaymentPaid     PaymentStatus = "paid"
	PaymentPending  PaymentStatus = "pending"
	PaymentRefunded PaymentStatus = "refunded"
)

// TherapistSnapshot is the therapist summary frozen onto an appointment at booking
// time. It is never re-joined against the catalog.
type TherapistSnapshot struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Photo          string `json:"photo,omitempty"`
	Specialization string `json:"specialization,omitempty"`
}

// SnapshotTherapist copies the display fields of t.
func SnapshotTherapist(t catalog.Therapist) TherapistSnapshot {
	return TherapistSnapshot{
		ID:             t.ID,
		Name:           t.Name,
		Photo:          t.Photo,
		Specialization: t.PrimarySpecialization(),
	}
}

// PatientSnapshot is the optional patient summary captured at booking time.
type PatientSnapshot struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Photo string `json:"photo,omitempty"`
}

// Appointment is a booked session. Date is YYYY-MM-DD and Time is a local clock
// time (HH:MM, or h:MM AM/PM), both in the store's location.
type Appointment struct {
	ID              string            `json:"id"`
	Therapist       TherapistSnapshot `json:"therapist"`
	Patient         *PatientSnapshot  `json:"patient,omitempty"`
	Date            string            `json:"date"`
	Time            string            `json:"time"`
	Duration        int               `json:"duration"`
	Type            Type              `json:"type"`
	Status          Status            `json:"status"`
	Fee             int64             `json:"fee"`
	MeetingLink     string            `json:"meetingLink,omitempty"`
	Notes           string            `json:"notes,omitempty"`
	Rating          *int              `json:"rating,omitempty"`
	ReschedulesLeft int               `json:"reschedulesLeft"`
	PaymentStatus   PaymentStatus     `json:"paymentStatus"`
	InvoiceNumber   string            `json:"invoiceNumber,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
}

// StartsAt combines Date and Time into an instant in loc.
func (a Appointment) StartsAt(loc *time.Location) (time.Time, error) {
	return CombineDateTime(a.Date, a.Time, loc)
}

// EndsAt is the start plus the session duration.
func (a Appointment) EndsAt(loc *time.Location) (time.Time, error) {
	start, err := a.StartsAt(loc)
	if err != nil {
		return time.Time{}, err
	}
	return start.Add(time.Duration(a.SessionMinutes()) * time.Minute), nil
}

// SessionMinutes is the recorded duration, or the type default when unset.
func (a Appointment) SessionMinutes() int {
	if a.Duration > 0 {
		return a.Duration
	}
	return a.Type.DefaultDuration()
}

// IsFreeAssessment reports the permanent free-assessment marker.
func (a Appointment) IsFreeAssessment() bool {
	return a.Type == TypeAssessment && a.Fee == 0
}

var timeLayouts = []string{"15:04", "15:04:05", "3:04 PM", "03:04 PM", "3:04PM"}

// CombineDateTime parses a YYYY-MM-DD date and a clock time in loc.
func CombineDateTime(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	day, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(date), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q", ErrInvalidSchedule, date)
	}
	clock = strings.ToUpper(strings.TrimSpace(clock))
	for _, layout := range timeLayouts {
		tod, err := time.Parse(layout, clock)
		if err != nil {
			continue
		}
		return time.Date(day.Year(), day.Month(), day.Day(), tod.Hour(), tod.Minute(), tod.Second(), 0, loc), nil
	}
	return time.Time{}, fmt.Errorf("%w: time %q", ErrInvalidSchedule, clock)
}

// NewAppointment is the payload for Store.Create. A nil ReschedulesLeft defaults
// to DefaultReschedules.
type NewAppointment struct {
	Therapist       TherapistSnapshot
	Patient         *PatientSnapshot
	Date            string
	Time            string
	Duration        int
	Type            Type
	Status          Status
	Fee             int64
	MeetingLink     string
	Notes           string
	Rating          *int
	ReschedulesLeft *int
	PaymentStatus   PaymentStatus
	InvoiceNumber   string
}

// Patch holds the fields Update may merge. Date and time only change through
// Reschedule so the budget cannot be bypassed.
type Patch struct {
	Status        *Status          `json:"status,omitempty"`
	Fee           *int64           `json:"fee,omitempty"`
	Duration      *int             `json:"duration,omitempty"`
	MeetingLink   *string          `json:"meetingLink,omitempty"`
	Notes         *string          `json:"notes,omitempty"`
	Rating        *int             `json:"rating,omitempty"`
	PaymentStatus *PaymentStatus   `json:"paymentStatus,omitempty"`
	InvoiceNumber *string          `json:"invoiceNumber,omitempty"`
	Patient       *PatientSnapshot `json:"patient,omitempty"`
}

// Stats aggregates the dashboard numbers.
type Stats struct {
	TotalSessions int     `json:"totalSessions"`
	TotalHours    float64 `json:"totalHours"`
	Upcoming      int     `json:"upcoming"`
	Cancelled     int     `json:"cancelled"`
}
