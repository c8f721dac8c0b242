// Package calendar turns an appointment into add-to-calendar links and a
// single-event iCalendar file.
package calendar

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/wolfman30/therapy-booking/internal/appointments"
)

// DefaultProductID identifies this producer in PRODID.
const DefaultProductID = "-//Therapy Booking//Sessions//EN"

const (
	googleBase  = "https://calendar.google.com/calendar/render"
	outlookBase = "https://outlook.live.com/calendar/0/deeplink/compose"

	utcBasic   = "20060102T150405Z"
	outlookISO = "2006-01-02T15:04:05Z"
)

// ErrNoSchedule is returned when the appointment date or time cannot be parsed.
var ErrNoSchedule = errors.New("calendar: appointment has no usable schedule")

// Options controls artifact generation.
type Options struct {
	// Location is the zone the appointment's date and time are in. Nil means UTC.
	Location *time.Location
	// Stamp is written to DTSTAMP. Zero means the appointment's CreatedAt.
	Stamp     time.Time
	ProductID string
}

// Artifacts are three encodings of the same event.
type Artifacts struct {
	GoogleURL  string `json:"googleUrl"`
	OutlookURL string `json:"outlookUrl"`
	ICS        string `json:"icsContent"`
}

// Event is the normalized event all artifacts are rendered from.
type Event struct {
	UID         string
	Start       time.Time
	End         time.Time
	Stamp       time.Time
	Summary     string
	Description string
	Location    string
}

// EventFor derives the calendar event for appt.
func EventFor(appt appointments.Appointment, opts Options) (Event, error) {
	start, err := appt.StartsAt(opts.Location)
	if err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrNoSchedule, err)
	}
	minutes := appt.Type.DefaultDuration()
	stamp := opts.Stamp
	if stamp.IsZero() {
		stamp = appt.CreatedAt
	}
	if stamp.IsZero() {
		stamp = start
	}
	return Event{
		UID:         appt.ID + "@therapy-booking",
		Start:       start.UTC(),
		End:         start.Add(time.Duration(minutes) * time.Minute).UTC(),
		Stamp:       stamp.UTC(),
		Summary:     summary(appt),
		Description: description(appt, minutes),
		Location:    location(appt),
	}, nil
}

// BuildArtifacts renders the Google link, Outlook link and ICS file for appt.
func BuildArtifacts(appt appointments.Appointment, opts Options) (Artifacts, error) {
	ev, err := EventFor(appt, opts)
	if err != nil {
		return Artifacts{}, err
	}
	productID := opts.ProductID
	if productID == "" {
		productID = DefaultProductID
	}
	return Artifacts{
		GoogleURL:  GoogleURL(ev),
		OutlookURL: OutlookURL(ev),
		ICS:        ICS(ev, productID),
	}, nil
}

// GoogleURL is a Google Calendar template link.
func GoogleURL(ev Event) string {
	q := url.Values{}
	q.Set("action", "TEMPLATE")
	q.Set("text", ev.Summary)
	q.Set("dates", ev.Start.Format(utcBasic)+"/"+ev.End.Format(utcBasic))
	q.Set("details", ev.Description)
	q.Set("location", ev.Location)
	return googleBase + "?" + q.Encode()
}

// OutlookURL is an Outlook web compose deep link.
func OutlookURL(ev Event) string {
	q := url.Values{}
	q.Set("path", "/calendar/action/compose")
	q.Set("rru", "addevent")
	q.Set("subject", ev.Summary)
	q.Set("startdt", ev.Start.Format(outlookISO))
	q.Set("enddt", ev.End.Format(outlookISO))
	q.Set("body", ev.Description)
	q.Set("location", ev.Location)
	return outlookBase + "?" + q.Encode()
}

func summary(appt appointments.Appointment) string {
	name := appt.Therapist.Name
	switch appt.Type {
	case appointments.TypeAssessment:
		return "Free Assessment with " + name
	case appointments.TypeFollowUp:
		return "Follow-up Session with " + name
	default:
		return "Therapy Session with " + name
	}
}

func description(appt appointments.Appointment, minutes int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d-minute %s session", minutes, appt.Type)
	if appt.Therapist.Specialization != "" {
		fmt.Fprintf(&b, " (%s)", appt.Therapist.Specialization)
	}
	b.WriteString(".")
	if appt.MeetingLink != "" {
		b.WriteString("\nJoin: " + appt.MeetingLink)
	}
	if appt.InvoiceNumber != "" {
		b.WriteString("\nInvoice: " + appt.InvoiceNumber)
	}
	return b.String()
}

func location(appt appointments.Appointment) string {
	if appt.MeetingLink != "" {
		return appt.MeetingLink
	}
	return "Online video session"
}
