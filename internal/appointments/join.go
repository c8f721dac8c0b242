package appointments

import "time"

// JoinWindow bounds minutes-to-start, inclusive, during which a participant may
// enter a session. Negative minutes mean the session has already started.
type JoinWindow struct {
	MinMinutes int
	MaxMinutes int
}

var (
	// PatientJoinWindow opens 15 minutes before start and closes at start.
	PatientJoinWindow = JoinWindow{MinMinutes: 0, MaxMinutes: 15}
	// TherapistJoinWindow opens 15 minutes before start and stays open 60 minutes in.
	TherapistJoinWindow = JoinWindow{MinMinutes: -60, MaxMinutes: 15}
)

// Allows reports whether minutesToStart is inside the window.
func (w JoinWindow) Allows(minutesToStart int) bool {
	return minutesToStart >= w.MinMinutes && minutesToStart <= w.MaxMinutes
}

// MinutesToStart is the whole minutes from now until the appointment starts,
// truncated toward zero.
func MinutesToStart(a Appointment, now time.Time, loc *time.Location) (int, error) {
	start, err := a.StartsAt(loc)
	if err != nil {
		return 0, err
	}
	return int(start.Sub(now) / time.Minute), nil
}

// CanJoin reports whether a live appointment is inside w at now. Completed,
// cancelled and unparsable appointments are never joinable.
func CanJoin(a Appointment, now time.Time, w JoinWindow, loc *time.Location) bool {
	if a.Status.Terminal() {
		return false
	}
	minutes, err := MinutesToStart(a, now, loc)
	if err != nil {
		return false
	}
	return w.Allows(minutes)
}
