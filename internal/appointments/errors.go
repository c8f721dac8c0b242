package appointments

import "errors"

var (
	// ErrNotFound is returned by lookups for an unknown appointment id
	ErrNotFound = errors.New("appointments: not found")

	// ErrInvalidSchedule is returned when a date or time cannot be parsed
	ErrInvalidSchedule = errors.New("appointments: invalid date or time")

	// ErrInvalidRating is returned when a rating is outside 1..5
	ErrInvalidRating = errors.New("appointments: rating must be between 1 and 5")

	// ErrInvalidStatus is returned when a patch names an unknown status
	ErrInvalidStatus = errors.New("appointments: unknown status")
)
