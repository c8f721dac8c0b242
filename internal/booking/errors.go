package booking

import "errors"

var (
	// ErrIncompleteDraft is returned when a draft is confirmed before every required step is done
	ErrIncompleteDraft = errors.New("booking: draft incomplete")

	// ErrMissingSchedule is returned when a direct assessment booking has no date or time
	ErrMissingSchedule = errors.New("booking: date and time required")
)
