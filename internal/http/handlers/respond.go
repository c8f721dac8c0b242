// Package handlers exposes the booking engine over HTTP.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/wolfman30/therapy-booking/internal/appointments"
	"github.com/wolfman30/therapy-booking/internal/booking"
	"github.com/wolfman30/therapy-booking/internal/calendar"
	"github.com/wolfman30/therapy-booking/internal/catalog"
	"github.com/wolfman30/therapy-booking/internal/draft"
	"github.com/wolfman30/therapy-booking/pkg/logging"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// decodeJSON reads a JSON body into dst. An empty body leaves dst untouched.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// writeDomainError maps engine errors onto status codes.
func writeDomainError(w http.ResponseWriter, logger *logging.Logger, err error) {
	switch {
	case errors.Is(err, appointments.ErrNotFound),
		errors.Is(err, catalog.ErrTherapistNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, catalog.ErrUnknownPackage),
		errors.Is(err, appointments.ErrInvalidRating),
		errors.Is(err, appointments.ErrInvalidStatus),
		errors.Is(err, draft.ErrIncomplete),
		booking.IsValidation(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, calendar.ErrNoSchedule):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		logger.Error("request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
