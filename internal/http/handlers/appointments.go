package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/therapy-booking/internal/appointments"
	"github.com/wolfman30/therapy-booking/internal/booking"
	"github.com/wolfman30/therapy-booking/internal/clock"
	"github.com/wolfman30/therapy-booking/pkg/logging"
)

// AppointmentsHandler serves the appointment collection and its lifecycle actions.
type AppointmentsHandler struct {
	store   *appointments.Store
	booking *booking.Service
	clock   clock.Clock
	logger  *logging.Logger
}

// NewAppointmentsHandler creates an appointments handler.
func NewAppointmentsHandler(store *appointments.Store, svc *booking.Service, c clock.Clock, logger *logging.Logger) *AppointmentsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AppointmentsHandler{store: store, booking: svc, clock: clock.OrSystem(c), logger: logger}
}

func listResponse(items []appointments.Appointment) map[string]any {
	if items == nil {
		items = []appointments.Appointment{}
	}
	return map[string]any{"appointments": items, "count": len(items)}
}

// List returns every appointment in insertion order.
func (h *AppointmentsHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, listResponse(h.store.All()))
}

// Upcoming returns live appointments, earliest first.
func (h *AppointmentsHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, listResponse(h.store.Upcoming()))
}

// Past returns completed and cancelled appointments, most recent first.
func (h *AppointmentsHandler) Past(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, listResponse(h.store.Past()))
}

// Next returns the next upcoming session, or null.
func (h *AppointmentsHandler) Next(w http.ResponseWriter, r *http.Request) {
	appt, ok := h.store.NextAppointment()
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"appointment": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"appointment": appt})
}

// Stats returns the dashboard aggregates.
func (h *AppointmentsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Stats())
}

// Get returns one appointment.
func (h *AppointmentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	appt, err := h.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

// Patch merges the allowed fields into an appointment.
func (h *AppointmentsHandler) Patch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.store.Get(id); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	var patch appointments.Patch
	if err := decodeJSON(r, &patch); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if err := h.store.Update(r.Context(), id, patch); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	h.Get(w, r)
}

// Cancel cancels {"reason": "..."}.
func (h *AppointmentsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.store.Get(id); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	var body struct {
		Reason string `json:"reason"`
	}
	if err := decodeJSON(r, &body); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if err := h.store.Cancel(r.Context(), id, body.Reason); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	h.Get(w, r)
}

// Reschedule moves the appointment to {"date", "time"}. A policy rejection is
// 409 Conflict with the unchanged appointment.
func (h *AppointmentsHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var body struct {
		Date string `json:"date"`
		Time string `json:"time"`
	}
	if err := decodeJSON(r, &body); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if _, err := appointments.CombineDateTime(body.Date, body.Time, h.store.Location()); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ok, err := h.store.Reschedule(r.Context(), id, body.Date, body.Time)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	appt, getErr := h.store.Get(id)
	if getErr != nil {
		writeDomainError(w, h.logger, getErr)
		return
	}
	status := http.StatusOK
	if !ok {
		status = http.StatusConflict
	}
	writeJSON(w, status, map[string]any{"rescheduled": ok, "appointment": appt})
}

// JoinResponse reports whether the caller may enter the session now.
type JoinResponse struct {
	CanJoin        bool   `json:"canJoin"`
	MinutesToStart int    `json:"minutesToStart"`
	Role           string `json:"role"`
	MeetingLink    string `json:"meetingLink,omitempty"`
}

// Join evaluates the join window for ?role=patient (default) or ?role=therapist.
func (h *AppointmentsHandler) Join(w http.ResponseWriter, r *http.Request) {
	appt, err := h.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	role := r.URL.Query().Get("role")
	window := appointments.PatientJoinWindow
	switch role {
	case "", "patient":
		role = "patient"
	case "therapist":
		window = appointments.TherapistJoinWindow
	default:
		http.Error(w, "role must be patient or therapist", http.StatusBadRequest)
		return
	}

	now := h.clock.Now()
	minutes, err := appointments.MinutesToStart(appt, now, h.store.Location())
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	resp := JoinResponse{
		CanJoin:        appointments.CanJoin(appt, now, window, h.store.Location()),
		MinutesToStart: minutes,
		Role:           role,
	}
	if resp.CanJoin {
		resp.MeetingLink = appt.MeetingLink
	}
	writeJSON(w, http.StatusOK, resp)
}

// Calendar returns the add-to-calendar links and ICS text.
func (h *AppointmentsHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	art, err := h.booking.CalendarFor(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, art)
}

// CalendarICS downloads the .ics file.
func (h *AppointmentsHandler) CalendarICS(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	art, err := h.booking.CalendarFor(id)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+id+`.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(art.ICS))
}

// RefundQuote reports the cancellation policy outcome if cancelled now.
func (h *AppointmentsHandler) RefundQuote(w http.ResponseWriter, r *http.Request) {
	q, err := h.booking.RefundQuote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}
