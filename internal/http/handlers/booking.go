package handlers

import (
	"net/http"

	"github.com/wolfman30/therapy-booking/internal/booking"
	"github.com/wolfman30/therapy-booking/internal/catalog"
	"github.com/wolfman30/therapy-booking/internal/draft"
	"github.com/wolfman30/therapy-booking/internal/pricing"
	"github.com/wolfman30/therapy-booking/pkg/logging"
)

// BookingHandler drives the booking draft and confirmation.
type BookingHandler struct {
	drafts  *draft.Service
	catalog *catalog.Catalog
	booking *booking.Service
	logger  *logging.Logger
}

// NewBookingHandler creates a booking handler.
func NewBookingHandler(drafts *draft.Service, c *catalog.Catalog, svc *booking.Service, logger *logging.Logger) *BookingHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &BookingHandler{drafts: drafts, catalog: c, booking: svc, logger: logger}
}

// DraftResponse is the draft with its price breakdown.
type DraftResponse struct {
	Draft draft.Draft   `json:"draft"`
	Quote pricing.Quote `json:"quote"`
}

func (h *BookingHandler) respondDraft(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, DraftResponse{Draft: h.drafts.Current(), Quote: h.drafts.Quote()})
}

// GetDraft returns the current draft.
func (h *BookingHandler) GetDraft(w http.ResponseWriter, r *http.Request) {
	h.respondDraft(w)
}

// SetTherapist selects {"therapistId": "..."}.
func (h *BookingHandler) SetTherapist(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TherapistID string `json:"therapistId"`
	}
	if err := decodeJSON(r, &body); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	t, err := h.catalog.Therapist(body.TherapistID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	if err := h.drafts.SetTherapist(r.Context(), t); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	h.respondDraft(w)
}

// SetPackage selects {"package": "starter"}.
func (h *BookingHandler) SetPackage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Package catalog.PackageKey `json:"package"`
	}
	if err := decodeJSON(r, &body); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if err := h.drafts.SetPackage(r.Context(), body.Package); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	h.respondDraft(w)
}

// SetSchedule sets {"date": "YYYY-MM-DD", "time": "HH:MM"}.
func (h *BookingHandler) SetSchedule(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Date string `json:"date"`
		Time string `json:"time"`
	}
	if err := decodeJSON(r, &body); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if body.Date == "" || body.Time == "" {
		http.Error(w, "date and time required", http.StatusBadRequest)
		return
	}
	if err := h.drafts.SetDateTime(r.Context(), body.Date, body.Time); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	h.respondDraft(w)
}

// SetAssessment sets {"isAssessment": true}.
func (h *BookingHandler) SetAssessment(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IsAssessment bool `json:"isAssessment"`
	}
	if err := decodeJSON(r, &body); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if err := h.drafts.SetIsAssessment(r.Context(), body.IsAssessment); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	h.respondDraft(w)
}

// ClearDraft abandons the draft.
func (h *BookingHandler) ClearDraft(w http.ResponseWriter, r *http.Request) {
	if err := h.drafts.Clear(r.Context()); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Confirm books the draft.
func (h *BookingHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req booking.ConfirmRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	conf, err := h.booking.Confirm(r.Context(), req)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, conf)
}

// BookAssessment books a free assessment straight from the questionnaire.
func (h *BookingHandler) BookAssessment(w http.ResponseWriter, r *http.Request) {
	var req booking.AssessmentRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	conf, err := h.booking.BookAssessment(r.Context(), req)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, conf)
}
