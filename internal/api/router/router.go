package router

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/wolfman30/therapy-booking/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/therapy-booking/internal/http/middleware"
	"github.com/wolfman30/therapy-booking/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	Catalog            *handlers.CatalogHandler
	Booking            *handlers.BookingHandler
	Appointments       *handlers.AppointmentsHandler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// HealthCheck probes the persistence backend. Nil reports healthy.
	HealthCheck func(ctx context.Context) error

	// Booking mutations are limited per client IP when RateLimitRPS > 0.
	RateLimitRPS   float64
	RateLimitBurst int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	limited := func(h http.HandlerFunc) http.Handler { return h }
	if cfg.RateLimitRPS > 0 {
		mw := httpmiddleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst)
		limited = func(h http.HandlerFunc) http.Handler { return mw(h) }
	}

	r.Get("/health", healthHandler(cfg.HealthCheck))
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	if cfg.Catalog != nil {
		r.Route("/catalog", func(c chi.Router) {
			c.Get("/therapists", cfg.Catalog.ListTherapists)
			c.Get("/packages", cfg.Catalog.ListPackages)
		})
		r.Post("/match", cfg.Catalog.Match)
		r.Get("/pricing/quote", cfg.Catalog.Quote)
	}

	if cfg.Booking != nil {
		r.Route("/draft", func(d chi.Router) {
			d.Get("/", cfg.Booking.GetDraft)
			d.Delete("/", cfg.Booking.ClearDraft)
			d.Put("/therapist", cfg.Booking.SetTherapist)
			d.Put("/package", cfg.Booking.SetPackage)
			d.Put("/schedule", cfg.Booking.SetSchedule)
			d.Put("/assessment", cfg.Booking.SetAssessment)
			d.Method(http.MethodPost, "/confirm", limited(cfg.Booking.Confirm))
		})
		r.Method(http.MethodPost, "/assessments", limited(cfg.Booking.BookAssessment))
	}

	if cfg.Appointments != nil {
		r.Route("/appointments", func(a chi.Router) {
			a.Get("/", cfg.Appointments.List)
			a.Get("/upcoming", cfg.Appointments.Upcoming)
			a.Get("/past", cfg.Appointments.Past)
			a.Get("/next", cfg.Appointments.Next)
			a.Get("/stats", cfg.Appointments.Stats)
			a.Route("/{id}", func(one chi.Router) {
				one.Get("/", cfg.Appointments.Get)
				one.Patch("/", cfg.Appointments.Patch)
				one.Method(http.MethodPost, "/cancel", limited(cfg.Appointments.Cancel))
				one.Method(http.MethodPost, "/reschedule", limited(cfg.Appointments.Reschedule))
				one.Get("/join", cfg.Appointments.Join)
				one.Get("/calendar", cfg.Appointments.Calendar)
				one.Get("/calendar.ics", cfg.Appointments.CalendarICS)
				one.Get("/refund-quote", cfg.Appointments.RefundQuote)
			})
		})
	}

	return r
}

func healthHandler(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"degraded"}`))
				return
			}
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
