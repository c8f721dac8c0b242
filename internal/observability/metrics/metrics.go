package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters for the appointment lifecycle.
type BookingMetrics struct {
	appointmentsTotal  *prometheus.CounterVec
	rescheduleRejected *prometheus.CounterVec
	confirmationsTotal *prometheus.CounterVec
	persistLatency     *prometheus.HistogramVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		appointmentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "therapy",
			Subsystem: "appointments",
			Name:      "events_total",
			Help:      "Appointment lifecycle events by kind",
		}, []string{"event"}),
		rescheduleRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "therapy",
			Subsystem: "appointments",
			Name:      "reschedule_rejected_total",
			Help:      "Reschedule attempts rejected by policy",
		}, []string{"reason"}),
		confirmationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "therapy",
			Subsystem: "booking",
			Name:      "confirmations_total",
			Help:      "Booking confirmations by session type and outcome",
		}, []string{"type", "status"}),
		persistLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "therapy",
			Subsystem: "persistence",
			Name:      "write_latency_seconds",
			Help:      "Latency of persisting engine state",
			Buckets:   prometheus.DefBuckets,
		}, []string{"key"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.appointmentsTotal, m.rescheduleRejected, m.confirmationsTotal, m.persistLatency)
	return m
}

func (m *BookingMetrics) ObserveAppointmentEvent(event string) {
	if m == nil {
		return
	}
	m.appointmentsTotal.WithLabelValues(event).Inc()
}

func (m *BookingMetrics) ObserveRescheduleRejected(reason string) {
	if m == nil {
		return
	}
	m.rescheduleRejected.WithLabelValues(reason).Inc()
}

func (m *BookingMetrics) ObserveConfirmation(sessionType, status string) {
	if m == nil {
		return
	}
	m.confirmationsTotal.WithLabelValues(sessionType, status).Inc()
}

func (m *BookingMetrics) ObservePersistLatency(key string, seconds float64) {
	if m == nil {
		return
	}
	m.persistLatency.WithLabelValues(key).Observe(seconds)
}
