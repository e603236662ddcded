package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for availability and booking flows.
type BookingMetrics struct {
	extractionsTotal *prometheus.CounterVec
	slotsExtracted   prometheus.Histogram
	outcomesTotal    *prometheus.CounterVec
	cacheTotal       *prometheus.CounterVec
	webhookTotal     *prometheus.CounterVec
	webhookLatency   *prometheus.HistogramVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		extractionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "booking",
			Subsystem: "availability",
			Name:      "extractions_total",
			Help:      "Availability replies interpreted, by scan state and phase",
		}, []string{"state", "phase"}),
		slotsExtracted: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "booking",
			Subsystem: "availability",
			Name:      "slots_extracted",
			Help:      "Number of available slots found per reply",
			Buckets:   []float64{0, 1, 2, 4, 8, 12, 18, 24},
		}),
		outcomesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "booking",
			Subsystem: "appointments",
			Name:      "outcomes_total",
			Help:      "Booking attempts by classified outcome",
		}, []string{"outcome"}),
		cacheTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "booking",
			Subsystem: "availability",
			Name:      "cache_total",
			Help:      "Availability cache lookups",
		}, []string{"result"}),
		webhookTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "booking",
			Subsystem: "webhook",
			Name:      "requests_total",
			Help:      "Automation webhook calls by purpose and status",
		}, []string{"purpose", "status"}),
		webhookLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "booking",
			Subsystem: "webhook",
			Name:      "latency_seconds",
			Help:      "Latency of automation webhook calls",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 45},
		}, []string{"purpose"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.extractionsTotal, m.slotsExtracted, m.outcomesTotal, m.cacheTotal, m.webhookTotal, m.webhookLatency)
	return m
}

func (m *BookingMetrics) ObserveExtraction(state string, fallback bool, slots int) {
	if m == nil {
		return
	}
	phase := "structured"
	if fallback {
		phase = "fallback"
	}
	m.extractionsTotal.WithLabelValues(state, phase).Inc()
	m.slotsExtracted.Observe(float64(slots))
}

func (m *BookingMetrics) ObserveOutcome(outcome string) {
	if m == nil {
		return
	}
	m.outcomesTotal.WithLabelValues(outcome).Inc()
}

func (m *BookingMetrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	label := "miss"
	if hit {
		label = "hit"
	}
	m.cacheTotal.WithLabelValues(label).Inc()
}

func (m *BookingMetrics) ObserveWebhook(purpose, status string, seconds float64) {
	if m == nil {
		return
	}
	m.webhookTotal.WithLabelValues(purpose, status).Inc()
	m.webhookLatency.WithLabelValues(purpose).Observe(seconds)
}
