package metrics

import "github.com/prometheus/client_golang/prometheus"

// WebhookMetrics exposes counters/histograms for the inbound message flow.
type WebhookMetrics struct {
	inboundTotal *prometheus.CounterVec
	replyLatency *prometheus.HistogramVec
}

func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	m := &WebhookMetrics{
		inboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agendazap",
			Subsystem: "webhook",
			Name:      "inbound_total",
			Help:      "Total inbound chat messages",
		}, []string{"intent", "status"}),
		replyLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "agendazap",
			Subsystem: "webhook",
			Name:      "reply_latency_seconds",
			Help:      "Latency from inbound message to computed reply",
			Buckets:   prometheus.DefBuckets,
		}, []string{"intent"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.inboundTotal, m.replyLatency)
	return m
}

func (m *WebhookMetrics) ObserveInbound(intent, status string) {
	if m == nil {
		return
	}
	m.inboundTotal.WithLabelValues(intent, status).Inc()
}

func (m *WebhookMetrics) ObserveReplyLatency(intent string, seconds float64) {
	if m == nil {
		return
	}
	m.replyLatency.WithLabelValues(intent).Observe(seconds)
}

// BookingMetrics tracks coordinator outcomes and the calendar inconsistency
// policy so swallowed calendar failures stay operationally visible.
type BookingMetrics struct {
	outcomeTotal       *prometheus.CounterVec
	inconsistencyTotal *prometheus.CounterVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		outcomeTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agendazap",
			Subsystem: "booking",
			Name:      "outcome_total",
			Help:      "Booking coordinator outcomes",
		}, []string{"operation", "outcome"}),
		inconsistencyTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agendazap",
			Subsystem: "booking",
			Name:      "calendar_inconsistency_total",
			Help:      "Calendar writes left inconsistent with storage state",
		}, []string{"operation", "kind"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.outcomeTotal, m.inconsistencyTotal)
	return m
}

func (m *BookingMetrics) ObserveOutcome(operation, outcome string) {
	if m == nil {
		return
	}
	m.outcomeTotal.WithLabelValues(operation, outcome).Inc()
}

func (m *BookingMetrics) ObserveInconsistency(operation, kind string) {
	if m == nil {
		return
	}
	m.inconsistencyTotal.WithLabelValues(operation, kind).Inc()
}
