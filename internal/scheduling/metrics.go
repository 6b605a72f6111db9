package scheduling

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics: счётчики и гистограммы операций записи.
type Metrics struct {
	operations      *prometheus.CounterVec
	latency         *prometheus.HistogramVec
	slotsGenerated  prometheus.Counter
	bookingsExpired prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "scheduling",
			Name:      "operations_total",
			Help:      "Scheduling operations by outcome",
		}, []string{"operation", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clinic",
			Subsystem: "scheduling",
			Name:      "operation_duration_seconds",
			Help:      "Latency of scheduling operations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		slotsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "scheduling",
			Name:      "slots_generated_total",
			Help:      "Slots created by the generator",
		}),
		bookingsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "scheduling",
			Name:      "bookings_expired_total",
			Help:      "Bookings moved to expired",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.operations, m.latency, m.slotsGenerated, m.bookingsExpired)
	return m
}

func (m *Metrics) ObserveOperation(op string, started time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = string(KindOf(err))
	}
	m.operations.WithLabelValues(op, outcome).Inc()
	m.latency.WithLabelValues(op).Observe(time.Since(started).Seconds())
}

func (m *Metrics) AddSlotsGenerated(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.slotsGenerated.Add(float64(n))
}

func (m *Metrics) AddBookingsExpired(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.bookingsExpired.Add(float64(n))
}
