// Package metrics implements the service and bus metrics hooks on top of
// Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hackgods/clinic-booking/internal/appointment"
	"github.com/hackgods/clinic-booking/internal/events"
)

var lockBuckets = []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

type Service struct {
	mutations *prometheus.CounterVec
	lockWait  prometheus.Histogram
}

func NewService(reg prometheus.Registerer) *Service {
	m := &Service{
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clinic_mutations_total",
			Help: "Snapshot mutations by operation and outcome",
		}, []string{"op", "outcome"}),
		lockWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "clinic_lock_wait_seconds",
			Help:    "Time spent waiting for the snapshot write lock",
			Buckets: lockBuckets,
		}),
	}
	reg.MustRegister(m.mutations, m.lockWait)
	return m
}

func (m *Service) Mutation(op, outcome string) {
	m.mutations.WithLabelValues(op, outcome).Inc()
}

func (m *Service) LockWait(d time.Duration) {
	m.lockWait.Observe(d.Seconds())
}

type Bus struct {
	subscribers prometheus.Gauge
	published   *prometheus.CounterVec
	evicted     prometheus.Counter
}

func NewBus(reg prometheus.Registerer) *Bus {
	m := &Bus{
		subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "clinic_bus_subscribers",
			Help: "Currently connected event subscribers",
		}),
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clinic_bus_events_total",
			Help: "Change events delivered to the bus by kind",
		}, []string{"kind"}),
		evicted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clinic_bus_evictions_total",
			Help: "Subscribers dropped because their buffer was full",
		}),
	}
	reg.MustRegister(m.subscribers, m.published, m.evicted)
	return m
}

func (m *Bus) Subscribers(n int)     { m.subscribers.Set(float64(n)) }
func (m *Bus) Published(kind string) { m.published.WithLabelValues(kind).Inc() }
func (m *Bus) Evicted()              { m.evicted.Inc() }

var (
	_ appointment.Metrics = (*Service)(nil)
	_ events.Metrics      = (*Bus)(nil)
)
