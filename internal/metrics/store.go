// internal/metrics/store.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// StoreMetrics covers collection reads/writes and login attempts. A nil
// *StoreMetrics is valid and records nothing.
type StoreMetrics struct {
	reads   *prometheus.CounterVec
	writes  *prometheus.CounterVec
	items   *prometheus.GaugeVec
	version *prometheus.GaugeVec
	logins  *prometheus.CounterVec
}

const (
	OutcomeSuccess  = "success"
	OutcomeConflict = "conflict"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
	OutcomeDenied   = "denied"
)

func NewStoreMetrics(reg prometheus.Registerer, namespace string) *StoreMetrics {
	factory := promauto.With(reg)
	return &StoreMetrics{
		reads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collection_reads_total",
			Help:      "Total number of collection reads",
		}, []string{"collection"}),
		writes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collection_writes_total",
			Help:      "Total number of collection replace attempts by outcome",
		}, []string{"collection", "outcome"}),
		items: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "collection_items",
			Help:      "Number of items in the last stored collection",
		}, []string{"collection"}),
		version: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "collection_version",
			Help:      "Current version of each collection",
		}, []string{"collection"}),
		logins: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Total number of login attempts by outcome",
		}, []string{"outcome"}),
	}
}

func (m *StoreMetrics) ObserveRead(collection string) {
	if m == nil {
		return
	}
	m.reads.WithLabelValues(collection).Inc()
}

func (m *StoreMetrics) ObserveWrite(collection, outcome string) {
	if m == nil {
		return
	}
	m.writes.WithLabelValues(collection, outcome).Inc()
}

func (m *StoreMetrics) ObserveStored(collection string, items int, version int64) {
	if m == nil {
		return
	}
	m.items.WithLabelValues(collection).Set(float64(items))
	m.version.WithLabelValues(collection).Set(float64(version))
}

func (m *StoreMetrics) ObserveLogin(outcome string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(outcome).Inc()
}
