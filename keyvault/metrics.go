package keyvault

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "kvconfig"
	metricsSubsystem = "keyvault"

	resultSuccess = "success"
	resultFailure = "failure"
)

// Metrics records the outcome of loads and secret fetches. A nil *Metrics
// records nothing.
type Metrics struct {
	loads        *prometheus.CounterVec
	loadDuration prometheus.Histogram
	fetches      *prometheus.CounterVec
}

// NewMetrics creates the metrics and registers them with the registerer.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		return nil, errors.New("must specify a registerer")
	}

	m := &Metrics{
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "loads_total",
			Help:      "Number of times secrets were loaded from a vault, by result.",
		}, []string{"result"}),
		loadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "load_duration_seconds",
			Help:      "Time taken to load all secrets from a vault.",
			Buckets:   prometheus.DefBuckets,
		}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "secret_fetches_total",
			Help:      "Number of individual secret fetches, by result.",
		}, []string{"result"}),
	}

	for _, c := range []prometheus.Collector{m.loads, m.loadDuration, m.fetches} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(err, "registering collector")
		}
	}

	return m, nil
}

func (m *Metrics) observeLoad(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.loads.WithLabelValues(resultLabel(err)).Inc()
	m.loadDuration.Observe(d.Seconds())
}

func (m *Metrics) observeFetch(err error) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	if err != nil {
		return resultFailure
	}
	return resultSuccess
}
