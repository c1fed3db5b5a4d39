// Package metrics provides Prometheus counters for provider requests and
// synchronization outcomes.
package metrics

import (
	"sort"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal    *prometheus.CounterVec
	rateLimitRetries prometheus.Counter
	syncsTotal       *prometheus.CounterVec
	projectsFetched  *prometheus.CounterVec
	collectionWrites *prometheus.CounterVec
}

// New creates a Metrics registered on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "figfiles_requests_total",
				Help: "Total number of provider API responses by status code",
			},
			[]string{"status"},
		),
		rateLimitRetries: f.NewCounter(
			prometheus.CounterOpts{
				Name: "figfiles_rate_limit_retries_total",
				Help: "Total number of requests retried after a 429 response",
			},
		),
		syncsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "figfiles_syncs_total",
				Help: "Total number of hierarchy resolutions by source",
			},
			[]string{"source"},
		),
		projectsFetched: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "figfiles_projects_fetched_total",
				Help: "Total number of project file fetches by outcome",
			},
			[]string{"outcome"},
		),
		collectionWrites: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "figfiles_collection_writes_total",
				Help: "Total number of recency collection writes",
			},
			[]string{"collection", "op"},
		),
	}
}

// Registry exposes the underlying registry for gathering.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordResponse counts a provider response by HTTP status.
func (m *Metrics) RecordResponse(status int) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(strconv.Itoa(status)).Inc()
}

// RecordRateLimitRetry counts one suspended retry after a 429.
func (m *Metrics) RecordRateLimitRetry() {
	if m == nil {
		return
	}
	m.rateLimitRetries.Inc()
}

// RecordSync counts one hierarchy resolution.
func (m *Metrics) RecordSync(source string) {
	if m == nil {
		return
	}
	m.syncsTotal.WithLabelValues(source).Inc()
}

// RecordProjectFetch counts one project fetch as "ok" or "error".
func (m *Metrics) RecordProjectFetch(ok bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	m.projectsFetched.WithLabelValues(outcome).Inc()
}

// RecordCollectionWrite counts an add/remove/clear on a recency collection.
func (m *Metrics) RecordCollectionWrite(collection, op string) {
	if m == nil {
		return
	}
	m.collectionWrites.WithLabelValues(collection, op).Inc()
}

// Sample is one counter value with its labels flattened into Name.
type Sample struct {
	Name  string
	Value float64
}

// Snapshot gathers every counter into a sorted list of samples, e.g.
// `figfiles_requests_total{status="200"} 4`.
func (m *Metrics) Snapshot() ([]Sample, error) {
	if m == nil {
		return nil, nil
	}
	families, err := m.registry.Gather()
	if err != nil {
		return nil, err
	}

	var out []Sample
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			name := mf.GetName()
			if labels := metric.GetLabel(); len(labels) > 0 {
				name += "{"
				for i, l := range labels {
					if i > 0 {
						name += ","
					}
					name += l.GetName() + "=" + strconv.Quote(l.GetValue())
				}
				name += "}"
			}
			out = append(out, Sample{Name: name, Value: metric.GetCounter().GetValue()})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
