package resolver

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	opMail    = "mx"
	opReverse = "ptr"
)

type metrics struct {
	cacheHit       *prometheus.CounterVec
	cacheMiss      *prometheus.CounterVec
	queries        *prometheus.CounterVec
	upstreamErrors *prometheus.CounterVec
	cacheEntries   prometheus.GaugeFunc
}

func newMetrics(cacheLen func() int) *metrics {
	return &metrics{
		cacheHit: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_hit_total",
			Help: "The total number of lookups answered from a fresh cache entry",
		}, []string{"op"}),
		cacheMiss: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_miss_total",
			Help: "The total number of lookups with no cache entry or a stale one",
		}, []string{"op"}),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "upstream_query_total",
			Help: "The total number of queries sent to the dns client",
		}, []string{"qtype"}),
		upstreamErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "upstream_error_total",
			Help: "The total number of failed dns client queries",
		}, []string{"qtype"}),
		cacheEntries: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Current number of cached lookup results",
		}, func() float64 { return float64(cacheLen()) }),
	}
}

func (m *metrics) register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.cacheHit, m.cacheMiss, m.queries, m.upstreamErrors, m.cacheEntries} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
