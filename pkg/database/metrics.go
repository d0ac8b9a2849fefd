package database

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

// PoolStatser is satisfied by *redis.Client and *redis.ClusterClient.
type PoolStatser interface {
	PoolStats() *redis.PoolStats
}

type poolMetric struct {
	desc  *prometheus.Desc
	kind  prometheus.ValueType
	value func(*redis.PoolStats) float64
}

// PoolStatsCollector exports go-redis pool statistics at scrape time.
type PoolStatsCollector struct {
	pool    PoolStatser
	service string
	metrics []poolMetric
}

func NewPoolStatsCollector(pool PoolStatser, service string) *PoolStatsCollector {
	def := func(name, help string, kind prometheus.ValueType, value func(*redis.PoolStats) float64) poolMetric {
		return poolMetric{
			desc:  prometheus.NewDesc(prometheus.BuildFQName("pharmacy", "redis_pool", name), help, []string{"service"}, nil),
			kind:  kind,
			value: value,
		}
	}
	return &PoolStatsCollector{
		pool:    pool,
		service: service,
		metrics: []poolMetric{
			def("hits_total", "Free connections found in the pool.", prometheus.CounterValue,
				func(s *redis.PoolStats) float64 { return float64(s.Hits) }),
			def("misses_total", "Requests that had to dial a new connection.", prometheus.CounterValue,
				func(s *redis.PoolStats) float64 { return float64(s.Misses) }),
			def("timeouts_total", "Waits for a connection that timed out.", prometheus.CounterValue,
				func(s *redis.PoolStats) float64 { return float64(s.Timeouts) }),
			def("connections", "Connections currently in the pool.", prometheus.GaugeValue,
				func(s *redis.PoolStats) float64 { return float64(s.TotalConns) }),
			def("idle_connections", "Idle connections in the pool.", prometheus.GaugeValue,
				func(s *redis.PoolStats) float64 { return float64(s.IdleConns) }),
			def("stale_connections_total", "Stale connections removed from the pool.", prometheus.CounterValue,
				func(s *redis.PoolStats) float64 { return float64(s.StaleConns) }),
		},
	}
}

func (c *PoolStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, m := range c.metrics {
		ch <- m.desc
	}
}

func (c *PoolStatsCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.pool.PoolStats()
	for _, m := range c.metrics {
		ch <- prometheus.MustNewConstMetric(m.desc, m.kind, m.value(stats), c.service)
	}
}

// RegisterPoolMetrics registers a collector for pool on reg.
func RegisterPoolMetrics(reg prometheus.Registerer, pool PoolStatser, service string) error {
	return reg.Register(NewPoolStatsCollector(pool, service))
}
