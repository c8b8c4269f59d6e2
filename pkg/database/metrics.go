package database

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// poolStat is one exported pgxpool statistic.
type poolStat struct {
	desc      *prometheus.Desc
	valueType prometheus.ValueType
	value     func(s *pgxpool.Stat) float64
}

// PoolStatsCollector exports pgxpool statistics. Values are read from the pool
// on every scrape.
type PoolStatsCollector struct {
	stat    func() *pgxpool.Stat
	service string
	stats   []poolStat
}

func gauge(name, help string, value func(s *pgxpool.Stat) float64) poolStat {
	return poolStat{
		desc:      prometheus.NewDesc("db_pool_"+name, help, []string{"service"}, nil),
		valueType: prometheus.GaugeValue,
		value:     value,
	}
}

func counter(name, help string, value func(s *pgxpool.Stat) float64) poolStat {
	return poolStat{
		desc:      prometheus.NewDesc("db_pool_"+name, help, []string{"service"}, nil),
		valueType: prometheus.CounterValue,
		value:     value,
	}
}

// NewPoolStatsCollector creates a collector for pool. Describe works with a
// nil pool; Collect does not.
func NewPoolStatsCollector(pool *pgxpool.Pool, service string) *PoolStatsCollector {
	return newPoolStatsCollector(func() *pgxpool.Stat { return pool.Stat() }, service)
}

func newPoolStatsCollector(stat func() *pgxpool.Stat, service string) *PoolStatsCollector {
	return &PoolStatsCollector{
		stat:    stat,
		service: service,
		stats: []poolStat{
			gauge("acquired_connections", "Connections currently checked out by queries",
				func(s *pgxpool.Stat) float64 { return float64(s.AcquiredConns()) }),
			gauge("idle_connections", "Connections idle in the pool",
				func(s *pgxpool.Stat) float64 { return float64(s.IdleConns()) }),
			gauge("total_connections", "Connections open in the pool",
				func(s *pgxpool.Stat) float64 { return float64(s.TotalConns()) }),
			gauge("max_connections", "Configured pool size",
				func(s *pgxpool.Stat) float64 { return float64(s.MaxConns()) }),
			counter("acquire_count_total", "Connection acquires",
				func(s *pgxpool.Stat) float64 { return float64(s.AcquireCount()) }),
			counter("acquire_duration_seconds_total", "Time spent waiting for a connection",
				func(s *pgxpool.Stat) float64 { return s.AcquireDuration().Seconds() }),
			counter("empty_acquire_count_total", "Acquires that waited because the pool was exhausted",
				func(s *pgxpool.Stat) float64 { return float64(s.EmptyAcquireCount()) }),
			counter("canceled_acquire_count_total", "Acquires abandoned because the update context ended",
				func(s *pgxpool.Stat) float64 { return float64(s.CanceledAcquireCount()) }),
		},
	}
}

// Describe implements prometheus.Collector.
func (c *PoolStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, s := range c.stats {
		ch <- s.desc
	}
}

// Collect implements prometheus.Collector.
func (c *PoolStatsCollector) Collect(ch chan<- prometheus.Metric) {
	stat := c.stat()
	for _, s := range c.stats {
		ch <- prometheus.MustNewConstMetric(s.desc, s.valueType, s.value(stat), c.service)
	}
}

// RegisterPoolMetrics registers a pool collector with the default registry.
func RegisterPoolMetrics(pool *pgxpool.Pool, service string) {
	prometheus.MustRegister(NewPoolStatsCollector(pool, service))
}
