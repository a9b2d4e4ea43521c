package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PoolStats is a driver-neutral snapshot of a database connection pool.
type PoolStats struct {
	Open     int
	InUse    int
	Idle     int
	MaxOpen  int
	Waits    int64
	WaitTime time.Duration
}

// RegisterPool exports the pool returned by stats as gauges and counters
// labelled with the storage driver. stats is called on every scrape.
func RegisterPool(registerer prometheus.Registerer, driver string, stats func() PoolStats) {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	labels := prometheus.Labels{"driver": driver}

	gauge := func(name, help string, value func(PoolStats) float64) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		}, func() float64 { return value(stats()) })
	}
	counter := func(name, help string, value func(PoolStats) float64) prometheus.Collector {
		return prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		}, func() float64 { return value(stats()) })
	}

	registerer.MustRegister(
		gauge("carbonyx_db_pool_open_connections", "Open connections in the pool.",
			func(s PoolStats) float64 { return float64(s.Open) }),
		gauge("carbonyx_db_pool_in_use_connections", "Connections currently acquired.",
			func(s PoolStats) float64 { return float64(s.InUse) }),
		gauge("carbonyx_db_pool_idle_connections", "Idle connections in the pool.",
			func(s PoolStats) float64 { return float64(s.Idle) }),
		gauge("carbonyx_db_pool_max_connections", "Configured pool size.",
			func(s PoolStats) float64 { return float64(s.MaxOpen) }),
		counter("carbonyx_db_pool_waits_total", "Acquires that had to wait for a connection.",
			func(s PoolStats) float64 { return float64(s.Waits) }),
		counter("carbonyx_db_pool_wait_seconds_total", "Time spent waiting for a connection.",
			func(s PoolStats) float64 { return s.WaitTime.Seconds() }),
	)
}
