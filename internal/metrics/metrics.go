// Package metrics defines the prometheus collectors of the service.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"wfm_flipper/internal/infrastructure/ratelimit"
)

const namespace = "wfm"

type limiterStatus interface {
	Status() ratelimit.Status
}

// Metrics groups the collectors the service updates directly.
type Metrics struct {
	upstreamRequests *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	jobsFinished     *prometheus.CounterVec
	jobsRunning      prometheus.Gauge
	itemsFailed      prometheus.Counter
	opportunities    prometheus.Counter
}

// New registers all collectors on reg, including gauges that read the
// limiter state at scrape time.
func New(reg prometheus.Registerer, limiter limiterStatus) *Metrics {
	m := &Metrics{
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Market API requests by operation and status code.",
		}, []string{"operation", "code"}),
		upstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "request_duration_seconds",
			Help:      "Market API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		jobsFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "finished_total",
			Help:      "Analysis jobs by terminal status.",
		}, []string{"status"}),
		jobsRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "running",
			Help:      "Analysis jobs currently running.",
		}),
		itemsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "items_failed_total",
			Help:      "Items whose orders could not be fetched during analysis.",
		}),
		opportunities: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "opportunities_total",
			Help:      "Flip opportunities found.",
		}),
	}

	reg.MustRegister(
		m.upstreamRequests,
		m.upstreamDuration,
		m.jobsFinished,
		m.jobsRunning,
		m.itemsFailed,
		m.opportunities,
	)

	if limiter != nil {
		reg.MustRegister(limiterCollectors(limiter)...)
	}

	return m
}

func limiterCollectors(limiter limiterStatus) []prometheus.Collector {
	gauge := func(name, help string, value func(ratelimit.Status) float64) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "limiter",
			Name:      name,
			Help:      help,
		}, func() float64 { return value(limiter.Status()) })
	}

	return []prometheus.Collector{
		gauge("active_requests", "Upstream calls holding a concurrency slot.", func(s ratelimit.Status) float64 {
			return float64(s.ActiveRequests)
		}),
		gauge("requests_in_window", "Dispatches inside the sliding window.", func(s ratelimit.Status) float64 {
			return float64(s.RequestsInWindow)
		}),
		gauge("cooldown_seconds", "Remaining upstream cooldown.", func(s ratelimit.Status) float64 {
			return s.CooldownRemaining.Seconds()
		}),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "limiter",
			Name:      "cooldowns_total",
			Help:      "Times the upstream answered 429.",
		}, func() float64 { return float64(limiter.Status().Cooldowns) }),
	}
}

// ObserveUpstream records one market API call. code 0 means a transport error.
func (m *Metrics) ObserveUpstream(operation string, code int, seconds float64) {
	if m == nil {
		return
	}

	label := "error"
	if code != 0 {
		label = strconv.Itoa(code)
	}

	m.upstreamRequests.WithLabelValues(operation, label).Inc()
	m.upstreamDuration.WithLabelValues(operation).Observe(seconds)
}

func (m *Metrics) JobStarted() {
	if m == nil {
		return
	}

	m.jobsRunning.Inc()
}

func (m *Metrics) JobFinished(status string, opportunities, failedItems int) {
	if m == nil {
		return
	}

	m.jobsRunning.Dec()
	m.jobsFinished.WithLabelValues(status).Inc()
	m.opportunities.Add(float64(opportunities))
	m.itemsFailed.Add(float64(failedItems))
}
