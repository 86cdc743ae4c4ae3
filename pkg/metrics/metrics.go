// Package metrics 同步服务的 Prometheus 指标
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "memo_sync"

// 请求结果标签
const (
	ResultOK       = "ok"
	ResultInvalid  = "invalid"
	ResultPersist  = "persist_error"
	ResultInternal = "error"
)

// Collector holds the service metrics on its own registry, so several instances can coexist in tests.
// Collector 持有独立 registry 上的全部指标
type Collector struct {
	registry *prometheus.Registry

	Requests     *prometheus.CounterVec
	Outcomes     *prometheus.CounterVec
	Duration     prometheus.Histogram
	ActiveStores prometheus.Gauge
}

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of sync requests by result",
		}, []string{"result"}),
		Outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outcomes_total",
			Help:      "Total number of per-memo outcomes by status",
		}, []string{"status"}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "duration_seconds",
			Help:      "Sync request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		ActiveStores: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_stores",
			Help:      "Number of tenant stores held in memory",
		}),
	}
	c.registry.MustRegister(
		c.Requests,
		c.Outcomes,
		c.Duration,
		c.ActiveStores,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// ObserveSync 记录一次同步请求
func (c *Collector) ObserveSync(result string, started time.Time, statuses map[string]int) {
	c.Requests.WithLabelValues(result).Inc()
	c.Duration.Observe(time.Since(started).Seconds())
	for status, n := range statuses {
		c.Outcomes.WithLabelValues(status).Add(float64(n))
	}
}

// SetActiveStores 更新已加载租户数
func (c *Collector) SetActiveStores(n int) {
	c.ActiveStores.Set(float64(n))
}

// Registry 返回底层 registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler 暴露 /metrics
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
