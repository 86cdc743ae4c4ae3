package api_router

import (
	"expvar"

	"github.com/haierkeys/memo-sync-service/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// Expvar 导出系统运行时指标 (expvar)，包含 memstats 与 cmdline
func Expvar(c *gin.Context) {
	expvar.Handler().ServeHTTP(c.Writer, c.Request)
}

// Metrics 导出同步相关的 Prometheus 指标
func Metrics(collector *metrics.Collector) gin.HandlerFunc {
	h := collector.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
