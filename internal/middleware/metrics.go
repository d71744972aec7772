package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RedisErrors counts Redis operation failures by operation name. The cache is
// best-effort, so failures do not surface to clients; the counter is how they
// stay visible.
var RedisErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "inkwell_redis_errors_total",
		Help: "Total number of Redis operation errors",
	},
	[]string{"operation"},
)

// CacheHits counts cache-aside lookups by key prefix and outcome.
var CacheHits = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "inkwell_cache_requests_total",
		Help: "Cache-aside lookups partitioned by outcome",
	},
	[]string{"prefix", "outcome"},
)

var (
	promOnce       sync.Once
	promMiddleware *fiberprometheus.FiberPrometheus
)

// InitMetrics creates the Prometheus middleware for HTTP request metrics.
// The middleware registers collectors on the default registry, so it is a
// process-wide singleton.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		promMiddleware = fiberprometheus.New(serviceName)
	})
	return promMiddleware
}

// RegisterMetrics mounts the metrics endpoint and request instrumentation on the app.
func RegisterMetrics(app *fiber.App, prom *fiberprometheus.FiberPrometheus) {
	prom.RegisterAt(app, "/metrics")
	app.Use(prom.Middleware)
}
