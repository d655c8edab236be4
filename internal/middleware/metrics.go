package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FeedCacheResults counts main-feed cache lookups by outcome (hit/miss).
	FeedCacheResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_feed_cache_results_total",
		Help: "Main feed cache lookups by result",
	}, []string{"result"})

	// RedisErrors counts Redis command failures by operation.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})
)

var (
	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus
)

// InitMetrics creates the Prometheus middleware for the given service name.
// The underlying collectors register globally, so repeated calls return the
// same instance.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		prom = fiberprometheus.New(serviceName)
	})
	return prom
}

// MetricsMiddleware wraps the fiberprometheus handler as a Fiber middleware.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
