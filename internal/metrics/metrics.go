// Package metrics holds the Prometheus collectors of the server on a private registry.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"PartsKeeper/internal/blob"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "partskeeper"

// значения метки result
const (
	ResultOK        = "ok"
	ResultNotFound  = "not_found"
	ResultConflict  = "conflict"
	ResultAuth      = "auth"
	ResultTransient = "transient"
	ResultError     = "error"
)

var (
	registry = prometheus.NewRegistry()

	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route, method and status code.",
	}, []string{"route", "method", "code"})

	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	StoreOps = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "operations_total",
		Help:      "Remote store calls by key, operation and result.",
	}, []string{"key", "op", "result"})

	SyncConflicts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "conflicts_total",
		Help:      "Updates rejected by a version conflict and returned to the caller.",
	}, []string{"key"})

	AuditFallbacks = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "audit",
		Name:      "local_fallbacks_total",
		Help:      "Audit entries written to the local database because the remote log failed.",
	})
)

func init() {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		HTTPRequests, HTTPDuration, StoreOps, SyncConflicts, AuditFallbacks,
	)
}

// Registry отдаёт реестр (тесты).
func Registry() *prometheus.Registry { return registry }

// Handler — обработчик /metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
}

// Result переводит ошибку хранилища в значение метки.
func Result(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, blob.ErrNotFound):
		return ResultNotFound
	case errors.Is(err, blob.ErrConflict):
		return ResultConflict
	case errors.Is(err, blob.ErrAuth):
		return ResultAuth
	case blob.IsTransient(err):
		return ResultTransient
	default:
		return ResultError
	}
}

// ObserveStore учитывает один вызов хранилища.
func ObserveStore(key, op string, err error) {
	StoreOps.WithLabelValues(key, op, Result(err)).Inc()
}

// ObserveHTTP учитывает один HTTP-запрос.
func ObserveHTTP(route, method string, code int, elapsed time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	HTTPDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}
