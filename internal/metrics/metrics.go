// Package metrics exposes Prometheus collectors for the HTTP surface, the
// chat hub and the profile cache.
package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "huddle",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "huddle",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "huddle",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	chatConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "huddle",
			Subsystem: "chat",
			Name:      "connections",
			Help:      "Current number of connected chat clients.",
		},
	)

	chatMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "huddle",
			Subsystem: "chat",
			Name:      "messages_total",
			Help:      "Chat messages by outcome (delivered, dropped, relayed).",
		},
		[]string{"outcome"},
	)

	profileCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "huddle",
			Subsystem: "profile_cache",
			Name:      "lookups_total",
			Help:      "Profile cache lookups by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		chatConnections,
		chatMessages,
		profileCache,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		path := canonicalPath(r.URL.Path)
		method := strings.ToUpper(r.Method)

		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	})
}

// ChatConnected adjusts the connected-clients gauge by delta
func ChatConnected(delta int) {
	chatConnections.Add(float64(delta))
}

// ChatMessage counts one chat message outcome
func ChatMessage(outcome string) {
	chatMessages.WithLabelValues(outcome).Inc()
}

// ProfileCacheLookup counts one profile cache outcome
func ProfileCacheLookup(outcome string) {
	profileCache.WithLabelValues(outcome).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the hijacker for websockets
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("metrics: response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// canonicalPath keeps label cardinality bounded: usernames and IDs
// collapse into placeholders.
func canonicalPath(raw string) string {
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	switch parts[0] {
	case "profiles":
		switch {
		case len(parts) == 1:
			return "/profiles"
		case len(parts) == 2:
			return "/profiles/:username"
		default:
			return "/profiles/:username/" + parts[2]
		}
	case "activities":
		switch {
		case len(parts) == 1:
			return "/activities"
		case len(parts) == 2:
			return "/activities/:id"
		default:
			return "/activities/:id/" + parts[2]
		}
	case "account", "chat", "health", "ready":
		return "/" + parts[0]
	default:
		return "/static"
	}
}
