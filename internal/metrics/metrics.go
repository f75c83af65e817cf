// Package metrics defines the Prometheus instruments and the sidecar
// server exposing them together with the health probes.
package metrics

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nbatyrov/contactbook/internal/health"
)

var (
	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "contactbook",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "contactbook",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})

	// Auth flow metrics

	RegistrationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "contactbook",
		Name:      "registrations_total",
		Help:      "Total successfully persisted registrations.",
	})

	LoginsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "contactbook",
		Name:      "logins_total",
		Help:      "Total login attempts, by outcome.",
	}, []string{"outcome"})

	VerificationEmailsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "contactbook",
		Name:      "verification_emails_total",
		Help:      "Total verification emails dispatched, by delivery status.",
	}, []string{"status"})

	VerificationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "contactbook",
		Name:      "verifications_total",
		Help:      "Total confirmed email verifications.",
	})

	AvatarUploadsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "contactbook",
		Name:      "avatar_uploads_total",
		Help:      "Total successfully stored avatar uploads.",
	})

	// Session sweeper

	SessionsSweptTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "contactbook",
		Name:      "sessions_swept_total",
		Help:      "Total expired session tokens cleared by the sweeper.",
	})
)

func Register() {
	prometheus.MustRegister(
		HTTPRequestDuration,
		HTTPRequestsTotal,
		RegistrationsTotal,
		LoginsTotal,
		VerificationEmailsTotal,
		VerificationsTotal,
		AvatarUploadsTotal,
		SessionsSweptTotal,
	)
}

// healthReporter is satisfied by *health.Checker.
type healthReporter interface {
	Liveness(ctx context.Context) health.HealthResult
	Readiness(ctx context.Context) health.HealthResult
}

// NewServer exposes /metrics plus liveness and readiness probes on a
// dedicated port.
func NewServer(addr string, checker healthReporter) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, checker.Liveness(r.Context()))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		result := checker.Readiness(r.Context())
		status := http.StatusOK
		if result.Status != "up" {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, result)
	})
	return &http.Server{Addr: addr, Handler: mux}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
