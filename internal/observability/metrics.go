package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Token check outcomes recorded by RecordTokenCheck.
const (
	TokenValid   = "valid"
	TokenInvalid = "invalid"
	TokenRevoked = "revoked"
)

// Metrics provides Prometheus collectors for the auth service. A nil *Metrics is a no-op.
type Metrics struct {
	loginAttempts     *prometheus.CounterVec
	tokenChecks       *prometheus.CounterVec
	revocations       prometheus.Counter
	revocationEntries prometheus.Gauge
	requestCount      *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	errorCount        *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		loginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_login_attempts_total",
			Help: "Login attempts by outcome.",
		}, []string{"outcome"}),
		tokenChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_token_checks_total",
			Help: "Token authentication checks by outcome.",
		}, []string{"outcome"}),
		revocations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auth_revocations_total",
			Help: "Tokens revoked by logout.",
		}),
		revocationEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "auth_revocation_entries",
			Help: "Entries currently held by the in-memory revocation registry.",
		}),
		requestCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_http_requests_total",
			Help: "HTTP requests by method and status.",
		}, []string{"method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "auth_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		errorCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_http_errors_total",
			Help: "HTTP error responses by error code.",
		}, []string{"code"}),
	}

	reg.MustRegister(
		m.loginAttempts,
		m.tokenChecks,
		m.revocations,
		m.revocationEntries,
		m.requestCount,
		m.requestDuration,
		m.errorCount,
	)
	return m
}

// RecordLogin counts a login attempt.
func (m *Metrics) RecordLogin(success bool) {
	if m == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "invalid_credentials"
	}
	m.loginAttempts.WithLabelValues(outcome).Inc()
}

// RecordTokenCheck counts a token check with one of TokenValid, TokenInvalid, TokenRevoked.
func (m *Metrics) RecordTokenCheck(outcome string) {
	if m == nil {
		return
	}
	m.tokenChecks.WithLabelValues(outcome).Inc()
}

// RecordRevocation counts a successful logout.
func (m *Metrics) RecordRevocation() {
	if m == nil {
		return
	}
	m.revocations.Inc()
}

// SetRevocationEntries publishes the registry size.
func (m *Metrics) SetRevocationEntries(n int) {
	if m == nil {
		return
	}
	m.revocationEntries.Set(float64(n))
}

// RecordRequest records a served request.
func (m *Metrics) RecordRequest(method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestCount.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordError counts an error response by code.
func (m *Metrics) RecordError(code string) {
	if m == nil {
		return
	}
	m.errorCount.WithLabelValues(code).Inc()
}
