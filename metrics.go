package jwtcookie

import (
	"strconv"

	"github.com/goliatone/go-jwt-cookie/middleware/cookieware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Reconstitution outcome values for the request_jwt_cookie metric. The
// cookieware middleware owns the values; these aliases let sinks and callers
// reference them without importing the middleware package.
const (
	ReconstitutionSuccess      = cookieware.MetricSuccess
	ReconstitutionNotRequested = cookieware.MetricNotRequested
	ReconstitutionMissingBoth  = cookieware.MetricMissingBoth
)

// ReconstitutionMissingCookie tags the outcome for exactly one missing
// fragment, naming the absent cookie.
func ReconstitutionMissingCookie(cookieName string) string {
	return cookieware.MetricMissingCookie(cookieName)
}

// PrometheusSinkConfig configures the Prometheus-backed MetricsSink.
type PrometheusSinkConfig struct {
	// Namespace is the metrics namespace (default: "auth").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// PrometheusSink emits the request_jwt_cookie reconstitution outcome and
// jwt_auth_failed counters to Prometheus.
type PrometheusSink struct {
	cookieReconstitutions *prometheus.CounterVec
	authFailures          *prometheus.CounterVec
}

var _ MetricsSink = (*PrometheusSink)(nil)

// NewPrometheusSink registers the sink's collectors and returns the sink.
func NewPrometheusSink(config ...PrometheusSinkConfig) *PrometheusSink {
	cfg := PrometheusSinkConfig{}
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Namespace == "" {
		cfg.Namespace = "auth"
	}

	if cfg.Registry == nil {
		cfg.Registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(cfg.Registry)

	return &PrometheusSink{
		cookieReconstitutions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "request_jwt_cookie",
			Help:        "JWT cookie reconstitution outcomes per request",
			ConstLabels: cfg.ConstLabels,
		}, []string{"outcome"}),

		authFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "jwt_auth_failed_total",
			Help:        "Failed JWT decodes by credential transport and forgiveness",
			ConstLabels: cfg.ConstLabels,
		}, []string{"transport", "forgiven"}),
	}
}

// CookieReconstitution implements MetricsSink.
func (s *PrometheusSink) CookieReconstitution(value string) {
	s.cookieReconstitutions.WithLabelValues(value).Inc()
}

// AuthFailure implements MetricsSink.
func (s *PrometheusSink) AuthFailure(transport string, forgiven bool, _ error) {
	s.authFailures.WithLabelValues(transport, strconv.FormatBool(forgiven)).Inc()
}
