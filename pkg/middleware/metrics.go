package middleware

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/sss-sync/console/pkg/auth"
	"github.com/sss-sync/console/pkg/routepath"
	"github.com/sss-sync/console/pkg/router"
)

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "sss_console").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for navigation duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics middleware.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "sss_console",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Navigation outcomes.
const (
	OutcomeAllow    = "allow"
	OutcomeRedirect = "redirect"
	OutcomeError    = "error"
)

type metrics struct {
	navigationsTotal   *prometheus.CounterVec
	navigationDuration *prometheus.HistogramVec
	guardRedirects     *prometheus.CounterVec
	navigationErrors   *prometheus.CounterVec
	loginsTotal        *prometheus.CounterVec
	logoutsTotal       prometheus.Counter
	authenticated      *prometheus.GaugeVec
}

// globalMetrics is the singleton metrics instance, created on the first
// call to Prometheus(). The Record functions read it without the mutex;
// the mutex only serializes creation.
var (
	globalMetrics   atomic.Pointer[metrics]
	globalMetricsMu sync.Mutex
)

func initMetrics(config MetricsConfig) *metrics {
	factory := promauto.With(config.Registry)

	return &metrics{
		navigationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigations_total",
			Help:        "Total navigation attempts by matched route and outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"route", "outcome"}),

		navigationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigation_duration_seconds",
			Help:        "Time spent in the navigation middleware chain",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"route"}),

		guardRedirects: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "guard_redirects_total",
			Help:        "Navigation attempts redirected by middleware",
			ConstLabels: config.ConstLabels,
		}, []string{"route", "to"}),

		navigationErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigation_errors_total",
			Help:        "Navigations that failed to settle, by kind",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		loginsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "logins_total",
			Help:        "Login attempts by result",
			ConstLabels: config.ConstLabels,
		}, []string{"result"}),

		logoutsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "logouts_total",
			Help:        "Total logouts",
			ConstLabels: config.ConstLabels,
		}),

		authenticated: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "session_authenticated",
			Help:        "1 when the console session is authenticated, by role",
			ConstLabels: config.ConstLabels,
		}, []string{"role"}),
	}
}

// Prometheus creates middleware that collects metrics for navigation attempts.
//
// It must run before the guard in the chain: the outcome is read from the
// navigation after next returns.
func Prometheus(opts ...MetricsOption) router.Middleware {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	// Initialize metrics once
	globalMetricsMu.Lock()
	m := globalMetrics.Load()
	if m == nil {
		m = initMetrics(config)
		globalMetrics.Store(m)
	}
	globalMetricsMu.Unlock()

	return router.MiddlewareFunc(func(nav *router.Navigation, next func() error) error {
		route := routeLabel(nav)

		start := time.Now()
		err := next()
		m.navigationDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())

		outcome := OutcomeAllow
		switch to, redirected := nav.Redirected(); {
		case err != nil:
			outcome = OutcomeError
		case redirected:
			outcome = OutcomeRedirect
			m.guardRedirects.WithLabelValues(route, to).Inc()
		}
		m.navigationsTotal.WithLabelValues(route, outcome).Inc()

		return err
	})
}

// routeLabel returns the matched pattern, "/" when none is known.
func routeLabel(nav *router.Navigation) string {
	if r := nav.Route(); r != nil && r.Pattern != "" {
		return r.Pattern
	}
	return "/"
}

// categorizeError returns a bounded label for a failed navigation.
func categorizeError(err error) string {
	switch {
	case errors.Is(err, router.ErrTooManyRedirects):
		return "too_many_redirects"
	case errors.Is(err, router.ErrRedirectLoop):
		return "redirect_loop"
	case routepath.IsInvalid(err):
		return "invalid_path"
	case errors.Is(err, router.ErrNoRoute):
		return "no_route"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "internal"
	}
}

// =============================================================================
// Metrics Recording Functions
// =============================================================================

// RecordNavigationError records a navigation that did not settle.
func RecordNavigationError(err error) {
	if m := globalMetrics.Load(); m != nil && err != nil {
		m.navigationErrors.WithLabelValues(categorizeError(err)).Inc()
	}
}

// Login results.
const (
	LoginSuccess   = "success"
	LoginInvalid   = "invalid_credentials"
	LoginMalformed = "malformed_response"
	LoginError     = "error"
)

// RecordLogin records a login attempt and its result.
func RecordLogin(err error) {
	m := globalMetrics.Load()
	if m == nil {
		return
	}
	result := LoginSuccess
	switch {
	case err == nil:
	case errors.Is(err, auth.ErrInvalidCredentials):
		result = LoginInvalid
	case errors.Is(err, auth.ErrMalformedResponse):
		result = LoginMalformed
	default:
		result = LoginError
	}
	m.loginsTotal.WithLabelValues(result).Inc()
}

// RecordLogout records a logout.
func RecordLogout() {
	if m := globalMetrics.Load(); m != nil {
		m.logoutsTotal.Inc()
	}
}

// RecordSessionState sets the authenticated gauge from st.
// Suitable as an auth.WithObserver callback.
func RecordSessionState(st auth.State) {
	m := globalMetrics.Load()
	if m == nil {
		return
	}
	for _, role := range auth.Roles {
		v := 0.0
		if st.IsAuthenticated() && st.Role == role {
			v = 1
		}
		m.authenticated.WithLabelValues(role).Set(v)
	}
}
