// Package middleware provides observability middleware for console navigation.
//
// This package includes:
//   - Prometheus metrics for navigation attempts and session mutations
//   - OpenTelemetry tracing of navigation attempts
//
// Both are router.Middleware and sit in front of the guard so they observe
// its decision:
//
//	nv := router.NewNavigator(r, router.WithMiddleware(
//	    middleware.OpenTelemetry(),
//	    middleware.Prometheus(),
//	    authmw.Guard(store),
//	))
//
// # Prometheus Metrics
//
// Route labels use the matched pattern, never the raw path, to keep
// cardinality bounded:
//
//	sss_console_navigations_total{route,outcome}
//	sss_console_navigation_duration_seconds{route}
//	sss_console_guard_redirects_total{route,to}
//	sss_console_navigation_errors_total{kind}
//	sss_console_logins_total{result}
//	sss_console_logouts_total
//	sss_console_session_authenticated{role}
//
// Expose them with promhttp:
//
//	http.Handle("/metrics", promhttp.Handler())
//
// # OpenTelemetry Tracing
//
// Every attempt becomes a span named "navigate <pattern>". The span context
// replaces the navigation context, so view resolvers and later middleware
// see it through nav.Context().
package middleware
