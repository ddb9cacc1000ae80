package middleware

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/sss-sync/console/pkg/router"
)

// Default tracer name for the console.
const defaultTracerName = "sss-console"

// OTelConfig configures the OpenTelemetry middleware.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "sss-console").
	TracerName string

	// TracerProvider overrides the global tracer provider.
	TracerProvider trace.TracerProvider

	// IncludeParams records route params as span attributes.
	// Params may carry user data, so this is disabled by default.
	IncludeParams bool

	// Filter determines which navigations to trace.
	// Return true to trace, false to skip. If nil, all are traced.
	Filter func(nav *router.Navigation) bool

	// AttributeExtractor extracts custom attributes from the navigation.
	AttributeExtractor func(nav *router.Navigation) []attribute.KeyValue

	tracer trace.Tracer
}

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *OTelConfig) {
		c.TracerProvider = tp
	}
}

// WithIncludeParams enables recording route params on spans.
func WithIncludeParams(include bool) OTelOption {
	return func(c *OTelConfig) {
		c.IncludeParams = include
	}
}

// WithNavigationFilter sets a filter function for navigations.
func WithNavigationFilter(filter func(nav *router.Navigation) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(nav *router.Navigation) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

func defaultOTelConfig() OTelConfig {
	return OTelConfig{TracerName: defaultTracerName}
}

// OpenTelemetry creates middleware that traces every navigation attempt.
//
// The middleware:
//   - Starts a span per attempt with nav id, path, route and attempt number
//   - Replaces the navigation context with the span context
//   - Records a middleware redirect target as console.redirect_to
//   - Records errors and sets span status
//
// The tracer comes from the global provider unless WithTracerProvider is set.
func OpenTelemetry(opts ...OTelOption) router.Middleware {
	config := defaultOTelConfig()
	for _, opt := range opts {
		opt(&config)
	}

	if config.TracerProvider != nil {
		config.tracer = config.TracerProvider.Tracer(config.TracerName)
	} else {
		config.tracer = otel.Tracer(config.TracerName)
	}

	return router.MiddlewareFunc(func(nav *router.Navigation, next func() error) error {
		if config.Filter != nil && !config.Filter(nav) {
			return next()
		}

		attrs := []attribute.KeyValue{
			attribute.String("console.nav_id", nav.ID),
			attribute.String("console.path", nav.Path()),
			attribute.String("console.route", routeLabel(nav)),
			attribute.Int("console.attempt", nav.Attempt),
		}
		if nav.From != "" {
			attrs = append(attrs, attribute.String("console.from", nav.From))
		}
		if r := nav.Route(); r != nil && r.Name != "" {
			attrs = append(attrs, attribute.String("console.route_name", r.Name))
		}
		if config.IncludeParams && nav.To != nil {
			for k, v := range nav.To.Params {
				attrs = append(attrs, attribute.String("console.param."+k, v))
			}
		}
		if config.AttributeExtractor != nil {
			attrs = append(attrs, config.AttributeExtractor(nav)...)
		}

		spanCtx, span := config.tracer.Start(
			nav.Context(),
			formatSpanName(nav),
			trace.WithSpanKind(trace.SpanKindInternal),
			trace.WithAttributes(attrs...),
		)
		defer span.End()

		nav.SetContext(spanCtx)
		nav.SetValue(spanContextKey{}, spanCtx)

		err := next()

		if to, ok := nav.Redirected(); ok {
			span.SetAttributes(attribute.String("console.redirect_to", to))
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}

		return err
	})
}

// spanContextKey is the key for storing the span context in navigation values.
type spanContextKey struct{}

// SpanFromNavigation retrieves the span started for nav.
// Returns nil if the attempt is not traced.
func SpanFromNavigation(nav *router.Navigation) trace.Span {
	if spanCtx, ok := nav.Value(spanContextKey{}).(context.Context); ok {
		return trace.SpanFromContext(spanCtx)
	}
	return nil
}

// formatSpanName creates a span name from the matched route.
func formatSpanName(nav *router.Navigation) string {
	return fmt.Sprintf("navigate %s", routeLabel(nav))
}
