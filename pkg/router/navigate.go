package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/sss-sync/console/pkg/routepath"
)

// DefaultMaxRedirects bounds the redirect hops of a single navigation.
const DefaultMaxRedirects = 10

// Navigation errors.
var (
	// ErrTooManyRedirects is returned when a navigation exceeds its hop budget.
	ErrTooManyRedirects = errors.New("router: too many redirects")

	// ErrRedirectLoop is returned when a navigation revisits a location.
	ErrRedirectLoop = errors.New("router: redirect loop")
)

// HopReason tells why a navigation attempt was redirected.
type HopReason string

const (
	// HopRecord is a redirect declared on the route record.
	HopRecord HopReason = "record"

	// HopGuard is a redirect issued by middleware.
	HopGuard HopReason = "guard"
)

// Hop is one redirect taken while settling a navigation.
type Hop struct {
	From   string
	To     string
	Reason HopReason
}

// Navigation is a single navigation attempt seen by middleware and
// dynamic redirects.
type Navigation struct {
	ctx context.Context

	// ID identifies the navigation across all of its attempts.
	ID string

	// To is the resolved destination of this attempt.
	To *Match

	// From is the location that redirected here, empty on the first attempt.
	From string

	// Attempt counts the attempts of this navigation, starting at zero.
	Attempt int

	redirect string
	values   map[any]any
}

// Context returns the context of the navigation.
func (n *Navigation) Context() context.Context {
	if n.ctx == nil {
		return context.Background()
	}
	return n.ctx
}

// SetContext replaces the context seen by downstream middleware.
func (n *Navigation) SetContext(ctx context.Context) {
	n.ctx = ctx
}

// Path returns the canonical destination path of the attempt.
func (n *Navigation) Path() string {
	if n.To == nil {
		return ""
	}
	return n.To.Path
}

// Route returns the destination record of the attempt.
func (n *Navigation) Route() *Route {
	if n.To == nil {
		return nil
	}
	return n.To.Route
}

// Redirect aborts the attempt and restarts the navigation at path.
func (n *Navigation) Redirect(path string) {
	n.redirect = path
}

// Redirected returns the pending redirect target, if any.
func (n *Navigation) Redirected() (string, bool) {
	return n.redirect, n.redirect != ""
}

// SetValue stores a request-scoped value.
func (n *Navigation) SetValue(key, value any) {
	if n.values == nil {
		n.values = make(map[any]any)
	}
	n.values[key] = value
}

// Value returns a value stored with SetValue.
func (n *Navigation) Value(key any) any {
	return n.values[key]
}

// NewNavigation builds a standalone attempt for match, mainly for calling
// middleware and redirect functions outside a Navigator.
func NewNavigation(ctx context.Context, match *Match) *Navigation {
	return &Navigation{ctx: ctx, ID: uuid.NewString(), To: match}
}

// Result is a settled navigation.
type Result struct {
	// ID identifies the navigation.
	ID string

	// Path and Query are the final location.
	Path  string
	Query string

	// Route is the record that was allowed.
	Route *Route

	// View is the view of the final record.
	View ViewID

	// Component is the resolved view, when a ViewResolver is configured.
	Component any

	// Params are the captures of the final match.
	Params map[string]string

	// Redirects lists every hop taken, in order.
	Redirects []Hop
}

// Redirected reports whether the navigation ended somewhere other than requested.
func (r *Result) Redirected() bool {
	return len(r.Redirects) > 0
}

// Location returns the final path plus query.
func (r *Result) Location() string {
	return routepath.Location{Path: r.Path, Query: r.Query}.String()
}

// Navigator settles navigations: resolve, follow record redirects, run
// middleware, repeat until an attempt is allowed.
type Navigator struct {
	router       *Router
	middleware   []Middleware
	views        ViewResolver
	maxRedirects int
	logger       *slog.Logger
}

// NavigatorOption configures a Navigator.
type NavigatorOption func(*Navigator)

// WithMaxRedirects sets the hop budget of a navigation.
// Default: DefaultMaxRedirects.
func WithMaxRedirects(n int) NavigatorOption {
	return func(nv *Navigator) {
		nv.maxRedirects = n
	}
}

// WithMiddleware appends middleware to the navigator.
func WithMiddleware(mw ...Middleware) NavigatorOption {
	return func(nv *Navigator) {
		nv.middleware = append(nv.middleware, mw...)
	}
}

// WithViewResolver sets the resolver used for the final view.
func WithViewResolver(v ViewResolver) NavigatorOption {
	return func(nv *Navigator) {
		nv.views = v
	}
}

// WithLogger sets the navigator logger.
func WithLogger(l *slog.Logger) NavigatorOption {
	return func(nv *Navigator) {
		nv.logger = l
	}
}

// NewNavigator creates a navigator over r.
func NewNavigator(r *Router, opts ...NavigatorOption) *Navigator {
	nv := &Navigator{
		router:       r,
		maxRedirects: DefaultMaxRedirects,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(nv)
	}
	return nv
}

// Use appends middleware. It must not be called concurrently with Navigate.
func (nv *Navigator) Use(mw ...Middleware) {
	nv.middleware = append(nv.middleware, mw...)
}

// Router returns the underlying router.
func (nv *Navigator) Router() *Router {
	return nv.router
}

// Navigate settles a navigation to target.
//
// Record redirects apply before middleware. A middleware redirect restarts
// the navigation at the new location, which is resolved and checked again.
// Revisiting a location fails with ErrRedirectLoop; more than the hop budget
// fails with ErrTooManyRedirects.
func (nv *Navigator) Navigate(ctx context.Context, target string) (*Result, error) {
	id := uuid.NewString()
	visited := make(map[string]bool)
	var hops []Hop
	from := ""
	current := target

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		loc, err := routepath.NavPath(current)
		if err != nil {
			return nil, fmt.Errorf("router: navigate %q: %w", current, err)
		}
		key := loc.String()
		if visited[key] {
			return nil, fmt.Errorf("%w: %s revisited after %d hops", ErrRedirectLoop, key, len(hops))
		}
		visited[key] = true

		match, err := nv.router.resolve(loc)
		if err != nil {
			return nil, err
		}

		nav := &Navigation{ctx: ctx, ID: id, To: match, From: from, Attempt: attempt}

		next := ""
		reason := HopRecord
		if rd := match.Route.Redirect; rd != nil {
			next = rd.Target(nav)
		} else {
			if err := ComposeMiddleware(nav, nv.middleware, func() error { return nil }); err != nil {
				return nil, err
			}
			next, _ = nav.Redirected()
			reason = HopGuard
		}

		if next == "" {
			res := &Result{
				ID:        id,
				Path:      match.Path,
				Query:     match.Query,
				Route:     match.Route,
				View:      match.Route.View,
				Params:    match.Params,
				Redirects: hops,
			}
			if nv.views != nil && res.View != "" {
				component, err := nv.views.ResolveView(nav.Context(), res.View)
				if err != nil {
					return nil, fmt.Errorf("router: resolve view %s: %w", res.View, err)
				}
				res.Component = component
			}
			nv.logger.Debug("navigation settled",
				"nav_id", id,
				"target", target,
				"path", res.Path,
				"view", string(res.View),
				"hops", len(hops),
			)
			return res, nil
		}

		hops = append(hops, Hop{From: key, To: next, Reason: reason})
		if len(hops) > nv.maxRedirects {
			return nil, fmt.Errorf("%w: more than %d hops from %q", ErrTooManyRedirects, nv.maxRedirects, target)
		}
		nv.logger.Debug("navigation redirected",
			"nav_id", id,
			"from", key,
			"to", next,
			"reason", string(reason),
		)
		from = key
		current = next
	}
}
