package console

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sss-sync/console/pkg/authmw"
	"github.com/sss-sync/console/pkg/middleware"
	"github.com/sss-sync/console/pkg/router"
)

// Console binds the route table and guard to one session.
type Console struct {
	session   authmw.Session
	router    *router.Router
	navigator *router.Navigator
	logger    *slog.Logger
}

type options struct {
	logger       *slog.Logger
	views        router.ViewResolver
	middleware   []router.Middleware
	maxRedirects int
	guardOpts    []authmw.Option
}

// Option configures a Console.
type Option func(*options)

// WithLogger sets the logger for navigation and guard diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithViewResolver sets the resolver that turns view ids into renderables.
func WithViewResolver(v router.ViewResolver) Option {
	return func(o *options) { o.views = v }
}

// WithMiddleware adds navigation middleware that runs before the guard.
func WithMiddleware(mw ...router.Middleware) Option {
	return func(o *options) { o.middleware = append(o.middleware, mw...) }
}

// WithMaxRedirects overrides the redirect hop budget.
func WithMaxRedirects(n int) Option {
	return func(o *options) { o.maxRedirects = n }
}

// WithGuardOptions passes options through to the guard.
func WithGuardOptions(opts ...authmw.Option) Option {
	return func(o *options) { o.guardOpts = append(o.guardOpts, opts...) }
}

// New builds the console for s.
func New(s authmw.Session, opts ...Option) (*Console, error) {
	o := options{
		logger:       slog.Default(),
		maxRedirects: router.DefaultMaxRedirects,
	}
	for _, opt := range opts {
		opt(&o)
	}

	r, err := router.New(Routes(s))
	if err != nil {
		return nil, fmt.Errorf("console: build routes: %w", err)
	}

	guard := authmw.Guard(s, append([]authmw.Option{authmw.WithLogger(o.logger)}, o.guardOpts...)...)

	navOpts := []router.NavigatorOption{
		router.WithMiddleware(router.Chain(o.middleware...), guard),
		router.WithMaxRedirects(o.maxRedirects),
		router.WithLogger(o.logger),
	}
	if o.views != nil {
		navOpts = append(navOpts, router.WithViewResolver(o.views))
	}

	return &Console{
		session:   s,
		router:    r,
		navigator: router.NewNavigator(r, navOpts...),
		logger:    o.logger,
	}, nil
}

// Navigate resolves path for the current session, following redirects
// until the destination is allowed.
func (c *Console) Navigate(ctx context.Context, path string) (*router.Result, error) {
	res, err := c.navigator.Navigate(ctx, path)
	if err != nil {
		middleware.RecordNavigationError(err)
		c.logger.Warn("navigation failed", "path", path, "error", err)
		return nil, err
	}
	return res, nil
}

// Landing returns the role-based landing path of the current session.
func (c *Console) Landing() string {
	return authmw.LandingFor(c.session)
}

// Router returns the compiled route table.
func (c *Console) Router() *router.Router {
	return c.router
}

// Navigator returns the underlying navigator.
func (c *Console) Navigator() *router.Navigator {
	return c.navigator
}
