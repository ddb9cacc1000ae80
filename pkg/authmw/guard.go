package authmw

import (
	"log/slog"

	"github.com/sss-sync/console/pkg/router"
)

// Default guard destinations.
const (
	LoginPath    = "/login"
	AdminLanding = "/admin"
	UserLanding  = "/orders/new"
)

// Session is the read-only view of the auth state the guard consults.
// *auth.Store satisfies it.
type Session interface {
	IsAuthenticated() bool
	IsAdmin() bool
	Role() string
}

// Decision is the outcome of a guard evaluation.
type Decision int

const (
	// Allow lets the navigation proceed.
	Allow Decision = iota
	// NeedLogin redirects an anonymous session to the login route.
	NeedLogin
	// GuestOnly redirects an authenticated session away from a guest route.
	GuestOnly
	// RoleDenied redirects a session whose role is not allowed.
	RoleDenied
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case NeedLogin:
		return "need_login"
	case GuestOnly:
		return "guest_only"
	case RoleDenied:
		return "role_denied"
	default:
		return "unknown"
	}
}

// Evaluate applies the access rules to meta in order. The first failing
// check decides.
func Evaluate(s Session, meta router.Meta) Decision {
	switch {
	case meta.RequiresAuth && !s.IsAuthenticated():
		return NeedLogin
	case meta.RequiresGuest && s.IsAuthenticated():
		return GuestOnly
	case meta.HasRoles() && !meta.AllowsRole(s.Role()):
		return RoleDenied
	default:
		return Allow
	}
}

// Config holds guard destinations.
type Config struct {
	LoginPath    string
	AdminLanding string
	UserLanding  string
	Logger       *slog.Logger
}

// Option configures the guard.
type Option func(*Config)

// WithLoginPath overrides the login route.
func WithLoginPath(p string) Option {
	return func(c *Config) { c.LoginPath = p }
}

// WithLandings overrides the admin and user landing routes.
func WithLandings(admin, user string) Option {
	return func(c *Config) {
		c.AdminLanding = admin
		c.UserLanding = user
	}
}

// WithLogger sets the logger for guard decisions.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		if l != nil {
			c.Logger = l
		}
	}
}

func newConfig(opts []Option) Config {
	cfg := Config{
		LoginPath:    LoginPath,
		AdminLanding: AdminLanding,
		UserLanding:  UserLanding,
		Logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// landing returns the role-based landing route for s.
func (c Config) landing(s Session) string {
	if s.IsAdmin() {
		return c.AdminLanding
	}
	return c.UserLanding
}

// LandingFor returns the role-based landing route: /admin for ADMIN,
// /orders/new for everyone else.
func LandingFor(s Session, opts ...Option) string {
	return newConfig(opts).landing(s)
}

// Guard returns middleware that redirects navigations the session may not
// make. Allowed navigations continue down the chain.
func Guard(s Session, opts ...Option) router.Middleware {
	cfg := newConfig(opts)

	return router.MiddlewareFunc(func(nav *router.Navigation, next func() error) error {
		var meta router.Meta
		if nav.To != nil {
			meta = nav.To.Meta()
		}

		d := Evaluate(s, meta)
		var target string
		switch d {
		case Allow:
			return next()
		case NeedLogin:
			target = cfg.LoginPath
		default:
			target = cfg.landing(s)
		}

		cfg.Logger.Debug("guard redirect",
			"nav_id", nav.ID,
			"path", nav.Path(),
			"decision", d.String(),
			"to", target,
		)
		nav.SetValue(decisionKey{}, d)
		nav.Redirect(target)
		return nil
	})
}

type decisionKey struct{}

// DecisionOf returns the guard decision recorded on nav, Allow if none.
func DecisionOf(nav *router.Navigation) Decision {
	if d, ok := nav.Value(decisionKey{}).(Decision); ok {
		return d
	}
	return Allow
}
