package router

import (
	"context"
	"slices"
)

// ViewID identifies a renderable unit. The router never inspects it.
type ViewID string

// Meta is the access metadata attached to a route entry.
type Meta struct {
	// RequiresAuth restricts the route to authenticated sessions.
	RequiresAuth bool

	// RequiresGuest restricts the route to anonymous sessions.
	RequiresGuest bool

	// Roles lists the roles allowed on the route. Nil means unrestricted.
	Roles []string
}

// HasRoles reports whether the meta declares an allowed-roles set.
func (m Meta) HasRoles() bool {
	return m.Roles != nil
}

// AllowsRole reports whether role may enter a route carrying this meta.
// A meta without a roles set allows every role.
func (m Meta) AllowsRole(role string) bool {
	if m.Roles == nil {
		return true
	}
	return slices.Contains(m.Roles, role)
}

// RedirectFunc computes a redirect target for the navigation being resolved.
type RedirectFunc func(nav *Navigation) string

// Redirect is a static or computed redirect target of a route record.
type Redirect struct {
	to string
	fn RedirectFunc
}

// RedirectTo returns a static redirect.
func RedirectTo(path string) *Redirect {
	return &Redirect{to: path}
}

// RedirectWith returns a redirect computed per navigation.
func RedirectWith(fn RedirectFunc) *Redirect {
	return &Redirect{fn: fn}
}

// Target returns the redirect destination for nav.
func (r *Redirect) Target(nav *Navigation) string {
	if r.fn != nil {
		return r.fn(nav)
	}
	return r.to
}

// Dynamic reports whether the target is computed per navigation.
func (r *Redirect) Dynamic() bool {
	return r.fn != nil
}

// String describes the redirect for listings.
func (r *Redirect) String() string {
	if r.fn != nil {
		return "(dynamic)"
	}
	return r.to
}

// RouteEntry declares one path-to-view mapping of the route table.
//
// Path segments may be static ("orders"), parameters (":id") or a trailing
// catch-all ("*rest"). A child path without a leading "/" is relative to
// its parent.
type RouteEntry struct {
	Path     string
	Name     string
	View     ViewID
	Children []RouteEntry
	Redirect *Redirect
	Meta     Meta
}

// Route is a compiled route record.
type Route struct {
	// Name is the optional route name.
	Name string

	// Pattern is the full path pattern including parent segments.
	Pattern string

	// View is the view rendered for the route.
	View ViewID

	// Redirect is set when the record redirects instead of rendering.
	Redirect *Redirect

	// Meta is the record's own metadata.
	Meta Meta

	// Parent is the enclosing record, nil at the top level.
	Parent *Route

	// Children are the nested records in declaration order.
	Children []*Route

	// IsCatchAll marks a pattern ending in a catch-all segment.
	IsCatchAll bool
}

// Matched returns the chain of records from the outermost parent to r.
func (r *Route) Matched() []*Route {
	var chain []*Route
	for cur := r; cur != nil; cur = cur.Parent {
		chain = append(chain, cur)
	}
	slices.Reverse(chain)
	return chain
}

// MergedMeta returns the meta seen by guards: booleans are OR-ed along the
// matched chain and the nearest declared roles set wins. A child cannot
// lift a parent's RequiresAuth or RequiresGuest, because an unset bool and
// false look the same.
func (r *Route) MergedMeta() Meta {
	var merged Meta
	for _, rec := range r.Matched() {
		merged.RequiresAuth = merged.RequiresAuth || rec.Meta.RequiresAuth
		merged.RequiresGuest = merged.RequiresGuest || rec.Meta.RequiresGuest
		if rec.Meta.Roles != nil {
			merged.Roles = rec.Meta.Roles
		}
	}
	return merged
}

// Match is the result of resolving a path against the route table.
type Match struct {
	// Route is the matched record.
	Route *Route

	// Path is the canonical requested path.
	Path string

	// Query is the raw query string.
	Query string

	// Params holds the decoded parameter and catch-all captures.
	Params map[string]string
}

// Meta returns the merged meta of the matched record.
func (m *Match) Meta() Meta {
	return m.Route.MergedMeta()
}

// ViewResolver turns a view identifier into something renderable.
// The router hands the identifier over and never looks at the result.
type ViewResolver interface {
	ResolveView(ctx context.Context, id ViewID) (any, error)
}

// ViewResolverFunc is a function adapter for ViewResolver.
type ViewResolverFunc func(ctx context.Context, id ViewID) (any, error)

// ResolveView implements ViewResolver.
func (f ViewResolverFunc) ResolveView(ctx context.Context, id ViewID) (any, error) {
	return f(ctx, id)
}

// Middleware runs before a navigation attempt is allowed.
type Middleware interface {
	// Handle processes the navigation and optionally calls next.
	// Return an error to abort the navigation.
	// Call nav.Redirect and return nil without calling next to redirect.
	Handle(nav *Navigation, next func() error) error
}

// MiddlewareFunc is a function adapter for Middleware.
type MiddlewareFunc func(nav *Navigation, next func() error) error

// Handle implements Middleware.
func (f MiddlewareFunc) Handle(nav *Navigation, next func() error) error {
	return f(nav, next)
}
