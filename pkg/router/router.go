package router

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/sss-sync/console/pkg/routepath"
)

// Router errors.
var (
	// ErrNoRoute is returned when no record matches a path and the table has no catch-all.
	ErrNoRoute = errors.New("router: no route matches path")

	// ErrInvalidRoute is returned when the route table is malformed.
	ErrInvalidRoute = errors.New("router: invalid route table")
)

func errConflictingParam(existing, name string) error {
	return fmt.Errorf("%w: parameter :%s conflicts with :%s at the same position", ErrInvalidRoute, name, existing)
}

func errCatchAllNotLast(seg string) error {
	return fmt.Errorf("%w: catch-all %s must be the last segment", ErrInvalidRoute, seg)
}

// Router resolves paths against a static route table.
// A Router is immutable after New and safe for concurrent use.
type Router struct {
	root   *node
	routes []*Route
	byName map[string]*Route
}

// New compiles a route table.
func New(entries []RouteEntry) (*Router, error) {
	r := &Router{
		root:   &node{},
		byName: make(map[string]*Route),
	}
	for i := range entries {
		if _, err := r.add(&entries[i], nil, "/"); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// MustNew is like New but panics on a malformed table.
func MustNew(entries []RouteEntry) *Router {
	r, err := New(entries)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Router) add(entry *RouteEntry, parent *Route, base string) (*Route, error) {
	pattern := joinPattern(base, entry.Path)

	switch {
	case entry.View == "" && entry.Redirect == nil && len(entry.Children) == 0:
		return nil, fmt.Errorf("%w: %s has no view, redirect or children", ErrInvalidRoute, pattern)
	case entry.View != "" && entry.Redirect != nil && len(entry.Children) == 0:
		return nil, fmt.Errorf("%w: leaf %s declares both a view and a redirect", ErrInvalidRoute, pattern)
	}

	if entry.Name != "" {
		if _, dup := r.byName[entry.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate route name %q", ErrInvalidRoute, entry.Name)
		}
	}

	leaf, err := r.root.insert(routepath.Segments(pattern))
	if err != nil {
		return nil, err
	}
	if leaf.route != nil {
		return nil, fmt.Errorf("%w: duplicate pattern %s", ErrInvalidRoute, pattern)
	}

	route := &Route{
		Name:       entry.Name,
		Pattern:    pattern,
		View:       entry.View,
		Redirect:   entry.Redirect,
		Meta:       entry.Meta,
		Parent:     parent,
		IsCatchAll: leaf.isCatchAll,
	}
	leaf.route = route
	r.routes = append(r.routes, route)
	if route.Name != "" {
		r.byName[route.Name] = route
	}

	for i := range entry.Children {
		child, err := r.add(&entry.Children[i], route, pattern)
		if err != nil {
			return nil, err
		}
		route.Children = append(route.Children, child)
	}
	return route, nil
}

// joinPattern resolves a child pattern against its parent.
func joinPattern(base, p string) string {
	if strings.HasPrefix(p, "/") {
		return cleanPattern(p)
	}
	return cleanPattern(path.Join(base, p))
}

func cleanPattern(p string) string {
	p = "/" + strings.Trim(p, "/")
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	return p
}

// Resolve canonicalizes path and returns the most specific matching record.
func (r *Router) Resolve(path string) (*Match, error) {
	loc, err := routepath.Canonicalize(path)
	if err != nil {
		return nil, err
	}
	return r.resolve(loc)
}

func (r *Router) resolve(loc routepath.Location) (*Match, error) {
	params := make(map[string]string)
	found := r.root.match(routepath.Segments(loc.Path), params)
	if found == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoRoute, loc.Path)
	}

	return &Match{
		Route:  found.route,
		Path:   loc.Path,
		Query:  loc.Query,
		Params: params,
	}, nil
}

// ByName returns the record registered under name.
func (r *Router) ByName(name string) (*Route, bool) {
	route, ok := r.byName[name]
	return route, ok
}

// Routes returns every record in declaration order, parents before children.
func (r *Router) Routes() []*Route {
	out := make([]*Route, len(r.routes))
	copy(out, r.routes)
	return out
}
