// Package router resolves console navigations against a static route table.
//
// The router provides:
//   - Declarative route entries with nested children and access metadata
//   - A segment tree for most-specific matching (static, :param, *catch-all)
//   - Static and computed redirects on route records
//   - A middleware chain evaluated before every navigation attempt
//   - A Navigator that follows redirects until a view is allowed
//
// # Route Table
//
//	r := router.MustNew([]router.RouteEntry{
//	    {Path: "/login", Name: "Login", View: "views/Login", Meta: router.Meta{RequiresGuest: true}},
//	    {
//	        Path:     "/admin",
//	        View:     "layout/Admin",
//	        Redirect: router.RedirectTo("/admin/conflicts"),
//	        Children: []router.RouteEntry{
//	            {Path: "conflicts", View: "views/admin/Conflicts"},
//	        },
//	    },
//	    {Path: "/*pathMatch", Redirect: router.RedirectTo("/")},
//	})
//
// # Navigation
//
//	nv := router.NewNavigator(r, router.WithMiddleware(guard))
//	res, err := nv.Navigate(ctx, "/admin")
//	// res.Path == "/admin/conflicts", res.Redirects lists each hop
//
// Record redirects are applied before middleware runs. Middleware redirects
// with nav.Redirect; the navigator then starts a new attempt at the target.
package router
