package console

import (
	"github.com/sss-sync/console/pkg/auth"
	"github.com/sss-sync/console/pkg/authmw"
	"github.com/sss-sync/console/pkg/router"
)

// Route names.
const (
	RouteLogin              = "Login"
	RouteOrderNew           = "OrderNew"
	RouteAdminLayout        = "AdminLayout"
	RouteComplexQuery       = "ComplexQuery"
	RouteDailySyncReport    = "DailySyncReport"
	RouteConflictManagement = "ConflictManagement"
)

// Views rendered by the console.
const (
	ViewLogin              router.ViewID = "login"
	ViewOrderNew           router.ViewID = "user/order-new"
	ViewAdminLayout        router.ViewID = "admin/layout"
	ViewComplexQuery       router.ViewID = "admin/complex-query"
	ViewDailySyncReport    router.ViewID = "admin/daily-sync-report"
	ViewConflictManagement router.ViewID = "admin/conflict-management"
)

// Well-known paths.
const (
	PathRoot               = "/"
	PathLogin              = authmw.LoginPath
	PathOrderNew           = authmw.UserLanding
	PathAdmin              = authmw.AdminLanding
	PathComplexQuery       = "/admin/queries/complex"
	PathDailySyncReport    = "/admin/reports/daily-sync"
	PathConflictManagement = "/admin/conflicts"
)

// rootTarget is where "/" sends the session.
func rootTarget(s authmw.Session) string {
	if !s.IsAuthenticated() {
		return PathLogin
	}
	return authmw.LandingFor(s)
}

// Routes returns the console route table. The root redirect consults s on
// every navigation.
func Routes(s authmw.Session) []router.RouteEntry {
	adminOnly := router.Meta{RequiresAuth: true, Roles: []string{auth.RoleAdmin}}

	return []router.RouteEntry{
		{
			Path: PathRoot,
			Redirect: router.RedirectWith(func(*router.Navigation) string {
				return rootTarget(s)
			}),
		},
		{
			Path: PathLogin,
			Name: RouteLogin,
			View: ViewLogin,
			Meta: router.Meta{RequiresGuest: true},
		},
		{
			Path: PathOrderNew,
			Name: RouteOrderNew,
			View: ViewOrderNew,
			Meta: router.Meta{RequiresAuth: true, Roles: []string{auth.RoleUser, auth.RoleAdmin}},
		},
		{
			Path:     PathAdmin,
			Name:     RouteAdminLayout,
			View:     ViewAdminLayout,
			Meta:     adminOnly,
			Redirect: router.RedirectTo(PathComplexQuery),
			Children: []router.RouteEntry{
				{Path: "queries/complex", Name: RouteComplexQuery, View: ViewComplexQuery, Meta: adminOnly},
				{Path: "reports/daily-sync", Name: RouteDailySyncReport, View: ViewDailySyncReport, Meta: adminOnly},
				{Path: "conflicts", Name: RouteConflictManagement, View: ViewConflictManagement, Meta: adminOnly},
			},
		},
		{
			Path:     "/*pathMatch",
			Redirect: router.RedirectTo(PathRoot),
		},
	}
}
