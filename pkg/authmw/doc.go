// Package authmw provides the console's navigation guard.
//
// The guard is router middleware evaluated once per navigation attempt. It
// reads the session through a small interface, so the auth package stays
// router-independent:
//
//	nv := router.NewNavigator(r, router.WithMiddleware(authmw.Guard(store)))
//
// Denied navigations are never errors. The guard redirects instead:
// anonymous sessions go to the login route, everyone else to their
// role-based landing route.
package authmw
