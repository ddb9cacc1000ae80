// Package console assembles the sync admin console: its route table, the
// auth guard and the navigator that ties them to a session.
//
//	store := auth.NewStore(ctx, storage, httpauth.New(cfg.API.BaseURL))
//	c, err := console.New(store)
//	res, err := c.Navigate(ctx, "/")
//	// anonymous: res.Path == "/login"
//
// Paths the console can settle on:
//
//	/login                      Login (guests only)
//	/orders/new                 OrderNew (USER, ADMIN)
//	/admin/queries/complex      ComplexQuery (ADMIN)
//	/admin/reports/daily-sync   DailySyncReport (ADMIN)
//	/admin/conflicts            ConflictManagement (ADMIN)
//
// "/" and "/admin" always redirect, and anything else falls through to "/".
package console
