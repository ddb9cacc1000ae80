// Package server exposes the console over HTTP.
//
// The server is a chi router with:
//
//	GET  /healthz                 liveness
//	GET  /metrics                 Prometheus exposition
//	GET  /api/console/routes      route table
//	GET  /api/console/session     current session (never the token)
//	POST /api/console/login       log in with {username, password}
//	POST /api/console/logout      log out
//	GET  /api/console/navigate    resolve ?path= without redirecting
//	GET  /*                       history-mode fallback
//
// Every other GET is treated as a console navigation. When the guard or a
// redirect record moves the request elsewhere the server answers 302 with
// the final location; otherwise it answers 200 with the resolved view.
package server
