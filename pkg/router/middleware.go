package router

// ComposeMiddleware runs mw in order around handler. Each middleware decides
// whether the rest of the chain runs by calling or skipping next.
func ComposeMiddleware(nav *Navigation, mw []Middleware, handler func() error) error {
	next := handler
	for i := len(mw) - 1; i >= 0; i-- {
		m, inner := mw[i], next
		next = func() error { return m.Handle(nav, inner) }
	}
	return next()
}

// Chain groups mw into one Middleware. The group's next runs after the last
// member calls its own next; a member that redirects stops the group there.
func Chain(mw ...Middleware) Middleware {
	return MiddlewareFunc(func(nav *Navigation, next func() error) error {
		return ComposeMiddleware(nav, mw, next)
	})
}
