// Package auth holds the console's authenticated-user state.
//
// The auth package owns exactly one Session Store per process. The store is
// loaded from persistent storage at startup and is mutated only by Login
// and Logout. All other methods are pure reads of in-memory state:
//
//	store := auth.NewStore(ctx, storage, httpauth.New(baseURL))
//	if _, err := store.Login(ctx, auth.Credentials{Username: "alice", Password: "pw"}); err != nil {
//	    // prior state is untouched
//	}
//	store.IsAdmin()
//
// # Session Shape
//
// The four fields (token, userId, username, role) are present together or
// absent together. A partially persisted session is loaded as anonymous.
//
// # Storage Failures
//
// The store never fails a mutation because persistent storage is
// unavailable. Write and delete errors are logged at WARN and the
// in-memory state still changes, so navigation is never blocked on disk,
// keyring or network trouble.
//
// # Token Claims
//
// ParseClaims decodes the access token payload for display. It does not
// verify the signature; the backend remains the authority for the token.
package auth
