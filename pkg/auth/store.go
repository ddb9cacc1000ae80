package auth

import (
	"context"
	"log/slog"
	"sync"

	"github.com/sss-sync/console/pkg/session"
)

// Store is the process-wide Session Store.
// It is safe for concurrent use; Login and Logout are serialized.
type Store struct {
	opMu sync.Mutex // serializes Login and Logout

	mu    sync.RWMutex
	state State

	storage session.Storage
	authn   Authenticator
	logger  *slog.Logger
	onMut   []func(State)
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used for storage warnings.
// Default: slog.Default().
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithObserver registers fn to be called after every Login or Logout with
// the resulting state. Observers run while mutators are serialized and
// must not call Login or Logout.
func WithObserver(fn func(State)) StoreOption {
	return func(s *Store) {
		if fn != nil {
			s.onMut = append(s.onMut, fn)
		}
	}
}

// NewStore creates a store and loads any persisted session from storage.
// A nil storage keeps the session in memory only.
func NewStore(ctx context.Context, storage session.Storage, authn Authenticator, opts ...StoreOption) *Store {
	if storage == nil {
		storage = session.NewMemoryStorage()
	}
	s := &Store{
		storage: storage,
		authn:   authn,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.state = s.load(ctx)
	return s
}

// load reads the four slots. Anything short of a complete session is
// treated as anonymous; storage is left as found.
func (s *Store) load(ctx context.Context) State {
	var st State
	fields := []struct {
		key string
		dst *string
	}{
		{session.KeyToken, &st.Token},
		{session.KeyUserID, &st.UserID},
		{session.KeyUsername, &st.Username},
		{session.KeyRole, &st.Role},
	}

	for _, f := range fields {
		v, _, err := s.storage.Get(ctx, f.key)
		if err != nil {
			s.logger.Warn("session load failed, starting anonymous",
				"key", f.key,
				"error", err,
			)
			return State{}
		}
		*f.dst = v
	}

	if st.Empty() {
		return State{}
	}
	if !st.Complete() {
		s.logger.Warn("partial session in storage, starting anonymous",
			"has_token", st.Token != "",
			"has_user_id", st.UserID != "",
			"has_username", st.Username != "",
			"has_role", st.Role != "",
		)
		return State{}
	}
	if !ValidRole(st.Role) {
		s.logger.Warn("unknown role in storage, starting anonymous", "role", st.Role)
		return State{}
	}
	return st
}

// State returns a copy of the current session.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Token returns the access token, or "" when anonymous.
func (s *Store) Token() string { return s.State().Token }

// UserID returns the user id, or "" when anonymous.
func (s *Store) UserID() string { return s.State().UserID }

// Username returns the username, or "" when anonymous.
func (s *Store) Username() string { return s.State().Username }

// Role returns the role, or "" when anonymous.
func (s *Store) Role() string { return s.State().Role }

// IsAuthenticated reports whether a token is present.
func (s *Store) IsAuthenticated() bool { return s.State().IsAuthenticated() }

// IsAdmin reports whether the current role is ADMIN.
func (s *Store) IsAdmin() bool { return s.State().IsAdmin() }

// IsUser reports whether the current role is USER.
func (s *Store) IsUser() bool { return s.State().IsUser() }

// Login exchanges creds for a session through the authenticator.
// On success the new state is held in memory and persisted, then returned.
// If the call fails or the response is malformed the error is returned
// and the prior state is untouched.
func (s *Store) Login(ctx context.Context, creds Credentials) (State, error) {
	if s.authn == nil {
		return State{}, ErrNoAuthenticator
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	res, err := s.authn.Authenticate(ctx, creds)
	if err != nil {
		return State{}, err
	}
	if err := res.Validate(); err != nil {
		return State{}, err
	}

	next := res.State()
	s.mu.Lock()
	s.state = next
	s.mu.Unlock()

	s.persist(ctx, next)
	s.notify(next)

	s.logger.Info("logged in",
		"username", next.Username,
		"user_id", next.UserID,
		"role", next.Role,
	)
	return next, nil
}

// Logout clears the session in memory and removes the persisted keys.
// It always succeeds and is idempotent.
func (s *Store) Logout(ctx context.Context) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	prev := s.state
	s.state = State{}
	s.mu.Unlock()

	for _, key := range session.Keys {
		if err := s.storage.Delete(ctx, key); err != nil {
			s.logger.Warn("session delete failed", "key", key, "error", err)
		}
	}
	s.notify(State{})

	if prev.IsAuthenticated() {
		s.logger.Info("logged out", "username", prev.Username)
	}
}

func (s *Store) persist(ctx context.Context, st State) {
	values := []struct{ key, value string }{
		{session.KeyToken, st.Token},
		{session.KeyUserID, st.UserID},
		{session.KeyUsername, st.Username},
		{session.KeyRole, st.Role},
	}
	for _, kv := range values {
		if err := s.storage.Set(ctx, kv.key, kv.value); err != nil {
			s.logger.Warn("session write failed", "key", kv.key, "error", err)
		}
	}
}

func (s *Store) notify(st State) {
	for _, fn := range s.onMut {
		fn(st)
	}
}

// Close releases the underlying storage.
func (s *Store) Close() error {
	return s.storage.Close()
}
