package auth

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Roles recognized by the console. The set is closed.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// Roles lists every valid role.
var Roles = []string{RoleUser, RoleAdmin}

// ValidRole reports whether role is one of Roles.
func ValidRole(role string) bool {
	return slices.Contains(Roles, role)
}

var (
	// ErrMalformedResponse is returned when a login response lacks any of
	// the four session fields or carries an unknown role.
	ErrMalformedResponse = errors.New("auth: malformed login response")

	// ErrInvalidCredentials is returned when the backend rejects the
	// username or password.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")

	// ErrNoAuthenticator is returned by Login on a store built without one.
	ErrNoAuthenticator = errors.New("auth: no authenticator configured")
)

// State is the authenticated-user session.
// The empty string means a field is absent.
type State struct {
	Token    string `json:"token,omitempty"`
	UserID   string `json:"userId,omitempty"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
}

// IsAuthenticated reports whether the token is present.
func (s State) IsAuthenticated() bool {
	return s.Token != ""
}

// IsAdmin reports whether the role is ADMIN.
func (s State) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// IsUser reports whether the role is USER.
func (s State) IsUser() bool {
	return s.Role == RoleUser
}

// Complete reports whether all four fields are present.
func (s State) Complete() bool {
	return s.Token != "" && s.UserID != "" && s.Username != "" && s.Role != ""
}

// Empty reports whether all four fields are absent.
func (s State) Empty() bool {
	return s == State{}
}

// Credentials is the login request payload.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResult is the session data returned by a successful login call.
type LoginResult struct {
	AccessToken string `json:"accessToken"`
	UserID      string `json:"userId"`
	Username    string `json:"username"`
	Role        string `json:"role"`
}

// Validate checks that every field is present and the role is known.
// Errors wrap ErrMalformedResponse.
func (r LoginResult) Validate() error {
	var missing []string
	if r.AccessToken == "" {
		missing = append(missing, "accessToken")
	}
	if r.UserID == "" {
		missing = append(missing, "userId")
	}
	if r.Username == "" {
		missing = append(missing, "username")
	}
	if r.Role == "" {
		missing = append(missing, "role")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrMalformedResponse, strings.Join(missing, ", "))
	}
	if !ValidRole(r.Role) {
		return fmt.Errorf("%w: unknown role %q", ErrMalformedResponse, r.Role)
	}
	return nil
}

// State converts the result to session state.
func (r LoginResult) State() State {
	return State{
		Token:    r.AccessToken,
		UserID:   r.UserID,
		Username: r.Username,
		Role:     r.Role,
	}
}

// Authenticator exchanges credentials for session data.
type Authenticator interface {
	Authenticate(ctx context.Context, creds Credentials) (LoginResult, error)
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(ctx context.Context, creds Credentials) (LoginResult, error)

// Authenticate calls f.
func (f AuthenticatorFunc) Authenticate(ctx context.Context, creds Credentials) (LoginResult, error) {
	return f(ctx, creds)
}
