package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sss-sync/console/pkg/auth"
	"github.com/sss-sync/console/pkg/console"
	"github.com/sss-sync/console/pkg/session"
)

// testAuthenticator accepts root/pw as ADMIN and ops/pw as USER.
var testAuthenticator = auth.AuthenticatorFunc(func(ctx context.Context, creds auth.Credentials) (auth.LoginResult, error) {
	if creds.Password != "pw" {
		return auth.LoginResult{}, auth.ErrInvalidCredentials
	}
	switch creds.Username {
	case "root":
		return auth.LoginResult{AccessToken: "tok-root", UserID: "1", Username: "root", Role: auth.RoleAdmin}, nil
	case "ops":
		return auth.LoginResult{AccessToken: "tok-ops", UserID: "2", Username: "ops", Role: auth.RoleUser}, nil
	default:
		return auth.LoginResult{}, auth.ErrInvalidCredentials
	}
})

func newTestServer(t *testing.T) (*Server, *auth.Store, *prometheus.Registry) {
	t.Helper()
	store := auth.NewStore(context.Background(), session.NewMemoryStorage(), testAuthenticator)
	c, err := console.New(store)
	if err != nil {
		t.Fatalf("console.New error = %v", err)
	}
	reg := prometheus.NewRegistry()
	cfg := DefaultServerConfig()
	cfg.Gatherer = reg
	return New(c, store, cfg), store, reg
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode %T: %v (body %q)", v, err, rec.Body.String())
	}
	return v
}

func login(t *testing.T, h http.Handler, user string) {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/console/login", `{"username":"`+user+`","password":"pw"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: status %d body %s", user, rec.Code, rec.Body.String())
	}
}

func TestHealthz(t *testing.T) {
	s, _, _ := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("healthz = %d %q", rec.Code, rec.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s, _, reg := newTestServer(t)
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_hits_total", Help: "test"})
	reg.MustRegister(c)
	c.Inc()

	rec := do(t, s, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "test_hits_total 1") {
		t.Errorf("metrics body missing counter: %s", rec.Body.String())
	}
}

func TestMetricsDisabled(t *testing.T) {
	store := auth.NewStore(context.Background(), nil, testAuthenticator)
	c, _ := console.New(store)
	cfg := DefaultServerConfig()
	cfg.Gatherer = nil
	s := New(c, store, cfg)

	// without a gatherer /metrics is just another console path
	rec := do(t, s, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusFound {
		t.Errorf("status = %d, want 302 via catch-all", rec.Code)
	}
}

func TestRoutesEndpoint(t *testing.T) {
	s, _, _ := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/api/console/routes", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	routes := decode[[]RouteInfo](t, rec)
	byPattern := make(map[string]RouteInfo)
	for _, r := range routes {
		byPattern[r.Pattern] = r
	}

	conflicts, ok := byPattern["/admin/conflicts"]
	if !ok || conflicts.Name != "ConflictManagement" || !conflicts.RequiresAuth || len(conflicts.Roles) != 1 {
		t.Errorf("/admin/conflicts = %+v", conflicts)
	}
	if root := byPattern["/"]; root.Redirect != "(dynamic)" {
		t.Errorf("/ redirect = %q", root.Redirect)
	}
	if admin := byPattern["/admin"]; admin.Redirect != "/admin/queries/complex" {
		t.Errorf("/admin redirect = %q", admin.Redirect)
	}
	if login := byPattern["/login"]; !login.RequiresGuest {
		t.Errorf("/login = %+v", login)
	}
}

func TestLoginLogoutFlow(t *testing.T) {
	s, store, _ := newTestServer(t)

	if info := decode[SessionInfo](t, do(t, s, http.MethodGet, "/api/console/session", "")); info.Authenticated {
		t.Fatalf("session before login = %+v", info)
	}

	rec := do(t, s, http.MethodPost, "/api/console/login", `{"username":"root","password":"pw"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d body %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "tok-root") {
		t.Error("login response leaks the token")
	}
	info := decode[SessionInfo](t, rec)
	want := SessionInfo{Authenticated: true, UserID: "1", Username: "root", Role: "ADMIN", Landing: "/admin"}
	if info != want {
		t.Errorf("login response = %+v, want %+v", info, want)
	}
	if !store.IsAdmin() {
		t.Error("store not updated by login")
	}

	rec = do(t, s, http.MethodPost, "/api/console/logout", "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("logout status = %d", rec.Code)
	}
	if store.IsAuthenticated() {
		t.Error("store still authenticated after logout")
	}
}

func TestLoginErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"bad json", `{`, http.StatusBadRequest},
		{"missing password", `{"username":"root"}`, http.StatusBadRequest},
		{"blank username", `{"username":"  ","password":"pw"}`, http.StatusBadRequest},
		{"wrong password", `{"username":"root","password":"nope"}`, http.StatusUnauthorized},
		{"unknown user", `{"username":"eve","password":"pw"}`, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, store, _ := newTestServer(t)
			rec := do(t, s, http.MethodPost, "/api/console/login", tt.body)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body.String())
			}
			body := decode[errorBody](t, rec)
			if body.Error == "" || body.RequestID == "" {
				t.Errorf("error body = %+v", body)
			}
			if store.IsAuthenticated() {
				t.Error("store authenticated after failed login")
			}
		})
	}
}

func TestLoginBackendFailure(t *testing.T) {
	broken := auth.AuthenticatorFunc(func(ctx context.Context, creds auth.Credentials) (auth.LoginResult, error) {
		return auth.LoginResult{AccessToken: "t"}, nil
	})
	store := auth.NewStore(context.Background(), nil, broken)
	c, _ := console.New(store)
	s := New(c, store, nil)

	rec := do(t, s, http.MethodPost, "/api/console/login", `{"username":"root","password":"pw"}`)
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestNavigateEndpoint(t *testing.T) {
	s, _, _ := newTestServer(t)
	login(t, s, "ops")

	rec := do(t, s, http.MethodGet, "/api/console/navigate?path=/admin/conflicts", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}
	nav := decode[NavigationInfo](t, rec)
	if nav.Path != "/orders/new" || nav.Route != "OrderNew" || nav.View != "user/order-new" {
		t.Errorf("navigation = %+v", nav)
	}
	if len(nav.Redirects) != 1 || nav.Redirects[0].Reason != "guard" {
		t.Errorf("redirects = %+v", nav.Redirects)
	}

	if rec := do(t, s, http.MethodGet, "/api/console/navigate", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("missing path status = %d", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/api/console/navigate?path=/a%5Cb", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid path status = %d", rec.Code)
	}
}

func TestFallbackRedirects(t *testing.T) {
	tests := []struct {
		name   string
		user   string
		target string
		status int
		loc    string
	}{
		{"anonymous root", "", "/", http.StatusFound, "/login"},
		{"anonymous login", "", "/login", http.StatusOK, ""},
		{"anonymous conflicts", "", "/admin/conflicts", http.StatusFound, "/login"},
		{"user login", "ops", "/login", http.StatusFound, "/orders/new"},
		{"user complex query", "ops", "/admin/queries/complex", http.StatusFound, "/orders/new"},
		{"admin login", "root", "/login", http.StatusFound, "/admin/queries/complex"},
		{"admin orders", "root", "/orders/new", http.StatusOK, ""},
		{"admin unknown", "root", "/unknown/path", http.StatusFound, "/admin/queries/complex"},
		{"admin query kept", "root", "/admin/conflicts?status=open", http.StatusOK, ""},
		{"admin trailing slash", "root", "/admin/conflicts/", http.StatusFound, "/admin/conflicts"},
		{"user above root", "ops", "/..", http.StatusFound, "/orders/new"},
		{"anonymous above root", "", "/foo/../..", http.StatusFound, "/login"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, _ := newTestServer(t)
			if tt.user != "" {
				login(t, s, tt.user)
			}
			rec := do(t, s, http.MethodGet, tt.target, "")
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body.String())
			}
			if got := rec.Header().Get("Location"); got != tt.loc {
				t.Errorf("Location = %q, want %q", got, tt.loc)
			}
		})
	}
}

func TestFallbackRejects(t *testing.T) {
	s, _, _ := newTestServer(t)

	if rec := do(t, s, http.MethodPost, "/orders/new", `{}`); rec.Code != http.StatusNotFound {
		t.Errorf("POST fallback status = %d, want 404", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/api/unknown", ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown api status = %d, want 404", rec.Code)
	}
}

func TestServeAndShutdown(t *testing.T) {
	s, _, _ := newTestServer(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	client := &http.Client{
		Timeout:       2 * time.Second,
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}
	var resp *http.Response
	for i := 0; i < 50; i++ {
		resp, err = client.Get("http://" + ln.Addr().String() + "/healthz")
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestValidateConfig(t *testing.T) {
	cfg := DefaultServerConfig()
	if err := cfg.ValidateConfig(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	cfg.Address = ""
	if err := cfg.ValidateConfig(); err == nil {
		t.Error("empty address accepted")
	}
	cfg = DefaultServerConfig()
	cfg.ShutdownTimeout = 0
	if err := cfg.ValidateConfig(); err == nil {
		t.Error("zero shutdown timeout accepted")
	}
}
