package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/sss-sync/console/pkg/auth"
	"github.com/sss-sync/console/pkg/authmw"
	consolemw "github.com/sss-sync/console/pkg/middleware"
	"github.com/sss-sync/console/pkg/routepath"
	"github.com/sss-sync/console/pkg/router"
)

const maxLoginBody = 64 << 10

// RouteInfo describes one compiled route.
type RouteInfo struct {
	Name          string   `json:"name,omitempty"`
	Pattern       string   `json:"pattern"`
	View          string   `json:"view,omitempty"`
	Redirect      string   `json:"redirect,omitempty"`
	RequiresAuth  bool     `json:"requiresAuth"`
	RequiresGuest bool     `json:"requiresGuest"`
	Roles         []string `json:"roles,omitempty"`
}

// SessionInfo is the public view of the session. The token is never included.
type SessionInfo struct {
	Authenticated bool   `json:"authenticated"`
	UserID        string `json:"userId,omitempty"`
	Username      string `json:"username,omitempty"`
	Role          string `json:"role,omitempty"`
	Landing       string `json:"landing,omitempty"`
}

// HopInfo is one redirect hop.
type HopInfo struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Reason string `json:"reason"`
}

// NavigationInfo is a settled navigation.
type NavigationInfo struct {
	ID        string            `json:"id"`
	Location  string            `json:"location"`
	Path      string            `json:"path"`
	Query     string            `json:"query,omitempty"`
	Route     string            `json:"route,omitempty"`
	Pattern   string            `json:"pattern"`
	View      string            `json:"view"`
	Params    map[string]string `json:"params,omitempty"`
	Redirects []HopInfo         `json:"redirects"`
}

type errorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

func routeInfo(rt *router.Route) RouteInfo {
	meta := rt.MergedMeta()
	info := RouteInfo{
		Name:          rt.Name,
		Pattern:       rt.Pattern,
		View:          string(rt.View),
		RequiresAuth:  meta.RequiresAuth,
		RequiresGuest: meta.RequiresGuest,
		Roles:         meta.Roles,
	}
	if rt.Redirect != nil {
		info.Redirect = rt.Redirect.String()
	}
	return info
}

func (s *Server) sessionInfo() SessionInfo {
	st := s.store.State()
	if !st.IsAuthenticated() {
		return SessionInfo{}
	}
	return SessionInfo{
		Authenticated: true,
		UserID:        st.UserID,
		Username:      st.Username,
		Role:          st.Role,
		Landing:       authmw.LandingFor(s.store),
	}
}

func navigationInfo(res *router.Result) NavigationInfo {
	info := NavigationInfo{
		ID:        res.ID,
		Location:  res.Location(),
		Path:      res.Path,
		Query:     res.Query,
		View:      string(res.View),
		Params:    res.Params,
		Redirects: make([]HopInfo, 0, len(res.Redirects)),
	}
	if res.Route != nil {
		info.Route = res.Route.Name
		info.Pattern = res.Route.Pattern
	}
	for _, h := range res.Redirects {
		info.Redirects = append(info.Redirects, HopInfo{From: h.From, To: h.To, Reason: string(h.Reason)})
	}
	return info
}

func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	routes := s.console.Router().Routes()
	out := make([]RouteInfo, 0, len(routes))
	for _, rt := range routes {
		out = append(out, routeInfo(rt))
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.sessionInfo())
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds auth.Credentials
	if err := json.NewDecoder(io.LimitReader(r.Body, maxLoginBody)).Decode(&creds); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "request body must be {\"username\", \"password\"}")
		return
	}
	if strings.TrimSpace(creds.Username) == "" || creds.Password == "" {
		s.writeError(w, r, http.StatusBadRequest, "username and password are required")
		return
	}

	_, err := s.store.Login(r.Context(), creds)
	consolemw.RecordLogin(err)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, auth.ErrInvalidCredentials) {
			status = http.StatusUnauthorized
		}
		s.logger.Warn("login failed",
			"username", creds.Username,
			"status", status,
			"error", err,
			"request_id", middleware.GetReqID(r.Context()),
		)
		s.writeError(w, r, status, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, s.sessionInfo())
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.store.Logout(r.Context())
	consolemw.RecordLogout()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("path")
	if target == "" {
		s.writeError(w, r, http.StatusBadRequest, "path query parameter is required")
		return
	}

	res, err := s.console.Navigate(r.Context(), target)
	if err != nil {
		s.writeNavigateError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, navigationInfo(res))
}

// handleFallback resolves every unmatched GET as a console navigation.
func (s *Server) handleFallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		s.writeError(w, r, http.StatusNotFound, "not found")
		return
	}
	if strings.HasPrefix(r.URL.Path, "/api/") {
		s.writeError(w, r, http.StatusNotFound, "no such endpoint")
		return
	}

	requested := r.URL.RequestURI()
	res, err := s.console.Navigate(r.Context(), requested)
	if err != nil {
		s.writeNavigateError(w, r, err)
		return
	}

	if loc := res.Location(); loc != requested {
		http.Redirect(w, r, loc, http.StatusFound)
		return
	}
	s.writeJSON(w, http.StatusOK, navigationInfo(res))
}

func (s *Server) writeNavigateError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	if routepath.IsInvalid(err) {
		status = http.StatusBadRequest
	}
	s.writeError(w, r, status, err.Error())
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	s.writeJSON(w, status, errorBody{Error: msg, RequestID: middleware.GetReqID(r.Context())})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("write response failed", "error", err)
	}
}
