package httpauth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/sss-sync/console/pkg/auth"
)

// DefaultLoginPath is the backend login endpoint.
const DefaultLoginPath = "/api/auth/login"

// RequestIDHeader carries a per-call correlation id.
const RequestIDHeader = "X-Request-ID"

// maxBodyBytes bounds how much of a response is read.
const maxBodyBytes = 1 << 20

// Client calls the backend login endpoint.
type Client struct {
	baseURL    string
	loginPath  string
	client     *http.Client
	timeout    time.Duration
	logger     *slog.Logger
	propagator propagation.TextMapPropagator
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.client = c
		}
	}
}

// WithTimeout sets the request timeout. It applies to a copy of the HTTP
// client, so a client passed to WithHTTPClient is never modified.
// Default: 10 seconds.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		cl.timeout = d
	}
}

// WithLoginPath overrides the login endpoint path.
func WithLoginPath(p string) Option {
	return func(cl *Client) {
		cl.loginPath = p
	}
}

// WithLogger sets the logger for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(cl *Client) {
		if logger != nil {
			cl.logger = logger
		}
	}
}

// WithPropagator sets the propagator used to inject trace headers.
// Default: otel.GetTextMapPropagator().
func WithPropagator(p propagation.TextMapPropagator) Option {
	return func(cl *Client) {
		cl.propagator = p
	}
}

// New creates a login client for the backend at baseURL.
func New(baseURL string, opts ...Option) *Client {
	cl := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		loginPath: DefaultLoginPath,
		client:    &http.Client{Timeout: 10 * time.Second},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(cl)
	}
	if cl.timeout > 0 {
		hc := *cl.client
		hc.Timeout = cl.timeout
		cl.client = &hc
	}
	if cl.propagator == nil {
		cl.propagator = otel.GetTextMapPropagator()
	}
	return cl
}

// LoginURL returns the absolute login endpoint.
func (c *Client) LoginURL() string {
	return c.baseURL + c.loginPath
}

// Authenticate posts creds to the login endpoint and decodes the session.
func (c *Client) Authenticate(ctx context.Context, creds auth.Credentials) (auth.LoginResult, error) {
	body, err := json.Marshal(creds)
	if err != nil {
		return auth.LoginResult{}, fmt.Errorf("httpauth: encode credentials: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.LoginURL(), bytes.NewReader(body))
	if err != nil {
		return auth.LoginResult{}, fmt.Errorf("httpauth: build request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	c.propagator.Inject(ctx, propagation.HeaderCarrier(req.Header))

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return auth.LoginResult{}, fmt.Errorf("httpauth: login request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return auth.LoginResult{}, fmt.Errorf("httpauth: read response: %w", err)
	}

	c.logger.Debug("login response",
		"url", c.LoginURL(),
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start),
	)

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, RequestID: requestID}
		if decodeErr == nil {
			apiErr.Code = env.Code
			apiErr.Message = env.Message
		} else {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return auth.LoginResult{}, apiErr
	}

	if decodeErr != nil {
		return auth.LoginResult{}, fmt.Errorf("%w: %v", auth.ErrMalformedResponse, decodeErr)
	}
	if !successCode(env.Code) {
		return auth.LoginResult{}, &APIError{
			Status:    resp.StatusCode,
			Code:      env.Code,
			Message:   env.Message,
			RequestID: requestID,
		}
	}
	if env.Data == nil {
		return auth.LoginResult{}, fmt.Errorf("%w: missing data", auth.ErrMalformedResponse)
	}

	res := auth.LoginResult{
		AccessToken: env.Data.AccessToken,
		UserID:      string(env.Data.UserID),
		Username:    env.Data.Username,
		Role:        env.Data.Role,
	}
	if err := res.Validate(); err != nil {
		return auth.LoginResult{}, err
	}
	return res, nil
}

// successCode reports whether an envelope code marks success.
// The backend uses 0 or 200.
func successCode(code int) bool {
	return code == 0 || code == http.StatusOK
}

type envelope struct {
	Code    int        `json:"code"`
	Message string     `json:"message"`
	Data    *loginData `json:"data"`
}

type loginData struct {
	AccessToken string     `json:"accessToken"`
	UserID      flexString `json:"userId"`
	Username    string     `json:"username"`
	Role        string     `json:"role"`
}

// flexString accepts a JSON string or number. null decodes to "".
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return errors.New("userId must be a string or number")
	}
	*f = flexString(n.String())
	return nil
}
