package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fitpulse/fitpulse/internal/logging"
	"github.com/fitpulse/fitpulse/pkg/domain"
	"github.com/google/uuid"
)

const (
	DefaultLoginPath    = "/users/login"
	DefaultRegisterPath = "/users/register"
	DefaultTimeout      = 10 * time.Second

	// RequestIDHeader carries a fresh id on every request for backend log correlation.
	RequestIDHeader = "X-Request-ID"

	maxErrorBody = 4 << 10
	maxBody      = 1 << 20
)

// StatusError is returned when the backend answers with an unexpected status code.
// It matches domain.ErrAuthFailed under errors.Is.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Op, e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	return domain.ErrAuthFailed
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token  string `json:"token"`
	UserID int64  `json:"user_id"`
}

// Client talks to the authentication endpoints of the backend.
type Client struct {
	baseURL      *url.URL
	httpClient   *http.Client
	loginPath    string
	registerPath string
	logger       *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default client (which has a DefaultTimeout timeout).
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithLoginPath overrides DefaultLoginPath.
func WithLoginPath(p string) ClientOption {
	return func(cl *Client) {
		cl.loginPath = p
	}
}

// WithRegisterPath overrides DefaultRegisterPath.
func WithRegisterPath(p string) ClientOption {
	return func(cl *Client) {
		cl.registerPath = p
	}
}

// WithClientLogger configures a logger for the Client.
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(cl *Client) {
		cl.logger = logger
	}
}

// NewClient creates a Client for the backend at baseURL (e.g. "http://10.0.2.2:3000").
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: missing host", baseURL)
	}

	c := &Client{
		baseURL:      u,
		httpClient:   &http.Client{Timeout: DefaultTimeout},
		loginPath:    DefaultLoginPath,
		registerPath: DefaultRegisterPath,
		logger:       logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the backend address the client was built for.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// HTTPClient returns the underlying transport client.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

func (c *Client) endpoint(path string) string {
	return c.baseURL.JoinPath(path).String()
}

// Login exchanges credentials for a session. Only HTTP 200 is a success.
func (c *Client) Login(ctx context.Context, identifier, secret string) (*domain.User, error) {
	resp, err := c.postJSON(ctx, "login", c.loginPath, credentials{Email: identifier, Password: secret})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("login", resp)
	}

	var body loginResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&body); err != nil {
		return nil, fmt.Errorf("login: failed to decode response: %w", err)
	}
	if body.Token == "" {
		return nil, fmt.Errorf("login: %w: response has no token", domain.ErrAuthFailed)
	}

	return &domain.User{Token: body.Token, ID: body.UserID}, nil
}

// Register creates an account. Only HTTP 201 is a success.
func (c *Client) Register(ctx context.Context, email, password string) error {
	resp, err := c.postJSON(ctx, "register", c.registerPath, credentials{Email: email, Password: password})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return statusError("register", resp)
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
	return nil
}

func (c *Client) postJSON(ctx context.Context, op, path string, payload any) (*http.Response, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to marshal request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path), bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build request: %w", op, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "Auth request failed", "op", op, "request_id", requestID, "err", err)
		return nil, fmt.Errorf("%s: request failed: %w", op, err)
	}
	c.logger.DebugContext(ctx, "Auth request",
		"op", op,
		"request_id", requestID,
		"status", resp.StatusCode,
		"took", time.Since(start),
	)
	return resp, nil
}

func statusError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{
		Op:         op,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}
