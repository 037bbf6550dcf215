package particle

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// DefaultBaseURL is the public Particle cloud.
const DefaultBaseURL = "https://api.particle.io"

// OAuth client registered by Particle for first-party tools.
const (
	oauthClientID     = "particle"
	oauthClientSecret = "particle"
)

// Config configures the HTTP client.
type Config struct {
	// BaseURL defaults to DefaultBaseURL.
	BaseURL string
	// Timeout bounds every request; zero means 10 seconds.
	Timeout time.Duration
	// TokenTTL is requested as expires_in on login; zero lets the cloud decide.
	TokenTTL time.Duration
	// Client replaces the default *http.Client when set.
	Client *http.Client
}

// HTTP implements API over the Particle REST endpoints.
// The access token obtained by Login is held in memory only.
type HTTP struct {
	// baseURL is the base URL for all HTTP requests (e.g., "https://api.particle.io")
	baseURL  string
	tokenTTL time.Duration
	// client is the underlying HTTP client with configured timeout
	client *http.Client

	mu    sync.RWMutex
	token string
}

// New creates an HTTP client from cfg.
func New(cfg Config) *HTTP {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &HTTP{
		baseURL:  strings.TrimRight(base, "/"),
		tokenTTL: cfg.TokenTTL,
		client:   client,
	}
}

func (h *HTTP) accessToken() (string, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.token == "" {
		return "", ErrNotLoggedIn
	}
	return h.token, nil
}

func (h *HTTP) setToken(token string) {
	h.mu.Lock()
	h.token = token
	h.mu.Unlock()
}

// setStandardHeaders sets headers common to every request.
func (h *HTTP) setStandardHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "garagedoor-cli/1.0")
}

// cloudError is the error envelope used across the Particle API.
type cloudError struct {
	OK          *bool  `json:"ok"`
	Error       string `json:"error"`
	Description string `json:"error_description"`
	Info        string `json:"info"`
}

// decodeError turns a non-2xx response into an error carrying the cloud's own message.
func decodeError(op string, resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var ce cloudError
	if err := json.Unmarshal(b, &ce); err == nil {
		switch {
		case ce.Description != "":
			return &StatusError{Op: op, Code: resp.StatusCode, Message: ce.Description}
		case ce.Error != "":
			return &StatusError{Op: op, Code: resp.StatusCode, Message: ce.Error}
		case ce.Info != "":
			return &StatusError{Op: op, Code: resp.StatusCode, Message: ce.Info}
		}
	}
	msg := strings.TrimSpace(string(b))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &StatusError{Op: op, Code: resp.StatusCode, Message: msg}
}

// StatusError is returned when the cloud answers with a non-success status.
// Its message is the cloud's own text so it can be shown to users as is.
type StatusError struct {
	Op      string
	Code    int
	Message string
}

func (e *StatusError) Error() string { return e.Message }

// Detail includes the operation and status code, for logs.
func (e *StatusError) Detail() string {
	return fmt.Sprintf("%s failed: %d %s", e.Op, e.Code, e.Message)
}
