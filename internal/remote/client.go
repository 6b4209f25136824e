// Package remote is the best-effort bridge to the hydration backend. Local
// state is authoritative for the session; everything here merely mirrors it
// outward and pulls remote aggregates back in.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dripline/dripline/internal/store"
)

// HTTP client tuning for backend calls.
const (
	ClientTimeout         = 30 * time.Second
	DialTimeout           = 10 * time.Second
	TLSHandshakeTimeout   = 10 * time.Second
	ResponseHeaderTimeout = 15 * time.Second
)

var (
	// ErrNotConfigured means no backend base URL is set; the app stays
	// usable in local-only mode.
	ErrNotConfigured = errors.New("remote backend not configured")

	// ErrUnavailable wraps network and server failures on best-effort calls.
	ErrUnavailable = errors.New("remote backend unavailable")

	// ErrAuthInvalid means the backend rejected our token; the local session
	// has been cleared.
	ErrAuthInvalid = errors.New("remote session invalid")
)

// apiError carries the backend's error payload for non-2xx responses.
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend error %d: %s", e.Status, http.StatusText(e.Status))
}

func (e *apiError) Is(target error) bool {
	switch target {
	case ErrAuthInvalid:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	case ErrUnavailable:
		return e.Status >= http.StatusInternalServerError
	}
	return false
}

// Client talks to the hydration backend API with bearer-token auth.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      *store.Store
	logger     *slog.Logger
}

// NewClient creates a backend API client. An empty baseURL produces a client
// whose every call fails with ErrNotConfigured.
func NewClient(baseURL string, st *store.Store, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: ClientTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   DialTimeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   TLSHandshakeTimeout,
				ResponseHeaderTimeout: ResponseHeaderTimeout,
				MaxIdleConns:          100,
				MaxIdleConnsPerHost:   10,
				IdleConnTimeout:       90 * time.Second,
			},
		},
		store:  st,
		logger: logger,
	}
}

// Configured reports whether a backend base URL is set.
func (c *Client) Configured() bool { return c.baseURL != "" }

// do performs one authenticated JSON round trip. 401/403 clears the local
// session (token and backend user id) but never local hydration history.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token, err := c.store.AuthToken(); err == nil && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		c.invalidateSession()
		return &apiError{Status: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &apiError{Status: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// invalidateSession drops the cached token and backend user id. Hydration
// history stays.
func (c *Client) invalidateSession() {
	if err := c.store.ClearAuthToken(); err != nil {
		c.logger.Warn("clear invalid session", "error", err)
		return
	}
	c.logger.Info("backend session invalidated, re-authentication required")
}

func readErrorMessage(body io.Reader) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(body, 4096)).Decode(&payload); err != nil {
		return ""
	}
	if payload.Error != "" {
		return payload.Error
	}
	return payload.Message
}
