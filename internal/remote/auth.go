package remote

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dripline/dripline/internal/store"
)

// backendUser is the user resource shape in auth responses.
type backendUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type authResponse struct {
	Token      string      `json:"token"`
	User       backendUser `json:"user"`
	HasProfile bool        `json:"hasProfile"`
}

// Session is the outcome of a successful register or login.
type Session struct {
	UserID     string
	Name       string
	Email      string
	HasProfile bool
}

// Register creates a backend account and caches the session locally.
func (c *Client) Register(ctx context.Context, name, email, password string) (*Session, error) {
	payload := map[string]string{"name": name, "email": email, "password": password}
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", payload, &resp); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return c.cacheSession(resp)
}

// Login authenticates against the backend and caches the session locally.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	payload := map[string]string{"email": email, "password": password}
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", payload, &resp); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return c.cacheSession(resp)
}

func (c *Client) cacheSession(resp authResponse) (*Session, error) {
	if resp.Token != "" {
		if err := c.store.SaveAuthToken(resp.Token); err != nil {
			return nil, fmt.Errorf("cache auth token: %w", err)
		}
	}
	if err := c.store.SaveAuthUserInfo(&store.AuthUser{Name: resp.User.Name, Email: resp.User.Email}); err != nil {
		return nil, fmt.Errorf("cache auth user: %w", err)
	}
	if resp.User.ID != "" {
		if err := c.store.SaveBackendUserID(resp.User.ID); err != nil {
			return nil, fmt.Errorf("cache backend user id: %w", err)
		}
	}
	return &Session{
		UserID:     resp.User.ID,
		Name:       resp.User.Name,
		Email:      resp.User.Email,
		HasProfile: resp.HasProfile,
	}, nil
}

// EnsureBackendUser returns the remote user id, querying the auth-state
// endpoint at most once per session: after the first successful lookup the
// id is cached locally until logout or session invalidation.
func (c *Client) EnsureBackendUser(ctx context.Context) (string, error) {
	cached, err := c.store.BackendUserID()
	if err != nil {
		return "", fmt.Errorf("load cached backend user: %w", err)
	}
	if cached != "" {
		return cached, nil
	}

	var resp authResponse
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &resp); err != nil {
		return "", fmt.Errorf("query auth state: %w", err)
	}
	if resp.User.ID == "" {
		return "", fmt.Errorf("auth state response carries no user id")
	}
	if err := c.store.SaveBackendUserID(resp.User.ID); err != nil {
		return "", fmt.Errorf("cache backend user id: %w", err)
	}
	return resp.User.ID, nil
}
