package api

import (
	"context"
	"fmt"

	"github.com/lonhq/lonboard/internal/tokenstore"
)

// AuthService wraps the authentication endpoints.
type AuthService struct {
	client *Client
}

// ObtainToken exchanges credentials for an access/refresh pair. The pair is
// returned, not stored; the auth session decides when to persist it.
func (s *AuthService) ObtainToken(ctx context.Context, username, password string) (tokenstore.Pair, error) {
	body := map[string]string{"username": username, "password": password}
	var pair tokenstore.Pair
	if err := s.client.Post(ctx, tokenPath, body, &pair); err != nil {
		return tokenstore.Pair{}, err
	}
	if pair.Access == "" || pair.Refresh == "" {
		return tokenstore.Pair{}, fmt.Errorf("api: token endpoint returned an incomplete pair")
	}
	return pair, nil
}

// CurrentUser validates the stored access token and returns the account it
// belongs to. A 401 here means the session is gone.
func (s *AuthService) CurrentUser(ctx context.Context) (User, error) {
	var user User
	if err := s.client.Get(ctx, "/api/auth/user/", nil, &user); err != nil {
		return User{}, err
	}
	return user, nil
}

// Logout notifies the backend that the session is over. Callers treat
// failures as best-effort; local state is cleared regardless.
func (s *AuthService) Logout(ctx context.Context) error {
	return s.client.Post(ctx, "/api/auth/logout/", nil, nil)
}

// RefreshNow forces an immediate token refresh, used by the session expiry
// warning's renew action.
func (s *AuthService) RefreshNow(ctx context.Context) error {
	stale := s.client.tokens.Load().Access
	_, err := s.client.refreshAccess(ctx, stale)
	return err
}

// Health probes the backend liveness endpoint.
func (s *AuthService) Health(ctx context.Context) (Health, error) {
	var health Health
	if err := s.client.Get(ctx, "/api/health/", nil, &health); err != nil {
		return Health{}, err
	}
	return health, nil
}
