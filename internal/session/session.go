// Package session owns the current-user state: login, logout and the
// restore-on-startup flow. It is created once at the application root and
// handed to every view; there is no ambient singleton.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/lonhq/lonboard/internal/api"
	"github.com/lonhq/lonboard/internal/logbook"
	"github.com/lonhq/lonboard/internal/tokenstore"
)

// Session tracks who is logged in. It composes the token store and the API
// client: the client handles the wire, the session decides when credentials
// are persisted or discarded.
type Session struct {
	client *api.Client
	tokens *tokenstore.Store
	log    *logbook.Logbook

	mu      sync.Mutex
	user    *api.User
	loading bool
	onEnded func()
}

// New wires a session to the client and store. The client's session-ended
// signal (refresh exhausted) feeds back into the session so any view can be
// forced to the login screen.
func New(client *api.Client, tokens *tokenstore.Store, log *logbook.Logbook) *Session {
	s := &Session{client: client, tokens: tokens, log: log}
	client.OnSessionEnded(s.handleEnded)
	return s
}

// OnEnded registers a callback fired whenever the session terminates outside
// an explicit Logout call.
func (s *Session) OnEnded(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onEnded = fn
}

// Client exposes the underlying API client for callers that need endpoints
// outside the auth flow, such as the health probe.
func (s *Session) Client() *api.Client {
	return s.client
}

// User returns the current session user, if authenticated.
func (s *Session) User() (api.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return api.User{}, false
	}
	return *s.user, true
}

// Authenticated reports whether a user is logged in.
func (s *Session) Authenticated() bool {
	_, ok := s.User()
	return ok
}

// Loading reports whether the restore-on-startup validation is in flight.
// Routing defers protected views while this is true.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Login exchanges credentials for a token pair and resolves the account
// behind them. Either both the credential pair and the user are applied, or
// neither: a failed user fetch rolls the stored pair back.
func (s *Session) Login(ctx context.Context, username, password string) error {
	pair, err := s.client.Auth().ObtainToken(ctx, username, password)
	if err != nil {
		return err
	}
	if err := s.tokens.Save(pair); err != nil {
		return err
	}
	user, err := s.client.Auth().CurrentUser(ctx)
	if err != nil {
		// Roll back so login is all-or-nothing.
		_ = s.tokens.Clear()
		return err
	}
	if err := s.tokens.SaveUser(snapshotOf(user)); err != nil {
		s.log.Warn("persist user snapshot: %v", err)
	}
	s.setUser(&user)
	s.log.Info("logged in as %s", user.Username)
	return nil
}

// Logout notifies the backend best-effort, then unconditionally clears the
// stored credentials and the session user.
func (s *Session) Logout(ctx context.Context) {
	if err := s.client.Auth().Logout(ctx); err != nil {
		s.log.Warn("backend logout failed: %v", err)
	}
	if err := s.tokens.Clear(); err != nil {
		s.log.Error("clear token store: %v", err)
	}
	s.setUser(nil)
	s.log.Info("logged out")
}

// Restore rebuilds the session from the persisted snapshot on startup: the
// user is applied optimistically, then validated against the backend. A 401
// (after the client's silent refresh) tears the session down; a transport
// failure keeps the optimistic user so the dashboard still opens offline.
func (s *Session) Restore(ctx context.Context) {
	snapshot, hasSnapshot := s.tokens.LoadUser()
	pair := s.tokens.Load()
	if !hasSnapshot && pair.Empty() {
		return
	}

	s.mu.Lock()
	s.loading = true
	if hasSnapshot {
		user := userOf(snapshot)
		s.user = &user
	}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	user, err := s.client.Auth().CurrentUser(ctx)
	switch {
	case err == nil:
		if err := s.tokens.SaveUser(snapshotOf(user)); err != nil {
			s.log.Warn("persist user snapshot: %v", err)
		}
		s.setUser(&user)
		s.log.Info("session restored for %s", user.Username)
	case api.IsAuth(err):
		// The client already cleared the store; drop the optimistic user.
		s.setUser(nil)
		s.log.Info("stored session rejected, login required")
	default:
		s.log.Warn("session validation deferred: %v", err)
	}
}

// ExpiresAt returns the access token expiry instant, if one is stored.
func (s *Session) ExpiresAt() (time.Time, bool) {
	pair := s.tokens.Load()
	if pair.Access == "" {
		return time.Time{}, false
	}
	claims, err := api.DecodeAccessToken(pair.Access)
	if err != nil || claims.ExpiresAt.IsZero() {
		return time.Time{}, false
	}
	return claims.ExpiresAt, true
}

// ExpiresWithin reports whether the access token runs out inside d. The TUI
// shows the renewal warning bar off this.
func (s *Session) ExpiresWithin(d time.Duration) bool {
	expiry, ok := s.ExpiresAt()
	if !ok {
		return false
	}
	return time.Until(expiry) <= d
}

// Renew forces an immediate token refresh from the expiry warning's renew
// action.
func (s *Session) Renew(ctx context.Context) error {
	return s.client.Auth().RefreshNow(ctx)
}

func (s *Session) setUser(user *api.User) {
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
}

// handleEnded runs when the client exhausts the refresh path mid-request.
func (s *Session) handleEnded() {
	s.mu.Lock()
	wasAuthenticated := s.user != nil
	s.user = nil
	fn := s.onEnded
	s.mu.Unlock()
	if wasAuthenticated {
		s.log.Warn("session ended: credentials rejected")
	}
	if fn != nil {
		fn()
	}
}

func snapshotOf(user api.User) tokenstore.UserSnapshot {
	return tokenstore.UserSnapshot{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}
}

func userOf(snapshot tokenstore.UserSnapshot) api.User {
	return api.User{
		ID:        snapshot.ID,
		Username:  snapshot.Username,
		Email:     snapshot.Email,
		FirstName: snapshot.FirstName,
		LastName:  snapshot.LastName,
	}
}
