// Package session holds the process-wide auth state of the client: the
// current bearer token, the resolved user profile, and the state machine
// every route guard consults.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"hamkharj/internal/api"
)

// AuthAPI is the slice of the API client the session needs.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (*api.Token, error)
	Me(ctx context.Context) (*api.User, error)
}

// Session is the single mutable auth state of the process. Reads are
// concurrent; writes happen only on resolve, login and logout. The lock is
// never held across a network call.
type Session struct {
	mu     sync.RWMutex
	state  State
	token  string
	user   *api.User
	store  *Store
	client AuthAPI
	logger *zap.Logger
}

// New creates an unresolved session reading and writing tokens through store.
// Bind must be called with the API client before Resolve or Login.
func New(store *Store, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		state:  StateUninitialized,
		store:  store,
		logger: logger,
	}
}

// Bind attaches the API client. Separate from New because the client itself
// needs the session's token source and teardown hook.
func (s *Session) Bind(client AuthAPI) {
	s.client = client
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Token returns the current bearer token, "" when the session has none. This
// is the API client's token source.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the resolved profile, nil unless the state is Unapproved or
// Approved.
func (s *Session) User() *api.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Resolve determines the auth state: no token means Anonymous; otherwise the
// profile is fetched and is_approved decides between Unapproved and Approved.
// A rejected token resolves to Anonymous (the 401 path has already cleared
// the stored copy by then).
func (s *Session) Resolve(ctx context.Context) State {
	s.mu.Lock()

	if s.state == StateUninitialized {
		token, err := s.store.Load()
		if err != nil {
			s.logger.Warn("Failed to read persisted token", zap.Error(err))
		}
		s.token = token
	}

	if s.token == "" {
		s.setStateLocked(StateAnonymous)
		s.user = nil
		s.mu.Unlock()
		return StateAnonymous
	}

	if exp, expired := tokenExpired(s.token); expired {
		s.logger.Info("Persisted token already expired, skipping profile fetch",
			zap.Time("expired_at", exp))
		s.token = ""
		s.user = nil
		s.setStateLocked(StateAnonymous)
		s.mu.Unlock()
		_ = s.store.Clear()
		return StateAnonymous
	}

	s.setStateLocked(StateLoading)
	s.mu.Unlock()

	user, err := s.client.Me(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.logger.Warn("Profile fetch failed", zap.Error(err))
		s.user = nil
		s.setStateLocked(StateAnonymous)
		return StateAnonymous
	}
	s.user = user
	if user.IsApproved {
		s.setStateLocked(StateApproved)
	} else {
		s.setStateLocked(StateUnapproved)
	}
	return s.state
}

// Login exchanges credentials for a token, persists it and re-resolves the
// state. On failure the session is unchanged.
func (s *Session) Login(ctx context.Context, username, password string) (State, error) {
	token, err := s.client.Login(ctx, username, password)
	if err != nil {
		return s.State(), err
	}

	s.mu.Lock()
	s.token = token.AccessToken
	s.setStateLocked(StateLoading)
	s.mu.Unlock()

	if err := s.store.Save(token.AccessToken); err != nil {
		s.logger.Warn("Failed to persist token", zap.Error(err))
	}

	user, err := s.client.Me(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.user = nil
		s.setStateLocked(StateAnonymous)
		return StateAnonymous, err
	}
	s.user = user
	if user.IsApproved {
		s.setStateLocked(StateApproved)
	} else {
		s.setStateLocked(StateUnapproved)
	}
	s.logger.Info("Logged in",
		zap.String("username", user.Username),
		zap.Bool("is_approved", user.IsApproved))
	return s.state, nil
}

// Logout clears the token and forces Anonymous. The caller performs the
// navigation reset.
func (s *Session) Logout() {
	s.Teardown()
	s.logger.Info("Logged out")
}

// Teardown is the unconditional session reset invoked by the API client on
// any 401: clear the stored token, drop the profile, force Anonymous.
func (s *Session) Teardown() {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.setStateLocked(StateAnonymous)
	s.mu.Unlock()

	if err := s.store.Clear(); err != nil {
		s.logger.Warn("Failed to clear persisted token", zap.Error(err))
	}
}

func (s *Session) setStateLocked(target State) {
	if s.state == target {
		return
	}
	if !s.state.CanTransitionTo(target) {
		s.logger.Warn("Unexpected session state transition",
			zap.String("from", s.state.String()),
			zap.String("to", target.String()))
	}
	s.state = target
}

// tokenExpired peeks at the token's exp claim without verifying the
// signature (verification is the server's job). Tokens that do not parse as
// JWTs or carry no exp are treated as live and left for the server to judge.
func tokenExpired(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, exp.Time.Before(time.Now())
}
