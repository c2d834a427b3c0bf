// Package session holds the process-wide authentication state and the
// transport guard that attaches it to outbound calls.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/arklim/subhub-console/internal/core/domain"
	"github.com/arklim/subhub-console/internal/core/port"
)

var (
	// ErrNotAuthenticated indicates a protected call was attempted with no
	// active session. The call is failed synchronously, never sent
	// anonymously.
	ErrNotAuthenticated = errors.New("session: not authenticated")
	// ErrUnauthorized indicates the server rejected the credential. The
	// session has already been cleared when this is returned.
	ErrUnauthorized = errors.New("session: credential rejected")
)

// Store is the process-wide session: absent until Activate, active until
// Clear. Observers registered with OnClear fire exactly once per
// active-to-cleared transition.
type Store struct {
	logger *zap.Logger
	now    func() time.Time

	mu        sync.Mutex
	current   domain.Session
	active    bool
	listeners []func(reason string)
}

// NewStore constructs an empty session store.
func NewStore(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the internal clock for deterministic tests.
func (s *Store) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// Activate installs the credential from a successful auth bootstrap. Role
// and expiry are decoded from the bearer token's claims; an undecodable
// token falls back to the grant's declared type with no expiry.
func (s *Store) Activate(grant port.AuthGrant) error {
	if grant.Token == "" {
		return errors.New("session: grant carries no token")
	}

	role, expiresAt := decodeClaims(grant.Token)
	if role == "" {
		role = grant.Type
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = domain.Session{
		Token:     grant.Token,
		Role:      domain.Role(role),
		UserID:    grant.ID,
		UserName:  grant.Name,
		ExpiresAt: expiresAt,
	}
	s.active = true

	s.logger.Info("session activated",
		zap.String("role", role),
		zap.Int64("user_id", grant.ID),
		zap.Time("expires_at", expiresAt))
	return nil
}

// Token returns the current bearer token when an unexpired session exists.
func (s *Store) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active || !s.current.Active(s.now()) {
		return "", false
	}
	return s.current.Token, true
}

// Current returns the session state when active.
func (s *Store) Current() (domain.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return domain.Session{}, false
	}
	return s.current, true
}

// Clear drops the session and notifies observers. Only the first Clear of
// an active session fires the observers; repeated calls are no-ops.
func (s *Store) Clear(reason string) {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	s.current = domain.Session{}
	listeners := make([]func(string), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	s.logger.Info("session cleared", zap.String("reason", reason))
	for _, fn := range listeners {
		fn(reason)
	}
}

// OnClear registers an observer for session teardown. Registration order is
// notification order.
func (s *Store) OnClear(fn func(reason string)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// decodeClaims reads role and expiry from the token without verifying the
// signature; verification is the server's job, the client only surfaces
// what it was handed.
func decodeClaims(token string) (string, time.Time) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", time.Time{}
	}

	role := ""
	if v, ok := claims["type"].(string); ok {
		role = v
	}

	var expiresAt time.Time
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		expiresAt = exp.Time.UTC()
	}
	return role, expiresAt
}
