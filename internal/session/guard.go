package session

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/subhub-console/internal/infra/logger"
)

// exemptPaths are the public bootstrap endpoints that go out anonymously.
var exemptPaths = []string{"/auth", "/global_conf"}

// Guard is an http.RoundTripper that attaches the session credential to
// every protected request and clears the session on the first 401 response.
// Protected requests with no active session fail synchronously with
// ErrNotAuthenticated instead of being sent anonymously.
type Guard struct {
	base     http.RoundTripper
	sessions *Store
	logger   *zap.Logger
}

// NewGuard wraps base with credential handling. A nil base uses
// http.DefaultTransport.
func NewGuard(base http.RoundTripper, sessions *Store, logger *zap.Logger) *Guard {
	if base == nil {
		base = http.DefaultTransport
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{base: base, sessions: sessions, logger: logger}
}

// RoundTrip implements http.RoundTripper.
func (g *Guard) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	out.Header.Set("X-Request-ID", requestID(req.Context()))

	if protected(req.URL.Path) {
		token, ok := g.sessions.Token()
		if !ok {
			return nil, ErrNotAuthenticated
		}
		out.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := g.base.RoundTrip(out)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && protected(req.URL.Path) {
		g.logger.Warn("credential rejected",
			zap.String("path", req.URL.Path),
			zap.String("request_id", out.Header.Get("X-Request-ID")))
		g.sessions.Clear("unauthorized response")
	}

	return resp, nil
}

// requestID reuses an identifier already put on the context by the caller,
// so one console operation correlates across the calls it fans out into.
func requestID(ctx context.Context) string {
	if id, ok := ctx.Value(logger.RequestIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}

func protected(path string) bool {
	for _, exempt := range exemptPaths {
		if strings.HasSuffix(path, exempt) {
			return false
		}
	}
	return true
}
