package port

import "context"

// AuthGrant is the result of a successful auth bootstrap.
type AuthGrant struct {
	Token string
	Type  string
	ID    int64
	Name  string
}

// AuthAPI exchanges a one-time login code for a bearer token. The endpoint
// is public (no credential attached).
type AuthAPI interface {
	Auth(ctx context.Context, code string) (AuthGrant, error)
}
