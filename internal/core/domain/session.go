package domain

import "time"

// Role is the access level the auth bootstrap granted this session.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Session is the process-wide authentication state: absent until the auth
// bootstrap succeeds, then active until explicit logout or the first 401.
type Session struct {
	Token     string
	Role      Role
	UserID    int64
	UserName  string
	ExpiresAt time.Time
}

// Active reports whether the session holds a usable credential at the
// supplied moment.
func (s Session) Active(at time.Time) bool {
	if s.Token == "" {
		return false
	}
	if s.ExpiresAt.IsZero() {
		return true
	}
	return s.ExpiresAt.After(at)
}

// IsAdmin reports whether the session may touch superuser surfaces
// (cookies, cookie targets, weights).
func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}
