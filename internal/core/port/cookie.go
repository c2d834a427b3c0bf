package port

import (
	"context"

	"github.com/arklim/subhub-console/internal/core/domain"
)

// CookieFilter narrows cookie and cookie-target listings. Zero values mean
// no filtering on that dimension.
type CookieFilter struct {
	SiteName string
	Target   string
	CookieID int64
}

// CookieAPI is the credential CRUD surface of the admin API.
type CookieAPI interface {
	Cookies(ctx context.Context, filter CookieFilter) ([]domain.Cookie, error)
	NewCookie(ctx context.Context, siteName, content string) error
	DeleteCookie(ctx context.Context, cookieID int64) error
	ValidateCookie(ctx context.Context, siteName, content string) (bool, error)
}

// CookieTargetAPI manages cookie to (platform, target) associations.
type CookieTargetAPI interface {
	CookieTargets(ctx context.Context, filter CookieFilter) ([]domain.CookieTarget, error)
	NewCookieTarget(ctx context.Context, platformName, target string, cookieID int64) error
	DeleteCookieTarget(ctx context.Context, platformName, target string, cookieID int64) error
}
