package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/arklim/subhub-console/internal/core/domain"
	"github.com/arklim/subhub-console/internal/core/port"
	"github.com/arklim/subhub-console/internal/infra/logger"
	"github.com/arklim/subhub-console/internal/querycache"
	"github.com/arklim/subhub-console/internal/registry"
)

var (
	// ErrCookieNotSupported indicates the site declares no credential
	// storage.
	ErrCookieNotSupported = errors.New("site does not support cookies")
	// ErrCookieUnknown indicates the referenced cookie does not exist.
	ErrCookieUnknown = errors.New("no such cookie")
)

const (
	kindCookies       = "cookies"
	kindCookieTargets = "cookie_targets"
)

// CookieService coordinates credential and association management through
// the query cache.
type CookieService struct {
	cookies  port.CookieAPI
	targets  port.CookieTargetAPI
	cache    *querycache.Store
	registry *registry.Registry
	logger   *zap.Logger
}

// NewCookieService constructs a CookieService.
func NewCookieService(cookies port.CookieAPI, targets port.CookieTargetAPI, cache *querycache.Store, reg *registry.Registry, logger *zap.Logger) *CookieService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CookieService{cookies: cookies, targets: targets, cache: cache, registry: reg, logger: logger}
}

// Cookies lists stored credentials, cached under the cookie tag.
func (s *CookieService) Cookies(ctx context.Context, filter port.CookieFilter) ([]domain.Cookie, error) {
	out, err := s.cache.Query(ctx, querycache.QuerySpec{
		Kind:   kindCookies,
		Params: cookieParams(filter),
		Tags:   []querycache.Tag{querycache.TagCookie},
		Fetch: func(ctx context.Context) (any, error) {
			return s.cookies.Cookies(ctx, filter)
		},
	})
	if err != nil {
		return nil, err
	}
	return out.([]domain.Cookie), nil
}

// Add stores a new credential for a site. Refused locally when the site
// declares no cookie support. Invalidates cookie queries and, since the
// server may auto-bind universal cookies, association queries too.
func (s *CookieService) Add(ctx context.Context, siteName, content string) error {
	site, err := s.registry.Site(siteName)
	if err != nil {
		return err
	}
	if !site.CookieEnabled {
		return fmt.Errorf("%w: %s", ErrCookieNotSupported, siteName)
	}

	_, err = s.cache.Mutate(ctx, querycache.MutationSpec{
		Name:        "newCookie",
		Invalidates: []querycache.Tag{querycache.TagCookie, querycache.TagCookieTarget},
		Do: func(ctx context.Context) (any, error) {
			return nil, s.cookies.NewCookie(ctx, siteName, content)
		},
	})
	if err != nil {
		return err
	}

	s.logger.Info("cookie added",
		zap.String("site", siteName),
		zap.String("content", logger.MaskSecret(content)))
	return nil
}

// Delete removes a credential. Any resident association query referencing
// it is invalidated transitively.
func (s *CookieService) Delete(ctx context.Context, cookieID int64) error {
	_, err := s.cache.Mutate(ctx, querycache.MutationSpec{
		Name:        "deleteCookie",
		Invalidates: []querycache.Tag{querycache.TagCookie, querycache.TagCookieTarget},
		Do: func(ctx context.Context) (any, error) {
			return nil, s.cookies.DeleteCookie(ctx, cookieID)
		},
	})
	return err
}

// Validate probes whether the credential content works for the site. A
// false result is a domain answer, not a failure.
func (s *CookieService) Validate(ctx context.Context, siteName, content string) (bool, error) {
	return s.cookies.ValidateCookie(ctx, siteName, content)
}

// CookieTargets lists cookie associations, cached under the cookie-target
// tag.
func (s *CookieService) CookieTargets(ctx context.Context, filter port.CookieFilter) ([]domain.CookieTarget, error) {
	out, err := s.cache.Query(ctx, querycache.QuerySpec{
		Kind:   kindCookieTargets,
		Params: cookieTargetParams(filter),
		Tags:   []querycache.Tag{querycache.TagCookieTarget},
		Fetch: func(ctx context.Context) (any, error) {
			return s.targets.CookieTargets(ctx, filter)
		},
	})
	if err != nil {
		return nil, err
	}
	return out.([]domain.CookieTarget), nil
}

// Associate binds a cookie to a (platform, target) pair after checking the
// site-match rule.
func (s *CookieService) Associate(ctx context.Context, cookieID int64, platformName, target string) error {
	cookie, err := s.findCookie(ctx, cookieID)
	if err != nil {
		return err
	}
	platform, err := s.registry.Platform(platformName)
	if err != nil {
		return err
	}
	if err := ValidateCookieTargetAssociation(cookie, platform); err != nil {
		return fmt.Errorf("%w: cookie site %s, platform site %s",
			err, cookie.SiteName, platform.SiteName)
	}

	_, err = s.cache.Mutate(ctx, querycache.MutationSpec{
		Name:        "newCookieTarget",
		Invalidates: []querycache.Tag{querycache.TagCookieTarget},
		Do: func(ctx context.Context) (any, error) {
			return nil, s.targets.NewCookieTarget(ctx, platformName, target, cookieID)
		},
	})
	return err
}

// Dissociate removes a cookie binding.
func (s *CookieService) Dissociate(ctx context.Context, cookieID int64, platformName, target string) error {
	_, err := s.cache.Mutate(ctx, querycache.MutationSpec{
		Name:        "deleteCookieTarget",
		Invalidates: []querycache.Tag{querycache.TagCookieTarget},
		Do: func(ctx context.Context) (any, error) {
			return nil, s.targets.DeleteCookieTarget(ctx, platformName, target, cookieID)
		},
	})
	return err
}

func (s *CookieService) findCookie(ctx context.Context, cookieID int64) (domain.Cookie, error) {
	cookies, err := s.Cookies(ctx, port.CookieFilter{})
	if err != nil {
		return domain.Cookie{}, fmt.Errorf("list cookies: %w", err)
	}
	for _, c := range cookies {
		if c.ID == cookieID {
			return c, nil
		}
	}
	return domain.Cookie{}, fmt.Errorf("%w: id %d", ErrCookieUnknown, cookieID)
}

// cookieParams canonicalizes the filter dimensions the cookie listing
// understands. Cookie id is not one of them, so filters differing only in
// it share a cache entry.
func cookieParams(filter port.CookieFilter) string {
	q := url.Values{}
	if filter.SiteName != "" {
		q.Set("site_name", filter.SiteName)
	}
	if filter.Target != "" {
		q.Set("target", filter.Target)
	}
	return q.Encode()
}

func cookieTargetParams(filter port.CookieFilter) string {
	q := url.Values{}
	if filter.SiteName != "" {
		q.Set("site_name", filter.SiteName)
	}
	if filter.Target != "" {
		q.Set("target", filter.Target)
	}
	if filter.CookieID != 0 {
		q.Set("cookie_id", strconv.FormatInt(filter.CookieID, 10))
	}
	return q.Encode()
}
