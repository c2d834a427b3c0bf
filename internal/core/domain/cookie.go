package domain

import "time"

// CookieStatus is the server-owned lifecycle state of a stored credential.
type CookieStatus string

const (
	CookieStatusOK      CookieStatus = "ok"
	CookieStatusCooling CookieStatus = "cooling"
	CookieStatusInvalid CookieStatus = "invalid"
)

// Cookie is a stored credential some platforms need to fetch content.
// Status, LastUsage and CooldownMs evolve server-side only; the client
// creates and deletes cookies but never edits these fields.
type Cookie struct {
	ID           int64
	SiteName     string
	Content      string
	FriendlyName string
	LastUsage    time.Time
	Status       CookieStatus
	CooldownMs   int64
	IsUniversal  bool
	IsAnonymous  bool
	Tags         map[string]string
}

// CookieTarget associates a cookie with one (platform, target) pair. Valid
// only when the platform's site matches the cookie's site.
type CookieTarget struct {
	CookieID     int64
	PlatformName string
	Target       string
	TargetName   string
}
