package querycache

// Tag marks the entity kind a query result depends on. Mutations declare
// the tags they invalidate; every resident query sharing one of those tags
// is marked stale and refetched.
type Tag string

const (
	TagSubscribe    Tag = "subscribe"
	TagCookie       Tag = "cookie"
	TagCookieTarget Tag = "cookie_target"
	TagWeight       Tag = "weight"
)
