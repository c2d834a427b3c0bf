package domain

import mapset "github.com/deckarep/golang-set/v2"

// Platform describes the server-declared capabilities of one content source
// type. Instances are immutable once the capability registry has loaded them.
type Platform struct {
	PlatformName string
	DisplayName  string
	SiteName     string
	HasTarget    bool
	TagsEnabled  bool
	Categories   map[int]string
}

// RequiresTargetInput reports whether subscriptions on this platform carry an
// operator-supplied target identifier. When false the sentinel DefaultTarget
// is used instead.
func (p Platform) RequiresTargetInput() bool {
	return p.HasTarget
}

// CategoryChoices returns the set of category ids subscriptions on this
// platform may select from.
func (p Platform) CategoryChoices() mapset.Set[int] {
	choices := mapset.NewThreadUnsafeSet[int]()
	for id := range p.Categories {
		choices.Add(id)
	}
	return choices
}

// TagsAllowed reports whether free-form tag filters may be attached to
// subscriptions on this platform.
func (p Platform) TagsAllowed() bool {
	return p.TagsEnabled
}

// Site describes credential storage support for one upstream site.
type Site struct {
	Name          string
	CookieEnabled bool
}
