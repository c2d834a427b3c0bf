package usecase

import (
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/arklim/subhub-console/internal/core/domain"
)

// SubscribeDraft is an operator-edited subscription before normalization.
type SubscribeDraft struct {
	PlatformName string
	Target       string
	Categories   []int
	Tags         []string
}

// ValidateSubscribeDraft checks a draft against the platform's declared
// capabilities and returns the normalized config:
//
//   - platforms without a target concept get the sentinel target, whatever
//     the draft said;
//   - platforms with a target concept require a non-empty target;
//   - categories must be a subset of the platform's category choices;
//   - tags are stripped when the platform does not allow them.
//
// TargetName is always empty on the result; only a successful target-name
// resolution may populate it.
func ValidateSubscribeDraft(draft SubscribeDraft, platform domain.Platform) (domain.SubscribeConfig, error) {
	var ferrs FieldErrors

	target := strings.TrimSpace(draft.Target)
	if platform.RequiresTargetInput() {
		if target == "" {
			ferrs.add("target", FieldRequired, "platform requires a target")
		}
	} else {
		target = domain.DefaultTarget
	}

	categories := mapset.NewThreadUnsafeSet[int](draft.Categories...)
	if !categories.IsSubset(platform.CategoryChoices()) {
		ferrs.add("categories", FieldInvalid, "category not offered by platform")
	}

	tags := mapset.NewThreadUnsafeSet[string]()
	if platform.TagsAllowed() {
		for _, t := range draft.Tags {
			if tt := strings.TrimSpace(t); tt != "" {
				tags.Add(tt)
			}
		}
	}

	if err := ferrs.orNil(); err != nil {
		return domain.SubscribeConfig{}, err
	}

	return domain.SubscribeConfig{
		PlatformName: platform.PlatformName,
		Target:       target,
		Categories:   categories,
		Tags:         tags,
	}, nil
}

// ValidateCookieTargetAssociation enforces that a cookie may only be bound
// to targets on platforms of the cookie's own site.
func ValidateCookieTargetAssociation(cookie domain.Cookie, platform domain.Platform) error {
	if cookie.SiteName != platform.SiteName {
		return ErrIncompatibleSite
	}
	return nil
}
