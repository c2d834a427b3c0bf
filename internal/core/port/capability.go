package port

import (
	"context"

	"github.com/arklim/subhub-console/internal/core/domain"
)

// Capabilities is the server-declared platform and site description fetched
// by the capability bootstrap.
type Capabilities struct {
	Platforms map[string]domain.Platform
	Sites     map[string]domain.Site
}

// CapabilityAPI fetches the capability bootstrap. The endpoint is public
// (no credential attached).
type CapabilityAPI interface {
	GlobalConf(ctx context.Context) (Capabilities, error)
}
