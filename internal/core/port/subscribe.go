package port

import (
	"context"

	"github.com/arklim/subhub-console/internal/core/domain"
)

// SubscribeAPI is the subscription CRUD surface of the admin API.
type SubscribeAPI interface {
	Subs(ctx context.Context) ([]domain.Group, error)
	NewSub(ctx context.Context, groupNumber string, sub domain.SubscribeConfig) error
	UpdateSub(ctx context.Context, groupNumber string, sub domain.SubscribeConfig) error
	DeleteSub(ctx context.Context, groupNumber, platformName, target string) error
}

// TargetNameAPI resolves a platform target identifier to its display name.
// An empty name with a nil error means the target does not exist on that
// platform; transport failures are returned as errors.
type TargetNameAPI interface {
	TargetName(ctx context.Context, platformName, target string) (string, error)
}
