package port

import (
	"context"

	"github.com/arklim/subhub-console/internal/core/domain"
)

// WeightAPI reads and replaces per-target scheduling weights.
type WeightAPI interface {
	Weights(ctx context.Context) ([]domain.TargetWeight, error)
	PutWeight(ctx context.Context, platformName, target string, weight domain.WeightConfig) error
}
