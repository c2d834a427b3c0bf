package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/arklim/subhub-console/internal/core/domain"
	"github.com/arklim/subhub-console/internal/core/port"
	"github.com/arklim/subhub-console/internal/querycache"
)

const kindWeights = "weights"

// WeightService coordinates scheduling weight reads and writes through the
// query cache.
type WeightService struct {
	api    port.WeightAPI
	cache  *querycache.Store
	logger *zap.Logger
}

// NewWeightService constructs a WeightService.
func NewWeightService(api port.WeightAPI, cache *querycache.Store, logger *zap.Logger) *WeightService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WeightService{api: api, cache: cache, logger: logger}
}

// Weights lists the current per-target schedules, cached under the weight
// tag.
func (s *WeightService) Weights(ctx context.Context) ([]domain.TargetWeight, error) {
	out, err := s.cache.Query(ctx, querycache.QuerySpec{
		Kind: kindWeights,
		Tags: []querycache.Tag{querycache.TagWeight},
		Fetch: func(ctx context.Context) (any, error) {
			return s.api.Weights(ctx)
		},
	})
	if err != nil {
		return nil, err
	}
	return out.([]domain.TargetWeight), nil
}

// Apply validates the draft schedule and replaces the weight config of one
// (platform, target) pair.
func (s *WeightService) Apply(ctx context.Context, platformName, target string, draft WeightDraft) (domain.WeightConfig, error) {
	weight, err := ValidateWeightDraft(draft)
	if err != nil {
		return domain.WeightConfig{}, err
	}

	_, err = s.cache.Mutate(ctx, querycache.MutationSpec{
		Name:        "putWeight",
		Invalidates: []querycache.Tag{querycache.TagWeight},
		Do: func(ctx context.Context) (any, error) {
			return nil, s.api.PutWeight(ctx, platformName, target, weight)
		},
	})
	if err != nil {
		return domain.WeightConfig{}, err
	}

	s.logger.Info("weight config applied",
		zap.String("platform", platformName),
		zap.String("target", target),
		zap.Int("default", weight.Default),
		zap.Int("windows", len(weight.TimeWindows)))
	return weight, nil
}
