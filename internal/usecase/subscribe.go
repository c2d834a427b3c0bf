package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/arklim/subhub-console/internal/core/domain"
	"github.com/arklim/subhub-console/internal/core/port"
	"github.com/arklim/subhub-console/internal/querycache"
	"github.com/arklim/subhub-console/internal/registry"
)

// ErrDuplicateSubscription indicates the (group, platform, target) key is
// already subscribed.
var ErrDuplicateSubscription = errors.New("subscription already exists")

const kindSubs = "subs"

// SubscribeService coordinates subscription reads and writes through the
// query cache: reads are tagged, writes invalidate the tag and replay the
// resident reads.
type SubscribeService struct {
	api      port.SubscribeAPI
	cache    *querycache.Store
	registry *registry.Registry
	resolver *TargetResolver
	logger   *zap.Logger
}

// NewSubscribeService constructs a SubscribeService.
func NewSubscribeService(api port.SubscribeAPI, cache *querycache.Store, reg *registry.Registry, resolver *TargetResolver, logger *zap.Logger) *SubscribeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubscribeService{api: api, cache: cache, registry: reg, resolver: resolver, logger: logger}
}

// Groups returns the mirrored group list with their subscriptions, cached
// under the subscribe tag.
func (s *SubscribeService) Groups(ctx context.Context) ([]domain.Group, error) {
	out, err := s.cache.Query(ctx, querycache.QuerySpec{
		Kind: kindSubs,
		Tags: []querycache.Tag{querycache.TagSubscribe},
		Fetch: func(ctx context.Context) (any, error) {
			return s.api.Subs(ctx)
		},
	})
	if err != nil {
		return nil, err
	}
	return out.([]domain.Group), nil
}

// Add validates the draft against the platform capabilities, resolves the
// target display name, and creates the subscription. The write invalidates
// every resident subscription query.
func (s *SubscribeService) Add(ctx context.Context, groupNumber string, draft SubscribeDraft) (domain.SubscribeConfig, error) {
	sub, err := s.prepare(ctx, draft)
	if err != nil {
		return domain.SubscribeConfig{}, err
	}

	if err := s.checkDuplicate(ctx, groupNumber, sub); err != nil {
		return domain.SubscribeConfig{}, err
	}

	_, err = s.cache.Mutate(ctx, querycache.MutationSpec{
		Name:        "newSubscribe",
		Invalidates: []querycache.Tag{querycache.TagSubscribe},
		Do: func(ctx context.Context) (any, error) {
			return nil, s.api.NewSub(ctx, groupNumber, sub)
		},
	})
	if err != nil {
		return domain.SubscribeConfig{}, err
	}

	s.logger.Info("subscription added",
		zap.String("group", groupNumber),
		zap.String("platform", sub.PlatformName),
		zap.String("target", sub.Target))
	return sub, nil
}

// Update replaces the categories, tags and target name of an existing
// subscription identified by its (group, platform, target) key.
func (s *SubscribeService) Update(ctx context.Context, groupNumber string, draft SubscribeDraft) (domain.SubscribeConfig, error) {
	sub, err := s.prepare(ctx, draft)
	if err != nil {
		return domain.SubscribeConfig{}, err
	}

	_, err = s.cache.Mutate(ctx, querycache.MutationSpec{
		Name:        "updateSubscribe",
		Invalidates: []querycache.Tag{querycache.TagSubscribe},
		Do: func(ctx context.Context) (any, error) {
			return nil, s.api.UpdateSub(ctx, groupNumber, sub)
		},
	})
	if err != nil {
		return domain.SubscribeConfig{}, err
	}
	return sub, nil
}

// Delete removes a subscription by key.
func (s *SubscribeService) Delete(ctx context.Context, groupNumber, platformName, target string) error {
	_, err := s.cache.Mutate(ctx, querycache.MutationSpec{
		Name:        "deleteSubscribe",
		Invalidates: []querycache.Tag{querycache.TagSubscribe},
		Do: func(ctx context.Context) (any, error) {
			return nil, s.api.DeleteSub(ctx, groupNumber, platformName, target)
		},
	})
	return err
}

// prepare runs the local validator and the round-trip target resolution.
// Submission is refused until resolution succeeds, so TargetName on the
// returned config is always server-derived.
func (s *SubscribeService) prepare(ctx context.Context, draft SubscribeDraft) (domain.SubscribeConfig, error) {
	platform, err := s.registry.Platform(draft.PlatformName)
	if err != nil {
		return domain.SubscribeConfig{}, err
	}

	sub, err := ValidateSubscribeDraft(draft, platform)
	if err != nil {
		return domain.SubscribeConfig{}, err
	}

	name, err := s.resolver.Resolve(ctx, sub.PlatformName, sub.Target)
	if err != nil {
		return domain.SubscribeConfig{}, err
	}
	sub.TargetName = name
	return sub, nil
}

func (s *SubscribeService) checkDuplicate(ctx context.Context, groupNumber string, sub domain.SubscribeConfig) error {
	groups, err := s.Groups(ctx)
	if err != nil {
		return fmt.Errorf("list subscriptions: %w", err)
	}
	key := sub.Key(groupNumber)
	for _, g := range groups {
		if g.GroupNumber != groupNumber {
			continue
		}
		for _, existing := range g.Subscribes {
			if existing.Key(groupNumber) == key {
				return fmt.Errorf("%w: %s/%s in group %s",
					ErrDuplicateSubscription, key.PlatformName, key.Target, groupNumber)
			}
		}
	}
	return nil
}
