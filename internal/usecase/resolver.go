package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"go.uber.org/zap"

	"github.com/arklim/subhub-console/internal/core/port"
)

const defaultMemoTTL = 15 * time.Minute

type resolveKey struct {
	platformName string
	target       string
}

// TargetResolver resolves a (platform, target) pair to the target's display
// name via the admin API. Results, including not-found, are memoized per
// pair so re-rendering a form does not repeat the round-trip; transport
// failures are never memoized.
type TargetResolver struct {
	api    port.TargetNameAPI
	memo   *ttlcache.Cache[resolveKey, string]
	logger *zap.Logger
}

// NewTargetResolver constructs a resolver whose memo entries live for the
// supplied TTL (one form session); ttl <= 0 selects the default.
func NewTargetResolver(api port.TargetNameAPI, ttl time.Duration, logger *zap.Logger) *TargetResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = defaultMemoTTL
	}
	return &TargetResolver{
		api: api,
		memo: ttlcache.New[resolveKey, string](
			ttlcache.WithTTL[resolveKey, string](ttl),
			ttlcache.WithDisableTouchOnHit[resolveKey, string](),
		),
		logger: logger,
	}
}

// Resolve returns the display name of the target. ErrTargetNotFound means
// the platform has no such target; ErrServiceUnavailable means the lookup
// itself failed and may be retried.
func (r *TargetResolver) Resolve(ctx context.Context, platformName, target string) (string, error) {
	key := resolveKey{platformName: platformName, target: target}

	if item := r.memo.Get(key); item != nil {
		if name := item.Value(); name != "" {
			return name, nil
		}
		return "", fmt.Errorf("%w: %s on %s", ErrTargetNotFound, target, platformName)
	}

	name, err := r.api.TargetName(ctx, platformName, target)
	if err != nil {
		r.logger.Warn("target name lookup failed",
			zap.String("platform", platformName),
			zap.String("target", target),
			zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	// An empty name is the collaborator's "no such target", memoized like a
	// successful resolution.
	r.memo.Set(key, name, ttlcache.DefaultTTL)
	if name == "" {
		return "", fmt.Errorf("%w: %s on %s", ErrTargetNotFound, target, platformName)
	}
	return name, nil
}

// Forget drops the memoized result for one pair, forcing the next Resolve
// to hit the collaborator again.
func (r *TargetResolver) Forget(platformName, target string) {
	r.memo.Delete(resolveKey{platformName: platformName, target: target})
}
