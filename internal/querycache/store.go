// Package querycache implements refetch-after-write synchronization between
// independent read queries and the mutations that affect them. Every query
// result is stored under the tags it depends on; a successful mutation marks
// all resident queries sharing one of its invalidation tags stale and
// re-runs them before returning, so no call site wires manual refetches.
package querycache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/arklim/subhub-console/internal/infra/telemetry"
)

// ErrNoFetch indicates a QuerySpec without a fetch function.
var ErrNoFetch = errors.New("querycache: query spec has no fetch function")

const defaultRefetchTimeout = 10 * time.Second

// QuerySpec identifies one read query and how to perform it. Kind plus the
// canonicalized Params form the identity; concurrent calls for the same
// identity share a single in-flight fetch.
type QuerySpec struct {
	Kind   string
	Params string
	Tags   []Tag
	Fetch  func(ctx context.Context) (any, error)
}

// MutationSpec describes one write and the tags it invalidates on success.
// A failed mutation leaves the cache exactly as it was.
type MutationSpec struct {
	Name        string
	Invalidates []Tag
	Do          func(ctx context.Context) (any, error)
}

type entry struct {
	key   string
	kind  string
	tags  []Tag
	fetch func(ctx context.Context) (any, error)
	data  any
	fresh bool
	// epoch counts invalidations of this entry. A fetch result is stored
	// only when the epoch it started under is still current, so a fetch
	// that predates a write can never mask the write's refetch.
	epoch uint64
}

// Store is the tag-indexed query/mutation cache. Results handed out by
// Query are shared; callers must treat them as read-only.
type Store struct {
	logger         *zap.Logger
	metrics        *telemetry.CacheMetrics
	refetchTimeout time.Duration

	group singleflight.Group

	mu      sync.Mutex
	gen     uint64
	entries map[string]*entry
	byTag   map[Tag]mapset.Set[string]
}

// Option tunes Store construction.
type Option func(*Store)

// WithMetrics attaches Prometheus collectors to the store.
func WithMetrics(m *telemetry.CacheMetrics) Option {
	return func(s *Store) { s.metrics = m }
}

// WithRefetchTimeout bounds each automatic refetch triggered by
// invalidation.
func WithRefetchTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.refetchTimeout = d
		}
	}
}

// New constructs an empty Store.
func New(logger *zap.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		logger:         logger,
		refetchTimeout: defaultRefetchTimeout,
		entries:        make(map[string]*entry),
		byTag:          make(map[Tag]mapset.Set[string]),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Query returns the resident result when present and fresh, otherwise
// fetches, stores the result under the spec's tags, and returns it. If the
// caller's context is cancelled while a shared fetch is in flight, the
// caller gets ctx.Err() and the fetch continues for the other consumers.
func (s *Store) Query(ctx context.Context, spec QuerySpec) (any, error) {
	if spec.Fetch == nil {
		return nil, ErrNoFetch
	}
	key := queryKey(spec.Kind, spec.Params)

	s.mu.Lock()
	if e, ok := s.entries[key]; ok && e.fresh {
		data := e.data
		s.mu.Unlock()
		if s.metrics != nil {
			s.metrics.Hits.WithLabelValues(spec.Kind).Inc()
		}
		return data, nil
	}
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.Misses.WithLabelValues(spec.Kind).Inc()
	}
	// The shared fetch is detached from the first caller's cancellation so
	// one torn-down consumer cannot fail the others.
	return s.fetch(ctx, context.WithoutCancel(ctx), key, spec.Kind, spec.Tags, spec.Fetch)
}

// Mutate performs the write. On success every resident query tagged with
// one of the spec's invalidation tags is marked stale and refetched before
// Mutate returns; a refetch failure is logged and the query stays stale so
// the next Query retries. On failure no invalidation happens.
func (s *Store) Mutate(ctx context.Context, spec MutationSpec) (any, error) {
	if spec.Do == nil {
		return nil, fmt.Errorf("querycache: mutation %s has no operation", spec.Name)
	}

	out, err := spec.Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("mutation %s: %w", spec.Name, err)
	}

	s.invalidate(ctx, spec.Invalidates)
	return out, nil
}

// Invalidate marks every resident query carrying one of the tags stale and
// refetches it. Tags with no resident queries are a no-op.
func (s *Store) Invalidate(ctx context.Context, tags ...Tag) {
	s.invalidate(ctx, tags)
}

// Reset drops all resident results, e.g. when the session is cleared.
// In-flight fetches started before the reset are discarded on completion.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.entries = make(map[string]*entry)
	s.byTag = make(map[Tag]mapset.Set[string])
}

// fetch runs fetchFn through the flight group. ctx bounds how long this
// caller waits; fetchCtx is what the collaborator call itself runs under.
func (s *Store) fetch(ctx, fetchCtx context.Context, key, kind string, tags []Tag, fetchFn func(ctx context.Context) (any, error)) (any, error) {
	s.mu.Lock()
	gen := s.gen
	var epoch uint64
	if e, ok := s.entries[key]; ok {
		epoch = e.epoch
	}
	s.mu.Unlock()

	ch := s.group.DoChan(key, func() (any, error) {
		if s.metrics != nil {
			s.metrics.Fetches.WithLabelValues(kind).Inc()
		}
		data, err := fetchFn(fetchCtx)
		if err != nil {
			return nil, err
		}
		s.storeResult(gen, epoch, key, kind, tags, fetchFn, data)
		return data, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val, nil
	}
}

func (s *Store) storeResult(gen, epoch uint64, key, kind string, tags []Tag, fetchFn func(ctx context.Context) (any, error), data any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		// The store was reset while this fetch was in flight.
		return
	}
	e, ok := s.entries[key]
	if ok && e.epoch != epoch {
		// An invalidation landed while this fetch was in flight; the result
		// predates the write and must not be stored as fresh.
		return
	}
	if !ok {
		e = &entry{key: key, kind: kind, tags: tags, epoch: epoch}
		s.entries[key] = e
	}
	e.fetch = fetchFn
	e.data = data
	e.fresh = true
	for _, tag := range tags {
		set, ok := s.byTag[tag]
		if !ok {
			set = mapset.NewThreadUnsafeSet[string]()
			s.byTag[tag] = set
		}
		set.Add(key)
	}
}

type refetchTarget struct {
	key   string
	kind  string
	tags  []Tag
	fetch func(ctx context.Context) (any, error)
}

func (s *Store) invalidate(ctx context.Context, tags []Tag) {
	if len(tags) == 0 {
		return
	}

	s.mu.Lock()
	keys := mapset.NewThreadUnsafeSet[string]()
	for _, tag := range tags {
		set, ok := s.byTag[tag]
		if !ok {
			continue
		}
		hit := 0
		for key := range set.Iter() {
			if _, ok := s.entries[key]; ok {
				keys.Add(key)
				hit++
			}
		}
		if hit > 0 && s.metrics != nil {
			s.metrics.Invalidations.WithLabelValues(string(tag)).Add(float64(hit))
		}
	}

	targets := make([]refetchTarget, 0, keys.Cardinality())
	for key := range keys.Iter() {
		e := s.entries[key]
		e.fresh = false
		e.epoch++
		// A fetch for this key started before the write must not satisfy
		// the refetch: drop it from the flight group so the refetch below
		// performs its own call, and let the epoch bump discard its result.
		s.group.Forget(key)
		targets = append(targets, refetchTarget{key: e.key, kind: e.kind, tags: e.tags, fetch: e.fetch})
	}
	s.mu.Unlock()

	for _, t := range targets {
		if s.metrics != nil {
			s.metrics.Refetches.WithLabelValues(t.kind).Inc()
		}
		refetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.refetchTimeout)
		if _, err := s.fetch(refetchCtx, refetchCtx, t.key, t.kind, t.tags, t.fetch); err != nil {
			s.logger.Warn("refetch after invalidation failed",
				zap.String("query", t.key),
				zap.Error(err))
		}
		cancel()
	}
}

func queryKey(kind, params string) string {
	if params == "" {
		return kind
	}
	return kind + "?" + params
}
