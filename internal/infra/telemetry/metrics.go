package telemetry

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// CacheMetricsOptions configures the query cache collectors.
type CacheMetricsOptions struct {
	Registerer prometheus.Registerer
	Namespace  string
}

// CacheMetrics exposes Prometheus collectors for query cache behaviour.
type CacheMetrics struct {
	Hits          *prometheus.CounterVec
	Misses        *prometheus.CounterVec
	Fetches       *prometheus.CounterVec
	Invalidations *prometheus.CounterVec
	Refetches     *prometheus.CounterVec
}

// NewCacheMetrics constructs the cache collectors and registers them with
// the provided registerer.
func NewCacheMetrics(opts CacheMetricsOptions) (*CacheMetrics, error) {
	namespace := opts.Namespace
	if namespace == "" {
		namespace = "subhub"
	}

	reg := opts.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	newCounter := func(name, help string, labels ...string) (*prometheus.CounterVec, error) {
		c := prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "querycache",
			Name:      name,
			Help:      help,
		}, labels)
		if err := reg.Register(c); err != nil {
			already, ok := err.(prometheus.AlreadyRegisteredError)
			if !ok {
				return nil, fmt.Errorf("register %s collector: %w", name, err)
			}
			existing, ok := already.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				return nil, fmt.Errorf("existing %s collector has unexpected type %T", name, already.ExistingCollector)
			}
			c = existing
		}
		return c, nil
	}

	hits, err := newCounter("hits_total", "Query results served from resident cache.", "kind")
	if err != nil {
		return nil, err
	}
	misses, err := newCounter("misses_total", "Query calls that required a fetch.", "kind")
	if err != nil {
		return nil, err
	}
	fetches, err := newCounter("fetches_total", "Collaborator fetches issued, deduplicated across concurrent callers.", "kind")
	if err != nil {
		return nil, err
	}
	invalidations, err := newCounter("invalidations_total", "Resident queries marked stale by mutations.", "tag")
	if err != nil {
		return nil, err
	}
	refetches, err := newCounter("refetches_total", "Automatic refetches triggered by invalidation.", "kind")
	if err != nil {
		return nil, err
	}

	return &CacheMetrics{
		Hits:          hits,
		Misses:        misses,
		Fetches:       fetches,
		Invalidations: invalidations,
		Refetches:     refetches,
	}, nil
}

// ServeMetrics exposes the default Prometheus registry on addr until the
// listener fails. Intended to run in its own goroutine.
func ServeMetrics(addr string, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Warn("metrics listener stopped", zap.Error(err))
	}
}
