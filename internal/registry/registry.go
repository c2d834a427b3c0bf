// Package registry holds the server-declared platform and site capabilities.
// The registry is loaded once per session and is read-only afterwards.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/arklim/subhub-console/internal/core/domain"
	"github.com/arklim/subhub-console/internal/core/port"
)

var (
	// ErrNotLoaded indicates registry access before Load completed.
	ErrNotLoaded = errors.New("registry: capabilities not loaded")
	// ErrPlatformUnknown indicates a lookup for an undeclared platform.
	ErrPlatformUnknown = errors.New("registry: unknown platform")
	// ErrSiteUnknown indicates a lookup for an undeclared site.
	ErrSiteUnknown = errors.New("registry: unknown site")
)

// LoadError wraps a failed capability bootstrap. The caller may retry Load;
// the registry performs no internal retries.
type LoadError struct {
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("registry: load capabilities: %v", e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Registry caches the capability bootstrap for the lifetime of the session.
type Registry struct {
	api    port.CapabilityAPI
	logger *zap.Logger

	mu        sync.RWMutex
	loaded    bool
	platforms map[string]domain.Platform
	sites     map[string]domain.Site
}

// New constructs an unloaded Registry.
func New(api port.CapabilityAPI, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{api: api, logger: logger}
}

// Load fetches the capability bootstrap. The first successful call pins the
// result for the session; later calls return nil without refetching. A
// malformed payload is rejected as a *LoadError and leaves the registry
// unloaded.
func (r *Registry) Load(ctx context.Context) error {
	r.mu.RLock()
	loaded := r.loaded
	r.mu.RUnlock()
	if loaded {
		return nil
	}

	caps, err := r.api.GlobalConf(ctx)
	if err != nil {
		return &LoadError{Err: err}
	}
	if err := validate(caps); err != nil {
		return &LoadError{Err: err}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loaded {
		return nil
	}
	r.platforms = caps.Platforms
	r.sites = caps.Sites
	r.loaded = true

	r.logger.Info("capabilities loaded",
		zap.Int("platforms", len(r.platforms)),
		zap.Int("sites", len(r.sites)))
	return nil
}

// Loaded reports whether the bootstrap has completed.
func (r *Registry) Loaded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loaded
}

// Platform returns the declared capabilities of one platform.
func (r *Registry) Platform(name string) (domain.Platform, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.loaded {
		return domain.Platform{}, ErrNotLoaded
	}
	p, ok := r.platforms[name]
	if !ok {
		return domain.Platform{}, fmt.Errorf("%w: %s", ErrPlatformUnknown, name)
	}
	return p, nil
}

// Site returns the declared capabilities of one site.
func (r *Registry) Site(name string) (domain.Site, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.loaded {
		return domain.Site{}, ErrNotLoaded
	}
	s, ok := r.sites[name]
	if !ok {
		return domain.Site{}, fmt.Errorf("%w: %s", ErrSiteUnknown, name)
	}
	return s, nil
}

// Platforms lists all declared platforms sorted by name.
func (r *Registry) Platforms() ([]domain.Platform, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.loaded {
		return nil, ErrNotLoaded
	}
	out := make([]domain.Platform, 0, len(r.platforms))
	for _, p := range r.platforms {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlatformName < out[j].PlatformName })
	return out, nil
}

// Sites lists all declared sites sorted by name.
func (r *Registry) Sites() ([]domain.Site, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.loaded {
		return nil, ErrNotLoaded
	}
	out := make([]domain.Site, 0, len(r.sites))
	for _, s := range r.sites {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func validate(caps port.Capabilities) error {
	for name, p := range caps.Platforms {
		if name == "" || p.PlatformName == "" {
			return fmt.Errorf("platform with empty name")
		}
		if name != p.PlatformName {
			return fmt.Errorf("platform %q keyed as %q", p.PlatformName, name)
		}
		if p.SiteName == "" {
			return fmt.Errorf("platform %q declares no site", name)
		}
		if _, ok := caps.Sites[p.SiteName]; !ok {
			return fmt.Errorf("platform %q references undeclared site %q", name, p.SiteName)
		}
	}
	for name, s := range caps.Sites {
		if name == "" || s.Name == "" {
			return fmt.Errorf("site with empty name")
		}
		if name != s.Name {
			return fmt.Errorf("site %q keyed as %q", s.Name, name)
		}
	}
	return nil
}
