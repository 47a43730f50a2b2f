package spatial

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	apperrors "netmobcli/internal/errors"
)

// Store persists correspondences between runs. Load returns an error
// matching apperrors.ErrNotFound when the region was never saved.
type Store interface {
	Load(ctx context.Context, region string) (*Correspondence, error)
	Save(ctx context.Context, c *Correspondence) error
}

// Builder computes the correspondence of a region from its geometry layers.
type Builder func(ctx context.Context, region string) (*Correspondence, error)

// Registry memoizes correspondences by region. It reads the store first and
// only builds (then saves) regions the store does not hold. Concurrent
// requests for the same region share one load or build.
type Registry struct {
	store  Store
	build  Builder
	logger *slog.Logger

	mu    sync.RWMutex
	cache map[string]*Correspondence
	group singleflight.Group
}

// NewRegistry creates an empty registry.
func NewRegistry(store Store, build Builder, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		store:  store,
		build:  build,
		logger: logger.With(slog.String("component", "correspondence_registry")),
		cache:  make(map[string]*Correspondence),
	}
}

// Get returns the correspondence of a region.
func (r *Registry) Get(ctx context.Context, region string) (*Correspondence, error) {
	r.mu.RLock()
	c, ok := r.cache[region]
	r.mu.RUnlock()
	if ok {
		return c, nil
	}

	v, err, _ := r.group.Do(region, func() (interface{}, error) {
		if r.store != nil {
			c, err := r.store.Load(ctx, region)
			if err == nil {
				r.remember(c)
				return c, nil
			}
			if !errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("load correspondence for %s: %w", region, err)
			}
		}
		return r.rebuild(ctx, region)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Correspondence), nil
}

// Rebuild recomputes a region even if the store holds it.
func (r *Registry) Rebuild(ctx context.Context, region string) (*Correspondence, error) {
	v, err, _ := r.group.Do("rebuild:"+region, func() (interface{}, error) {
		return r.rebuild(ctx, region)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Correspondence), nil
}

// Put records an already computed correspondence and saves it.
func (r *Registry) Put(ctx context.Context, c *Correspondence) error {
	if r.store != nil {
		if err := r.store.Save(ctx, c); err != nil {
			return fmt.Errorf("save correspondence for %s: %w", c.Region, err)
		}
	}
	r.remember(c)
	return nil
}

// Cached lists the regions currently held in memory.
func (r *Registry) Cached() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.cache))
	for region := range r.cache {
		out = append(out, region)
	}
	return out
}

func (r *Registry) rebuild(ctx context.Context, region string) (*Correspondence, error) {
	if r.build == nil {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("correspondence for %s", region))
	}
	r.logger.InfoContext(ctx, "Building correspondence", slog.String("region", region))
	c, err := r.build(ctx, region)
	if err != nil {
		return nil, err
	}
	if err := r.Put(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *Registry) remember(c *Correspondence) {
	r.mu.Lock()
	r.cache[c.Region] = c
	r.mu.Unlock()
}
