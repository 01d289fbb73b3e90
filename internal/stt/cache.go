package stt

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// resolutionCache maps a tier to the provider's model identifier once and
// reuses it across runs. For whisper that includes checking the weights file
// on disk; the weights themselves are loaded by the helper on every run.
// Concurrent requests for the same tier share a single resolution; failures
// are not cached so the next run tries again.
type resolutionCache[M any] struct {
	load func(ctx context.Context, tier Tier) (M, error)

	group  singleflight.Group
	mu     sync.RWMutex
	models map[Tier]M
}

func newResolutionCache[M any](load func(ctx context.Context, tier Tier) (M, error)) *resolutionCache[M] {
	return &resolutionCache[M]{load: load, models: make(map[Tier]M)}
}

func (c *resolutionCache[M]) get(ctx context.Context, tier Tier) (M, error) {
	c.mu.RLock()
	m, ok := c.models[tier]
	c.mu.RUnlock()
	if ok {
		return m, nil
	}

	v, err, _ := c.group.Do(tier.String(), func() (any, error) {
		m, err := c.load(ctx, tier)
		if err != nil {
			return m, err
		}
		c.mu.Lock()
		c.models[tier] = m
		c.mu.Unlock()
		return m, nil
	})
	if err != nil {
		var zero M
		return zero, err
	}
	return v.(M), nil
}
