// Package memory provides in-memory implementations of application ports.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/reglet-dev/xrdsim/internal/application/ports"
	"github.com/reglet-dev/xrdsim/internal/domain/values"
)

// Ensure interface compliance
var _ ports.ProfileCache = (*ProfileCache)(nil)

// ProfileCache is an in-memory implementation of ports.ProfileCache.
// It deduplicates identical structures within one run.
type ProfileCache struct {
	entries map[string]ports.CachedProfile
	mu      sync.RWMutex
}

// NewProfileCache creates a new in-memory cache.
func NewProfileCache() *ProfileCache {
	return &ProfileCache{
		entries: make(map[string]ports.CachedProfile),
	}
}

// Get returns the entry for key, if present.
func (c *ProfileCache) Get(_ context.Context, key values.ProfileKey) (ports.CachedProfile, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key.String()]
	if !ok {
		return ports.CachedProfile{}, false, nil
	}
	entry.Intensities = append([]float64(nil), entry.Intensities...)
	return entry, true, nil
}

// Put stores a copy of profile under key.
func (c *ProfileCache) Put(_ context.Context, key values.ProfileKey, profile ports.CachedProfile) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	profile.Intensities = append([]float64(nil), profile.Intensities...)
	c.entries[key.String()] = profile
	return nil
}

// Len returns the number of cached entries.
func (c *ProfileCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Labels returns the cached labels in sorted order.
func (c *ProfileCache) Labels() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	labels := make([]string, 0, len(c.entries))
	for _, e := range c.entries {
		labels = append(labels, e.Label)
	}
	sort.Strings(labels)
	return labels
}
