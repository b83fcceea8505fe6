// Package manifest resolves the official mod list of a modpack version from
// the release manifests and the asset catalogue kept on GitHub.
package manifest

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/crashscope/core/internal/models"
)

type officialKey struct {
	version string
	side    models.Side
}

// Cache memoizes a Source for the lifetime of one run. Failures are not
// remembered, so a later call retries.
type Cache struct {
	source Source
	log    *slog.Logger
	group  singleflight.Group

	mu       sync.Mutex
	releases map[string]*models.Release
	assets   *models.Assets
	official map[officialKey][]models.OfficialMod
}

func NewCache(source Source, log *slog.Logger) *Cache {
	if log == nil {
		log = slog.Default()
	}
	return &Cache{
		source:   source,
		log:      log.With("component", "manifest"),
		releases: map[string]*models.Release{},
		official: map[officialKey][]models.OfficialMod{},
	}
}

func (c *Cache) Release(ctx context.Context, version string) (*models.Release, error) {
	c.mu.Lock()
	if r, ok := c.releases[version]; ok {
		c.mu.Unlock()
		return r, nil
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do("release:"+version, func() (any, error) {
		r, err := c.source.Release(ctx, version)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.releases[version] = r
		c.mu.Unlock()
		return r, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Release), nil
}

func (c *Cache) Assets(ctx context.Context) (*models.Assets, error) {
	c.mu.Lock()
	if c.assets != nil {
		defer c.mu.Unlock()
		return c.assets, nil
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do("assets", func() (any, error) {
		a, err := c.source.Assets(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.assets = a
		c.mu.Unlock()
		return a, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Assets), nil
}

// OfficialMods implements diagnose.ModListResolver.
func (c *Cache) OfficialMods(ctx context.Context, version string, side models.Side) ([]models.OfficialMod, error) {
	key := officialKey{version: version, side: side}

	c.mu.Lock()
	if mods, ok := c.official[key]; ok {
		c.mu.Unlock()
		return mods, nil
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do("official:"+version+"/"+string(side), func() (any, error) {
		release, err := c.Release(ctx, version)
		if err != nil {
			return nil, err
		}
		assets, err := c.Assets(ctx)
		if err != nil {
			return nil, err
		}
		mods := OfficialMods(release, assets, side, c.log)
		c.mu.Lock()
		c.official[key] = mods
		c.mu.Unlock()
		return mods, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.OfficialMod), nil
}
