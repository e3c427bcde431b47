// Package catalog maintains the merged item/cargo catalog used to
// resolve package names and enrich inventory reads.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/pkg/bitjita"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/redis"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// SnapshotVersion tags the persisted catalog envelope so stale formats
// are discarded on warm start.
const SnapshotVersion = "1"

// FeedSource provides the two upstream catalog feeds
type FeedSource interface {
	FetchItems(ctx context.Context) ([]bitjita.RawFeedEntry, error)
	FetchCargo(ctx context.Context) ([]bitjita.RawFeedEntry, error)
}

// Subscriber is notified after every successful catalog refresh
type Subscriber func(items []models.UnifiedItem)

// CacheConfig configures the catalog cache
type CacheConfig struct {
	TTL      time.Duration
	RedisKey string
}

// DefaultCacheConfig returns sensible defaults
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:      time.Hour,
		RedisKey: "fern:catalog",
	}
}

// Cache holds the merged catalog with a TTL. Refreshes are
// single-flight: a refresh requested while one is already running is a
// no-op. Redis (when configured) provides a durable warm start across
// restarts.
type Cache struct {
	mu          sync.RWMutex
	items       []models.UnifiedItem
	fetchedAt   time.Time
	loading     bool
	subscribers []Subscriber

	source FeedSource
	redis  *redis.Client
	config CacheConfig
	logger ectologger.Logger
	now    func() time.Time
}

// NewCache creates a new catalog cache. redisClient may be nil.
func NewCache(source FeedSource, redisClient *redis.Client, config CacheConfig, logger ectologger.Logger) *Cache {
	if config.TTL <= 0 {
		config.TTL = time.Hour
	}
	return &Cache{
		source: source,
		redis:  redisClient,
		config: config,
		logger: logger,
		now:    time.Now,
	}
}

// Subscribe registers a callback invoked after each successful refresh
func (c *Cache) Subscribe(fn Subscriber) {
	c.mu.Lock()
	c.subscribers = append(c.subscribers, fn)
	c.mu.Unlock()
}

// Items returns the cached catalog, refreshing it first if it has
// expired or was never loaded.
func (c *Cache) Items(ctx context.Context) ([]models.UnifiedItem, error) {
	c.mu.RLock()
	valid := c.fetchedAt.After(c.now().Add(-c.config.TTL)) && c.items != nil
	items := c.items
	c.mu.RUnlock()

	if valid {
		return items, nil
	}

	if err := c.Refresh(ctx); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.items, nil
}

// WarmStart seeds the cache from the Redis snapshot if one exists and
// is still within the TTL. Missing or stale snapshots are ignored.
func (c *Cache) WarmStart(ctx context.Context) {
	ctx, span := tracing.StartSpan(ctx, "catalog.Cache.WarmStart")
	defer span.End()

	if c.redis == nil {
		return
	}

	raw, err := c.redis.Get(ctx, c.config.RedisKey)
	if err != nil {
		c.logger.WithContext(ctx).Debug("No catalog snapshot available for warm start")
		return
	}

	var snapshot models.CatalogSnapshot
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		c.logger.WithContext(ctx).WithError(err).Warn("Discarding unreadable catalog snapshot")
		return
	}

	if snapshot.Version != SnapshotVersion {
		c.logger.WithContext(ctx).Warnf("Discarding catalog snapshot with version %q", snapshot.Version)
		return
	}

	if snapshot.FetchedAt.Before(c.now().Add(-c.config.TTL)) {
		c.logger.WithContext(ctx).Debug("Catalog snapshot is stale, skipping warm start")
		return
	}

	c.mu.Lock()
	c.items = snapshot.Items
	c.fetchedAt = snapshot.FetchedAt
	c.mu.Unlock()

	c.logger.WithContext(ctx).Infof("Warm started catalog with %d items", len(snapshot.Items))
}

// Refresh fetches both feeds and rebuilds the merged catalog. A refresh
// already in flight makes this call a no-op. Cargo-feed failure falls
// back to the bundled static dataset; items-feed failure yields an
// empty item set for that kind.
func (c *Cache) Refresh(ctx context.Context) error {
	ctx, span := tracing.StartSpan(ctx, "catalog.Cache.Refresh")
	defer span.End()

	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		return nil
	}
	c.loading = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.loading = false
		c.mu.Unlock()
	}()

	var (
		wg         sync.WaitGroup
		itemsFeed  []bitjita.RawFeedEntry
		cargoFeed  []bitjita.RawFeedEntry
		itemsErr   error
		cargoErr   error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		itemsFeed, itemsErr = c.source.FetchItems(ctx)
	}()
	go func() {
		defer wg.Done()
		cargoFeed, cargoErr = c.source.FetchCargo(ctx)
	}()
	wg.Wait()

	if itemsErr != nil {
		c.logger.WithContext(ctx).WithError(itemsErr).Warn("Items feed failed, continuing with empty item set")
		itemsFeed = nil
	}

	if cargoErr != nil {
		c.logger.WithContext(ctx).WithError(cargoErr).Warn("Cargo feed failed, using bundled fallback dataset")
		cargoFeed, cargoErr = fallbackCargo()
		if cargoErr != nil {
			return fmt.Errorf("cargo feed failed and fallback dataset unavailable: %w", cargoErr)
		}
	}

	merged := make([]models.UnifiedItem, 0, len(itemsFeed)+len(cargoFeed))
	for _, entry := range itemsFeed {
		merged = append(merged, mapEntry(entry, models.KindItem))
	}
	for _, entry := range cargoFeed {
		merged = append(merged, mapEntry(entry, models.KindCargo))
	}

	fetchedAt := c.now()

	c.mu.Lock()
	c.items = merged
	c.fetchedAt = fetchedAt
	subscribers := make([]Subscriber, len(c.subscribers))
	copy(subscribers, c.subscribers)
	c.mu.Unlock()

	c.persist(ctx, merged, fetchedAt)

	for _, fn := range subscribers {
		fn(merged)
	}

	c.logger.WithContext(ctx).Infof("Refreshed catalog with %d items", len(merged))
	return nil
}

func (c *Cache) persist(ctx context.Context, items []models.UnifiedItem, fetchedAt time.Time) {
	if c.redis == nil {
		return
	}

	snapshot := models.CatalogSnapshot{
		Version:   SnapshotVersion,
		FetchedAt: fetchedAt,
		Items:     items,
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		c.logger.WithContext(ctx).WithError(err).Warn("Failed to encode catalog snapshot")
		return
	}

	if err := c.redis.Set(ctx, c.config.RedisKey, data, c.config.TTL); err != nil {
		c.logger.WithContext(ctx).WithError(err).Warn("Failed to persist catalog snapshot")
	}
}

// rarityNames maps the numeric rarity codes the feeds use to display
// names when rarityStr is absent.
var rarityNames = map[int]string{
	1: "Common",
	2: "Uncommon",
	3: "Rare",
	4: "Epic",
	5: "Legendary",
	6: "Mythic",
}

func mapEntry(entry bitjita.RawFeedEntry, kind models.ItemKind) models.UnifiedItem {
	rarityStr := entry.RarityStr
	if rarityStr == "" {
		if name, ok := rarityNames[entry.Rarity]; ok {
			rarityStr = name
		} else {
			rarityStr = "Common"
		}
	}

	category := entry.Category
	if category == "" {
		category = entry.Tag
	}

	var icon *string
	if entry.IconAssetName != "" {
		icon = &entry.IconAssetName
	}

	return models.UnifiedItem{
		ID:            entry.ID.String(),
		Name:          entry.Name,
		Description:   entry.Description,
		Tier:          entry.Tier,
		Rarity:        entry.Rarity,
		RarityStr:     rarityStr,
		IconAssetName: icon,
		Category:      category,
		Kind:          kind,
		Value:         entry.Value,
		Tag:           entry.Tag,
		Volume:        entry.Volume,
	}
}
