package catalog

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/bitjita"
	"github.com/Ramsey-B/fern/pkg/models"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

type fakeFeedSource struct {
	items      []bitjita.RawFeedEntry
	cargo      []bitjita.RawFeedEntry
	itemsErr   error
	cargoErr   error
	itemCalls  atomic.Int64
	cargoCalls atomic.Int64
}

func (f *fakeFeedSource) FetchItems(_ context.Context) ([]bitjita.RawFeedEntry, error) {
	f.itemCalls.Add(1)
	return f.items, f.itemsErr
}

func (f *fakeFeedSource) FetchCargo(_ context.Context) ([]bitjita.RawFeedEntry, error) {
	f.cargoCalls.Add(1)
	return f.cargo, f.cargoErr
}

func intPtr(v int) *int {
	return &v
}

func newTestSource() *fakeFeedSource {
	return &fakeFeedSource{
		items: []bitjita.RawFeedEntry{
			{ID: "1", Name: "Wood", Tier: intPtr(1), Rarity: 1},
			{ID: "2", Name: "Stone", Tier: intPtr(1), Rarity: 1},
		},
		cargo: []bitjita.RawFeedEntry{
			{ID: "1001", Name: "Rough Log", Tier: intPtr(1), Rarity: 1},
		},
	}
}

func TestCache_RefreshMergesFeeds(t *testing.T) {
	source := newTestSource()
	cache := NewCache(source, nil, DefaultCacheConfig(), testLogger())

	require.NoError(t, cache.Refresh(context.Background()))

	items, err := cache.Items(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 3)

	kinds := map[models.ItemKind]int{}
	for _, item := range items {
		kinds[item.Kind]++
	}
	assert.Equal(t, 2, kinds[models.KindItem])
	assert.Equal(t, 1, kinds[models.KindCargo])
}

func TestCache_ItemsServesCachedWithinTTL(t *testing.T) {
	source := newTestSource()
	cache := NewCache(source, nil, DefaultCacheConfig(), testLogger())

	_, err := cache.Items(context.Background())
	require.NoError(t, err)
	_, err = cache.Items(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(1), source.itemCalls.Load())
	assert.Equal(t, int64(1), source.cargoCalls.Load())
}

func TestCache_ItemsRefreshesAfterExpiry(t *testing.T) {
	source := newTestSource()
	cache := NewCache(source, nil, CacheConfig{TTL: time.Hour}, testLogger())

	current := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return current }

	_, err := cache.Items(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), source.itemCalls.Load())

	// Just inside the TTL: still cached
	current = current.Add(59 * time.Minute)
	_, err = cache.Items(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), source.itemCalls.Load())

	// Past the TTL: refetched
	current = current.Add(2 * time.Minute)
	_, err = cache.Items(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), source.itemCalls.Load())
}

func TestCache_CargoFeedFailureUsesFallback(t *testing.T) {
	source := newTestSource()
	source.cargoErr = errors.New("upstream down")
	cache := NewCache(source, nil, DefaultCacheConfig(), testLogger())

	require.NoError(t, cache.Refresh(context.Background()))

	items, err := cache.Items(context.Background())
	require.NoError(t, err)

	var cargoNames []string
	for _, item := range items {
		if item.Kind == models.KindCargo {
			cargoNames = append(cargoNames, item.Name)
		}
	}
	assert.NotEmpty(t, cargoNames)
	assert.Contains(t, cargoNames, "Rough Log")
}

func TestCache_ItemsFeedFailureYieldsEmptyItems(t *testing.T) {
	source := newTestSource()
	source.itemsErr = errors.New("upstream down")
	cache := NewCache(source, nil, DefaultCacheConfig(), testLogger())

	require.NoError(t, cache.Refresh(context.Background()))

	items, err := cache.Items(context.Background())
	require.NoError(t, err)
	for _, item := range items {
		assert.Equal(t, models.KindCargo, item.Kind)
	}
}

func TestCache_RefreshIsSingleFlight(t *testing.T) {
	source := newTestSource()
	cache := NewCache(source, nil, DefaultCacheConfig(), testLogger())

	cache.mu.Lock()
	cache.loading = true
	cache.mu.Unlock()

	require.NoError(t, cache.Refresh(context.Background()))
	assert.Equal(t, int64(0), source.itemCalls.Load())

	cache.mu.Lock()
	cache.loading = false
	cache.mu.Unlock()

	require.NoError(t, cache.Refresh(context.Background()))
	assert.Equal(t, int64(1), source.itemCalls.Load())
}

func TestCache_SubscribersNotifiedOnRefresh(t *testing.T) {
	source := newTestSource()
	cache := NewCache(source, nil, DefaultCacheConfig(), testLogger())

	var got []models.UnifiedItem
	cache.Subscribe(func(items []models.UnifiedItem) {
		got = items
	})

	require.NoError(t, cache.Refresh(context.Background()))
	assert.Len(t, got, 3)
}

func TestMapEntry_RarityStrFallback(t *testing.T) {
	tests := []struct {
		name  string
		entry bitjita.RawFeedEntry
		want  string
	}{
		{"explicit rarityStr wins", bitjita.RawFeedEntry{Rarity: 1, RarityStr: "Shiny"}, "Shiny"},
		{"numeric code mapped", bitjita.RawFeedEntry{Rarity: 3}, "Rare"},
		{"unknown code defaults", bitjita.RawFeedEntry{Rarity: 99}, "Common"},
		{"zero code defaults", bitjita.RawFeedEntry{}, "Common"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := mapEntry(tt.entry, models.KindItem)
			assert.Equal(t, tt.want, item.RarityStr)
		})
	}
}

func TestFallbackCargo_BundledDatasetDecodes(t *testing.T) {
	entries, err := fallbackCargo()
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
	for _, entry := range entries {
		assert.NotEmpty(t, entry.Name)
	}
}
