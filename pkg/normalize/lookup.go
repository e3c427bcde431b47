// Package normalize converts raw scraped settlement payloads into flat,
// persistable record sets. All transforms are pure; the caller supplies the
// clock so results are reproducible.
package normalize

import "github.com/Ramsey-B/fern/pkg/models"

// DefaultRarity is assumed when a catalog entry carries no rarity.
const DefaultRarity = "Common"

// BuildItemLookup converts the flat item catalog into an id-keyed lookup map.
// Entries missing an id or name are skipped.
func BuildItemLookup(items []models.RawCatalogEntry) map[int64]models.LookupEntry {
	return buildLookup(items)
}

// BuildCargoLookup converts the flat cargo catalog into an id-keyed lookup map.
func BuildCargoLookup(cargos []models.RawCatalogEntry) map[int64]models.LookupEntry {
	return buildLookup(cargos)
}

func buildLookup(entries []models.RawCatalogEntry) map[int64]models.LookupEntry {
	lookup := make(map[int64]models.LookupEntry, len(entries))
	for _, entry := range entries {
		if entry.ID == 0 || entry.Name == "" {
			continue
		}
		rarity := entry.Rarity
		if rarity == "" {
			rarity = DefaultRarity
		}
		lookup[entry.ID] = models.LookupEntry{
			Name:          entry.Name,
			Tier:          entry.Tier,
			Rarity:        rarity,
			IconAssetName: entry.IconAssetName,
		}
	}
	return lookup
}
