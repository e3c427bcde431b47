// Package packaging folds packaged variants of an item (e.g. "Wood Package"
// = 100x Wood) into canonical per-base-item totals with a breakdown trail.
package packaging

import (
	"sort"
	"strings"

	"github.com/Ramsey-B/fern/pkg/models"
)

// Rule maps a name suffix onto a quantity multiplier. Rules are evaluated
// in order; the first matching suffix wins.
type Rule struct {
	Suffix     string
	Multiplier int
}

// DefaultRules is the static rule table the game currently needs.
func DefaultRules() []Rule {
	return []Rule{
		{Suffix: " Package", Multiplier: 100},
	}
}

// Combine aggregates inventory records by base item name. Packaged variants
// contribute quantity*multiplier to their base item's total; unpackaged
// records contribute their raw quantity as base quantity. Catalog items with
// no inventory presence still appear with a zero total so every known item
// shows up in the view. Output is sorted by name.
func Combine(records []models.InventoryItemRecord, catalog []models.UnifiedItem, rules []Rule) []models.CombinedInventoryItem {
	combined := map[string]*models.CombinedInventoryItem{}

	get := func(name string) *models.CombinedInventoryItem {
		if agg, ok := combined[name]; ok {
			return agg
		}
		agg := &models.CombinedInventoryItem{
			Name:      name,
			Breakdown: models.PackageBreakdown{PackageItems: []models.PackageItem{}},
		}
		combined[name] = agg
		return agg
	}

	// Seed every catalog item so zero-quantity rows are present.
	for _, item := range catalog {
		if baseName, _, matched := matchRule(item.Name, rules); matched {
			get(baseName)
			continue
		}
		agg := get(item.Name)
		if agg.Rarity == "" {
			agg.Tier = item.Tier
			agg.Rarity = item.RarityStr
			agg.IconAssetName = item.IconAssetName
		}
	}

	for _, record := range records {
		baseName, rule, matched := matchRule(record.ItemName, rules)
		if !matched {
			agg := get(record.ItemName)
			agg.TotalQuantity += record.Quantity
			agg.Breakdown.BaseQuantity += record.Quantity
			if agg.Rarity == "" {
				agg.Tier = record.Tier
				agg.Rarity = record.Rarity
				agg.IconAssetName = record.IconAssetName
			}
			continue
		}

		contribution := record.Quantity * rule.Multiplier
		agg := get(baseName)
		agg.TotalQuantity += contribution
		agg.Breakdown.PackageItems = append(agg.Breakdown.PackageItems, models.PackageItem{
			Name:         record.ItemName,
			Quantity:     record.Quantity,
			Multiplier:   rule.Multiplier,
			Contribution: contribution,
		})
	}

	out := make([]models.CombinedInventoryItem, 0, len(combined))
	for _, agg := range combined {
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

// matchRule returns the base name and matched rule for a packaged item name.
func matchRule(name string, rules []Rule) (string, Rule, bool) {
	for _, rule := range rules {
		base := strings.TrimSuffix(name, rule.Suffix)
		if base != name && base != "" {
			return base, rule, true
		}
	}
	return name, Rule{}, false
}
