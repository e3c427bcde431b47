package models

import "time"

// ItemKind discriminates the two catalog sources merged into UnifiedItem.
type ItemKind string

const (
	KindItem  ItemKind = "item"
	KindCargo ItemKind = "cargo"
)

// LookupEntry is the normalized identity of one catalog row, keyed by
// numeric id in the per-cycle lookup maps.
type LookupEntry struct {
	Name          string  `json:"name"`
	Tier          *int    `json:"tier,omitempty"`
	Rarity        string  `json:"rarity"`
	IconAssetName *string `json:"icon_asset_name,omitempty"`
}

// UnifiedItem merges the item and cargo catalog feeds into one shape.
type UnifiedItem struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	Tier          *int     `json:"tier,omitempty"`
	Rarity        int      `json:"rarity,omitempty"`
	RarityStr     string   `json:"rarity_str"`
	IconAssetName *string  `json:"icon_asset_name,omitempty"`
	Category      string   `json:"category,omitempty"`
	Kind          ItemKind `json:"kind"`
	Value         *float64 `json:"value,omitempty"`
	Tag           string   `json:"tag,omitempty"`
	Volume        *int     `json:"volume,omitempty"`
}

// CatalogSnapshot is the durable envelope the catalog cache persists for
// warm starts.
type CatalogSnapshot struct {
	Version   string        `json:"version"`
	FetchedAt time.Time     `json:"fetched_at"`
	Items     []UnifiedItem `json:"items"`
}

// PackageItem is one packaged variant's contribution to a base item total.
type PackageItem struct {
	Name         string `json:"name"`
	Quantity     int    `json:"quantity"`
	Multiplier   int    `json:"multiplier"`
	Contribution int    `json:"contribution"`
}

// PackageBreakdown is the audit trail behind a combined total.
type PackageBreakdown struct {
	BaseQuantity int           `json:"base_quantity"`
	PackageItems []PackageItem `json:"package_items"`
}

// CombinedInventoryItem is one aggregate row per base item name, folding
// packaged variants into a canonical total.
type CombinedInventoryItem struct {
	Name          string           `json:"name"`
	Tier          *int             `json:"tier,omitempty"`
	Rarity        string           `json:"rarity,omitempty"`
	IconAssetName *string          `json:"icon_asset_name,omitempty"`
	TotalQuantity int              `json:"total_quantity"`
	Breakdown     PackageBreakdown `json:"package_breakdown"`
}
