package normalize

import (
	"fmt"
	"time"

	"github.com/Ramsey-B/fern/pkg/models"
)

// UnknownContainer is the location label for buildings with no usable name.
const UnknownContainer = "Unknown Container"

// Inventory walks building → slot → contents and emits one record per
// occupied slot. Item identity resolves through the cargo or item lookup by
// item type, falls back to inline slot data, then to an "Unknown Item ({id})"
// placeholder. Empty slots are skipped entirely. Absence of data is never an
// error, only "Unknown".
func Inventory(settlementID string, payload *models.RawSettlementPayload, now time.Time) []models.InventoryItemRecord {
	if payload == nil {
		return nil
	}

	items := BuildItemLookup(payload.Items)
	cargos := BuildCargoLookup(payload.Cargos)

	records := make([]models.InventoryItemRecord, 0)
	for _, building := range payload.Buildings {
		location := building.Nickname
		if location == "" {
			location = building.BuildingName
		}
		if location == "" {
			location = UnknownContainer
		}

		for _, slot := range building.Inventory {
			contents := slot.Contents
			if contents == nil {
				continue
			}

			entry := resolveEntry(contents, items, cargos)

			quantity := contents.Quantity
			if quantity <= 0 {
				quantity = 1
			}

			records = append(records, models.InventoryItemRecord{
				ID:            fmt.Sprintf("%s-%d", building.EntityID, slot.SlotIndex),
				SettlementID:  settlementID,
				BuildingID:    building.EntityID,
				BuildingName:  building.BuildingName,
				BuildingNick:  building.Nickname,
				BuildingType:  building.TypeName,
				ItemID:        contents.ItemID,
				ItemName:      entry.Name,
				ItemType:      contents.ItemType,
				Quantity:      quantity,
				Tier:          entry.Tier,
				Rarity:        entry.Rarity,
				IconAssetName: entry.IconAssetName,
				Location:      location,
				SlotIndex:     slot.SlotIndex,
				CreatedAt:     now,
				UpdatedAt:     now,
			})
		}
	}
	return records
}

// resolveEntry resolves slot contents against the lookup maps, falling back
// to inline slot fields and finally to a placeholder label.
func resolveEntry(contents *models.RawSlotContents, items, cargos map[int64]models.LookupEntry) models.LookupEntry {
	lookup := items
	if contents.ItemType == "cargo" {
		lookup = cargos
	}

	if entry, ok := lookup[contents.ItemID]; ok {
		return entry
	}

	// inline fallback from the slot contents themselves
	if contents.Name != "" {
		rarity := contents.Rarity
		if rarity == "" {
			rarity = DefaultRarity
		}
		return models.LookupEntry{
			Name:          contents.Name,
			Tier:          contents.Tier,
			Rarity:        rarity,
			IconAssetName: contents.IconAssetName,
		}
	}

	return models.LookupEntry{
		Name:   fmt.Sprintf("Unknown Item (%d)", contents.ItemID),
		Rarity: DefaultRarity,
	}
}
