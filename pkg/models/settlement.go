package models

import (
	"bytes"
	"encoding/json"
)

// RawSettlementPayload is the merged scrape result for one cycle.
// It is constructed fresh each cycle and discarded after normalization;
// it is never persisted as-is.
type RawSettlementPayload struct {
	Claim        *RawClaim         `json:"claim,omitempty"`
	Buildings    []RawBuilding     `json:"buildings"`
	Items        []RawCatalogEntry `json:"items"`
	Cargos       []RawCatalogEntry `json:"cargos"`
	Members      []RawMember       `json:"members,omitempty"`
	MemberCount  int               `json:"memberCount,omitempty"`
	Citizens     []RawCitizen      `json:"citizens,omitempty"`
	CitizenCount int               `json:"citizenCount,omitempty"`
	SkillNames   map[string]string `json:"skillNames,omitempty"`
}

// RawClaim carries settlement-level identity from the claim page.
type RawClaim struct {
	EntityID string `json:"entityId"`
	Name     string `json:"name"`
}

// RawBuilding is one container in the settlement.
type RawBuilding struct {
	EntityID     string             `json:"entityId"`
	BuildingName string             `json:"buildingName"`
	Nickname     string             `json:"buildingNickname"`
	TypeName     string             `json:"typeName"`
	Inventory    []RawInventorySlot `json:"inventory"`
}

// RawInventorySlot is one slot in a building's inventory. Contents is nil
// for empty slots.
type RawInventorySlot struct {
	SlotIndex int              `json:"slotIndex"`
	Contents  *RawSlotContents `json:"contents"`
}

// RawSlotContents describes what occupies a slot. Name/Tier/Rarity/Icon may
// be inlined by the page when the catalog entry is missing.
type RawSlotContents struct {
	ItemID        int64   `json:"itemId"`
	Quantity      int     `json:"quantity"`
	ItemType      string  `json:"itemType"`
	Name          string  `json:"name,omitempty"`
	Tier          *int    `json:"tier,omitempty"`
	Rarity        string  `json:"rarity,omitempty"`
	IconAssetName *string `json:"iconAssetName,omitempty"`
}

// RawCatalogEntry is one row of the page's embedded item or cargo catalog.
type RawCatalogEntry struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Tier          *int    `json:"tier,omitempty"`
	Rarity        string  `json:"rarity,omitempty"`
	IconAssetName *string `json:"iconAssetName,omitempty"`
}

// RawMember is a settlement member row from the permissions source.
type RawMember struct {
	EntityID            string    `json:"entityId"`
	PlayerEntityID      string    `json:"playerEntityId"`
	UserName            string    `json:"userName"`
	InventoryPermission Flag      `json:"inventoryPermission"`
	BuildPermission     Flag      `json:"buildPermission"`
	OfficerPermission   Flag      `json:"officerPermission"`
	CoOwnerPermission   Flag      `json:"coOwnerPermission"`
	LastLoginTimestamp  Timestamp `json:"lastLoginTimestamp,omitempty"`
}

// Timestamp is a login timestamp the page serializes as either an RFC3339
// string or an epoch-milliseconds number. The raw text is kept for the
// normalizer to interpret.
type Timestamp string

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		*t = ""
		return nil
	}
	if len(data) > 1 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Timestamp(s)
		return nil
	}
	*t = Timestamp(data)
	return nil
}

func (t Timestamp) String() string {
	return string(t)
}

// RawCitizen is a settlement member row from the skills/experience source.
type RawCitizen struct {
	EntityID    string           `json:"entityId"`
	UserName    string           `json:"userName"`
	Skills      map[string]int   `json:"skills,omitempty"`
	TotalSkills int              `json:"totalSkills,omitempty"`
	HighestLvl  int              `json:"highestLevel,omitempty"`
	TotalLevel  int              `json:"totalLevel,omitempty"`
	TotalXP     float64          `json:"totalXP,omitempty"`
	Experience  map[string]int64 `json:"experience,omitempty"`
}

// Flag is a permission flag that the page serializes as either a bool or a
// 0/1 number depending on the payload variant.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "true", "1":
		*f = true
		return nil
	case "false", "0", "null":
		*f = false
		return nil
	}

	// Anything else (e.g. fractional permission weights) counts as set when non-zero.
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = n != 0
		return nil
	}

	var b bool
	if err := json.Unmarshal(data, &b); err != nil {
		return err
	}
	*f = Flag(b)
	return nil
}

func (f Flag) Bool() bool {
	return bool(f)
}
