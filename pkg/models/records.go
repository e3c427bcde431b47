package models

import "time"

// Role is the single-select member role derived from the four permission flags.
type Role string

const (
	RoleCoOwner Role = "co-owner"
	RoleOfficer Role = "officer"
	RoleBuilder Role = "builder"
	RoleMember  Role = "member"
	RoleGuest   Role = "guest"
)

// DeriveRole maps the four permission flags onto a single role with fixed
// precedence: co-owner > officer > builder > member > guest. First match wins.
func DeriveRole(storage, build, officer, coOwner bool) Role {
	switch {
	case coOwner:
		return RoleCoOwner
	case officer:
		return RoleOfficer
	case build:
		return RoleBuilder
	case storage:
		return RoleMember
	default:
		return RoleGuest
	}
}

// InventoryItemRecord is one occupied inventory slot. ID is synthetic
// ("{buildingID}-{slotIndex}"), unique per cycle and stable across re-scrapes
// of the same slot so a full delete+reinsert is idempotent.
type InventoryItemRecord struct {
	ID            string    `json:"id" db:"id"`
	SettlementID  string    `json:"settlement_id" db:"settlement_id"`
	BuildingID    string    `json:"building_id" db:"building_id"`
	BuildingName  string    `json:"building_name" db:"building_name"`
	BuildingNick  string    `json:"building_nickname,omitempty" db:"building_nickname"`
	BuildingType  string    `json:"building_type,omitempty" db:"building_type"`
	ItemID        int64     `json:"item_id" db:"item_id"`
	ItemName      string    `json:"item_name" db:"item_name"`
	ItemType      string    `json:"item_type" db:"item_type"`
	Quantity      int       `json:"quantity" db:"quantity"`
	Tier          *int      `json:"tier,omitempty" db:"tier"`
	Rarity        string    `json:"rarity" db:"rarity"`
	IconAssetName *string   `json:"icon_asset_name,omitempty" db:"icon_asset_name"`
	Location      string    `json:"location" db:"location"`
	SlotIndex     int       `json:"slot_index" db:"slot_index"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// SettlementMemberRecord is one settlement member. Role is a pure function
// of the four permission flags; IsOnline is derived from LastLoginAt.
type SettlementMemberRecord struct {
	ID                string     `json:"id" db:"id"`
	SettlementID      string     `json:"settlement_id" db:"settlement_id"`
	PlayerEntityID    string     `json:"player_entity_id" db:"player_entity_id"`
	PlayerName        string     `json:"player_name" db:"player_name"`
	StoragePermission bool       `json:"storage_permission" db:"storage_permission"`
	BuildPermission   bool       `json:"build_permission" db:"build_permission"`
	OfficerPermission bool       `json:"officer_permission" db:"officer_permission"`
	CoOwnerPermission bool       `json:"co_owner_permission" db:"co_owner_permission"`
	Role              Role       `json:"role" db:"role"`
	IsOnline          bool       `json:"is_online" db:"is_online"`
	LastLoginAt       *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
}

// SettlementSkillRecord is one (player, skill) pair. The per-player
// aggregates are denormalized onto every row for simple tabular reads.
type SettlementSkillRecord struct {
	ID             string    `json:"id" db:"id"` // "{playerEntityID}-{skillID}"
	SettlementID   string    `json:"settlement_id" db:"settlement_id"`
	PlayerEntityID string    `json:"player_entity_id" db:"player_entity_id"`
	PlayerName     string    `json:"player_name" db:"player_name"`
	SkillID        string    `json:"skill_id" db:"skill_id"`
	SkillName      string    `json:"skill_name" db:"skill_name"`
	SkillLevel     int       `json:"skill_level" db:"skill_level"`
	TotalSkills    int       `json:"total_skills" db:"total_skills"`
	HighestLevel   int       `json:"highest_level" db:"highest_level"`
	TotalLevel     int       `json:"total_level" db:"total_level"`
	TotalXP        float64   `json:"total_xp" db:"total_xp"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// SyncResult summarizes one completed scrape/sync cycle.
type SyncResult struct {
	SettlementID   string        `json:"settlement_id"`
	InventoryCount int           `json:"inventory_count"`
	MemberCount    int           `json:"member_count"`
	SkillCount     int           `json:"skill_count"`
	Changed        bool          `json:"changed"`
	Fingerprint    string        `json:"fingerprint,omitempty"`
	Duration       time.Duration `json:"duration_ms"`
	CompletedAt    time.Time     `json:"completed_at"`
}
