package normalize

import (
	"strconv"
	"time"

	"github.com/Ramsey-B/fern/pkg/models"
)

// OnlineWindow is how recently a member must have logged in to count as
// online. The boundary is inclusive.
const OnlineWindow = time.Hour

// Members converts raw member rows into role-flagged records. Role derivation
// follows the fixed precedence in models.DeriveRole; a member is online when
// their last login is within OnlineWindow of now, and offline when the
// timestamp is absent or unparseable.
func Members(settlementID string, members []models.RawMember, now time.Time) []models.SettlementMemberRecord {
	records := make([]models.SettlementMemberRecord, 0, len(members))
	for _, m := range members {
		lastLogin := parseLoginTimestamp(m.LastLoginTimestamp)

		online := false
		if lastLogin != nil && now.Sub(*lastLogin) <= OnlineWindow {
			online = true
		}

		records = append(records, models.SettlementMemberRecord{
			ID:                m.EntityID,
			SettlementID:      settlementID,
			PlayerEntityID:    m.PlayerEntityID,
			PlayerName:        m.UserName,
			StoragePermission: m.InventoryPermission.Bool(),
			BuildPermission:   m.BuildPermission.Bool(),
			OfficerPermission: m.OfficerPermission.Bool(),
			CoOwnerPermission: m.CoOwnerPermission.Bool(),
			Role:              models.DeriveRole(m.InventoryPermission.Bool(), m.BuildPermission.Bool(), m.OfficerPermission.Bool(), m.CoOwnerPermission.Bool()),
			IsOnline:          online,
			LastLoginAt:       lastLogin,
			CreatedAt:         now,
			UpdatedAt:         now,
		})
	}
	return records
}

// parseLoginTimestamp accepts the two shapes the page has emitted over time:
// RFC3339 strings and epoch-millisecond numbers.
func parseLoginTimestamp(ts models.Timestamp) *time.Time {
	s := ts.String()
	if s == "" {
		return nil
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		t = t.UTC()
		return &t
	}

	if millis, err := strconv.ParseInt(s, 10, 64); err == nil && millis > 0 {
		t := time.UnixMilli(millis).UTC()
		return &t
	}

	return nil
}
