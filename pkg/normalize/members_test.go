package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/models"
)

func TestMembers_RolePrecedence(t *testing.T) {
	tests := []struct {
		name     string
		storage  bool
		build    bool
		officer  bool
		coOwner  bool
		expected models.Role
	}{
		{"co-owner wins over everything", true, true, true, true, models.RoleCoOwner},
		{"co-owner wins over officer", false, false, true, true, models.RoleCoOwner},
		{"co-owner alone", false, false, false, true, models.RoleCoOwner},
		{"officer wins over builder", true, true, true, false, models.RoleOfficer},
		{"officer alone", false, false, true, false, models.RoleOfficer},
		{"builder wins over member", true, true, false, false, models.RoleBuilder},
		{"builder alone", false, true, false, false, models.RoleBuilder},
		{"storage alone is member", true, false, false, false, models.RoleMember},
		{"no flags is guest", false, false, false, false, models.RoleGuest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := []models.RawMember{{
				EntityID:            "m1",
				PlayerEntityID:      "p1",
				UserName:            "ada",
				InventoryPermission: models.Flag(tt.storage),
				BuildPermission:     models.Flag(tt.build),
				OfficerPermission:   models.Flag(tt.officer),
				CoOwnerPermission:   models.Flag(tt.coOwner),
			}}

			records := Members("s1", raw, testNow)
			require.Len(t, records, 1)
			assert.Equal(t, tt.expected, records[0].Role)
		})
	}
}

func TestMembers_OnlineBoundary(t *testing.T) {
	tests := []struct {
		name      string
		lastLogin time.Time
		online    bool
	}{
		{"just logged in", testNow, true},
		{"exactly 60 minutes ago is online", testNow.Add(-60 * time.Minute), true},
		{"61 minutes ago is offline", testNow.Add(-61 * time.Minute), false},
		{"a day ago is offline", testNow.Add(-24 * time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := []models.RawMember{{
				EntityID:           "m1",
				LastLoginTimestamp: models.Timestamp(tt.lastLogin.Format(time.RFC3339)),
			}}

			records := Members("s1", raw, testNow)
			require.Len(t, records, 1)
			assert.Equal(t, tt.online, records[0].IsOnline)
		})
	}
}

func TestMembers_MissingTimestampIsOffline(t *testing.T) {
	records := Members("s1", []models.RawMember{{EntityID: "m1"}}, testNow)
	require.Len(t, records, 1)
	assert.False(t, records[0].IsOnline)
	assert.Nil(t, records[0].LastLoginAt)
}

func TestMembers_UnparseableTimestampIsOffline(t *testing.T) {
	records := Members("s1", []models.RawMember{{EntityID: "m1", LastLoginTimestamp: "yesterday-ish"}}, testNow)
	require.Len(t, records, 1)
	assert.False(t, records[0].IsOnline)
	assert.Nil(t, records[0].LastLoginAt)
}

func TestMembers_EpochMillisTimestamp(t *testing.T) {
	lastLogin := testNow.Add(-30 * time.Minute)
	raw := []models.RawMember{{
		EntityID:           "m1",
		LastLoginTimestamp: models.Timestamp("1714563000000"), // 2024-05-01T11:30:00Z
	}}

	records := Members("s1", raw, testNow)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].LastLoginAt)
	assert.Equal(t, lastLogin, *records[0].LastLoginAt)
	assert.True(t, records[0].IsOnline)
}

func TestMembers_CarriesSettlementID(t *testing.T) {
	records := Members("settlement-a", []models.RawMember{{EntityID: "m1", PlayerEntityID: "p1", UserName: "ada"}}, testNow)
	require.Len(t, records, 1)
	assert.Equal(t, "settlement-a", records[0].SettlementID)
	assert.Equal(t, "ada", records[0].PlayerName)
}
