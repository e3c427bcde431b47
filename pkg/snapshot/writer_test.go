package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/models"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func testSnapshot() *Snapshot {
	return &Snapshot{
		SettlementID: "settlement-1",
		CapturedAt:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Items: []models.InventoryItemRecord{
			{ID: "b1-0", SettlementID: "settlement-1", ItemName: "Wood", Quantity: 5},
		},
		Members: []models.SettlementMemberRecord{
			{ID: "m1", SettlementID: "settlement-1", PlayerName: "alice", Role: models.RoleMember},
		},
		Skills: []models.SettlementSkillRecord{
			{ID: "c1-3", SettlementID: "settlement-1", SkillName: "Forestry", SkillLevel: 10},
		},
	}
}

func TestWriter_WriteCreatesAllFiles(t *testing.T) {
	dir := t.TempDir()
	writer := NewWriter(dir, testLogger())

	require.NoError(t, writer.Write(context.Background(), testSnapshot()))

	expected := []string{
		"settlement-data-2024-05-01T12-00-00Z.json",
		"items-2024-05-01T12-00-00Z.json",
		"members-2024-05-01T12-00-00Z.json",
		"skills-2024-05-01T12-00-00Z.json",
		LatestFileName,
	}
	for _, name := range expected {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, "expected snapshot file %s", name)
	}
}

func TestWriter_LatestIsOverwritten(t *testing.T) {
	dir := t.TempDir()
	writer := NewWriter(dir, testLogger())

	first := testSnapshot()
	require.NoError(t, writer.Write(context.Background(), first))

	second := testSnapshot()
	second.CapturedAt = second.CapturedAt.Add(time.Minute)
	second.Items = append(second.Items, models.InventoryItemRecord{
		ID: "b1-1", SettlementID: "settlement-1", ItemName: "Stone", Quantity: 2,
	})
	require.NoError(t, writer.Write(context.Background(), second))

	latest, err := writer.ReadLatest()
	require.NoError(t, err)
	assert.Equal(t, second.CapturedAt, latest.CapturedAt)
	assert.Len(t, latest.Items, 2)
}

func TestWriter_WriteCreatesMissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "snapshots")
	writer := NewWriter(dir, testLogger())

	require.NoError(t, writer.Write(context.Background(), testSnapshot()))

	_, err := os.Stat(filepath.Join(dir, LatestFileName))
	assert.NoError(t, err)
}

func TestWriter_ReadLatestMissing(t *testing.T) {
	writer := NewWriter(t.TempDir(), testLogger())

	_, err := writer.ReadLatest()
	assert.Error(t, err)
}
