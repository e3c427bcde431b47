package scraper

import (
	"context"
	"errors"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/snapshot"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func intPtr(v int) *int {
	return &v
}

func inventoryPayload() *models.RawSettlementPayload {
	return &models.RawSettlementPayload{
		Buildings: []models.RawBuilding{
			{
				EntityID:     "b1",
				BuildingName: "Storehouse",
				Inventory: []models.RawInventorySlot{
					{SlotIndex: 0, Contents: &models.RawSlotContents{ItemID: 1, Quantity: 5, ItemType: "item"}},
				},
			},
		},
		Items: []models.RawCatalogEntry{
			{ID: 1, Name: "Wood", Tier: intPtr(1)},
		},
		Cargos: []models.RawCatalogEntry{},
	}
}

func pagePayload() *models.RawSettlementPayload {
	payload := inventoryPayload()
	payload.Claim = &models.RawClaim{EntityID: "settlement-1", Name: "Riverhold"}
	payload.Members = []models.RawMember{
		{EntityID: "m1", PlayerEntityID: "p1", UserName: "alice", InventoryPermission: true},
	}
	payload.MemberCount = 1
	payload.Citizens = []models.RawCitizen{
		{EntityID: "p1", UserName: "alice", Skills: map[string]int{"3": 10}, TotalSkills: 1, HighestLvl: 10, TotalLevel: 10},
	}
	payload.CitizenCount = 1
	payload.SkillNames = map[string]string{"3": "Forestry"}
	return payload
}

type fakeFetcher struct {
	json    *models.RawSettlementPayload
	jsonErr error
	page    *models.RawSettlementPayload
	pageErr error
}

func (f *fakeFetcher) FetchInventories(_ context.Context, _ string) (*models.RawSettlementPayload, error) {
	return f.json, f.jsonErr
}

func (f *fakeFetcher) FetchClaimPage(_ context.Context, _ string) (string, error) {
	if f.pageErr != nil {
		return "", f.pageErr
	}
	return "<html></html>", nil
}

// passthroughExtractor returns a canned payload instead of parsing HTML
type passthroughExtractor struct {
	payload *models.RawSettlementPayload
	err     error
}

func (e *passthroughExtractor) ExtractSettlement(_ context.Context, _ string) (*models.RawSettlementPayload, error) {
	return e.payload, e.err
}

type fakeInventoryStore struct {
	records []models.InventoryItemRecord
	calls   int
	err     error
}

func (s *fakeInventoryStore) ReplaceForSettlement(_ context.Context, _ string, records []models.InventoryItemRecord) error {
	s.calls++
	s.records = records
	return s.err
}

type fakeMemberStore struct {
	records []models.SettlementMemberRecord
	calls   int
	err     error
}

func (s *fakeMemberStore) ReplaceForSettlement(_ context.Context, _ string, records []models.SettlementMemberRecord) error {
	s.calls++
	s.records = records
	return s.err
}

type fakeSkillStore struct {
	records []models.SettlementSkillRecord
	calls   int
	err     error
}

func (s *fakeSkillStore) ReplaceForSettlement(_ context.Context, _ string, records []models.SettlementSkillRecord) error {
	s.calls++
	s.records = records
	return s.err
}

type fakeSnapshotWriter struct {
	snaps []*snapshot.Snapshot
	err   error
}

func (w *fakeSnapshotWriter) Write(_ context.Context, snap *snapshot.Snapshot) error {
	w.snaps = append(w.snaps, snap)
	return w.err
}

type fakeEmitter struct {
	synced []models.SyncResult
	failed []string
}

func (e *fakeEmitter) EmitSettlementSynced(_ context.Context, _ string, result *models.SyncResult) error {
	e.synced = append(e.synced, *result)
	return nil
}

func (e *fakeEmitter) EmitScrapeFailed(_ context.Context, _ string, settlementID string, _ error) error {
	e.failed = append(e.failed, settlementID)
	return nil
}

type testHarness struct {
	scraper   *Scraper
	inventory *fakeInventoryStore
	members   *fakeMemberStore
	skills    *fakeSkillStore
	snapshots *fakeSnapshotWriter
	emitter   *fakeEmitter
}

func newHarness(fetcher Fetcher, extractor Extractor) *testHarness {
	h := &testHarness{
		inventory: &fakeInventoryStore{},
		members:   &fakeMemberStore{},
		skills:    &fakeSkillStore{},
		snapshots: &fakeSnapshotWriter{},
		emitter:   &fakeEmitter{},
	}
	h.scraper = New(
		Config{SettlementID: "settlement-1", SnapshotEnabled: true},
		fetcher, extractor,
		h.inventory, h.members, h.skills,
		h.snapshots, h.emitter,
		testLogger(),
	)
	return h
}

func TestScraper_RunCycleMergesSources(t *testing.T) {
	fetcher := &fakeFetcher{json: inventoryPayload()}
	h := newHarness(fetcher, &passthroughExtractor{payload: pagePayload()})

	result, err := h.scraper.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.InventoryCount)
	assert.Equal(t, 1, result.MemberCount)
	assert.Equal(t, 1, result.SkillCount)
	assert.Equal(t, 1, h.inventory.calls)
	assert.Equal(t, 1, h.members.calls)
	assert.Equal(t, 1, h.skills.calls)
	require.Len(t, h.inventory.records, 1)
	assert.Equal(t, "Wood", h.inventory.records[0].ItemName)
	require.Len(t, h.members.records, 1)
	assert.Equal(t, "alice", h.members.records[0].PlayerName)
}

func TestScraper_DegradedWhenPageFails(t *testing.T) {
	fetcher := &fakeFetcher{json: inventoryPayload(), pageErr: errors.New("page down")}
	h := newHarness(fetcher, &passthroughExtractor{})

	result, err := h.scraper.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.InventoryCount)
	assert.Equal(t, 0, result.MemberCount)
	assert.Equal(t, 0, result.SkillCount)
	// All three stores still run so stale members are cleared out
	assert.Equal(t, 1, h.members.calls)
	assert.Equal(t, 1, h.skills.calls)
}

func TestScraper_PagePayloadWhenAPIFails(t *testing.T) {
	fetcher := &fakeFetcher{jsonErr: errors.New("api down")}
	h := newHarness(fetcher, &passthroughExtractor{payload: pagePayload()})

	result, err := h.scraper.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.InventoryCount)
	assert.Equal(t, 1, result.MemberCount)
}

func TestScraper_BothSourcesFailing(t *testing.T) {
	fetcher := &fakeFetcher{jsonErr: errors.New("api down"), pageErr: errors.New("page down")}
	h := newHarness(fetcher, &passthroughExtractor{})

	_, err := h.scraper.RunCycle(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, h.inventory.calls)
	assert.Equal(t, []string{"settlement-1"}, h.emitter.failed)
	assert.Empty(t, h.emitter.synced)
}

func TestScraper_ExtractorFindsNoPayload(t *testing.T) {
	// Extractor returning (nil, nil) means the page had no hydration data
	fetcher := &fakeFetcher{jsonErr: errors.New("api down")}
	h := newHarness(fetcher, &passthroughExtractor{payload: nil})

	_, err := h.scraper.RunCycle(context.Background())
	require.Error(t, err)
	assert.Empty(t, h.emitter.synced)
}

func TestScraper_PersistFailureEmitsScrapeFailed(t *testing.T) {
	fetcher := &fakeFetcher{json: inventoryPayload()}
	h := newHarness(fetcher, &passthroughExtractor{payload: pagePayload()})
	h.members.err = errors.New("db down")

	_, err := h.scraper.RunCycle(context.Background())
	require.Error(t, err)
	assert.Equal(t, []string{"settlement-1"}, h.emitter.failed)
	assert.Empty(t, h.emitter.synced)
}

func TestScraper_FingerprintChangeTracking(t *testing.T) {
	fetcher := &fakeFetcher{json: inventoryPayload()}
	h := newHarness(fetcher, &passthroughExtractor{payload: pagePayload()})

	first, err := h.scraper.RunCycle(context.Background())
	require.NoError(t, err)
	assert.True(t, first.Changed)
	assert.NotEmpty(t, first.Fingerprint)

	second, err := h.scraper.RunCycle(context.Background())
	require.NoError(t, err)
	assert.False(t, second.Changed)
	assert.Equal(t, first.Fingerprint, second.Fingerprint)

	// Both cycles persist even though the payload did not change
	assert.Equal(t, 2, h.inventory.calls)
}

func TestScraper_SnapshotFailureIsNotFatal(t *testing.T) {
	fetcher := &fakeFetcher{json: inventoryPayload()}
	h := newHarness(fetcher, &passthroughExtractor{payload: pagePayload()})
	h.snapshots.err = errors.New("disk full")

	result, err := h.scraper.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Len(t, h.emitter.synced, 1)
	assert.Equal(t, 1, result.InventoryCount)
}

func TestScraper_SnapshotDisabled(t *testing.T) {
	fetcher := &fakeFetcher{json: inventoryPayload()}
	h := newHarness(fetcher, &passthroughExtractor{payload: pagePayload()})
	h.scraper.config.SnapshotEnabled = false

	_, err := h.scraper.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Empty(t, h.snapshots.snaps)
}

func TestScraper_EmitsSyncedEvent(t *testing.T) {
	fetcher := &fakeFetcher{json: inventoryPayload()}
	h := newHarness(fetcher, &passthroughExtractor{payload: pagePayload()})

	_, err := h.scraper.RunCycle(context.Background())
	require.NoError(t, err)

	require.Len(t, h.emitter.synced, 1)
	assert.Equal(t, "settlement-1", h.emitter.synced[0].SettlementID)
	assert.Equal(t, 1, h.emitter.synced[0].InventoryCount)
}
