// Package scraper orchestrates one sync cycle: fetch, extract,
// normalize, persist, snapshot, emit.
package scraper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	appctx "github.com/Ramsey-B/fern/pkg/context"
	"github.com/Ramsey-B/fern/pkg/fingerprint"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/normalize"
	"github.com/Ramsey-B/fern/pkg/snapshot"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// Fetcher provides the two upstream paths for the settlement payload
type Fetcher interface {
	FetchClaimPage(ctx context.Context, settlementID string) (string, error)
	FetchInventories(ctx context.Context, settlementID string) (*models.RawSettlementPayload, error)
}

// Extractor pulls the hydration payload out of a claim page
type Extractor interface {
	ExtractSettlement(ctx context.Context, html string) (*models.RawSettlementPayload, error)
}

// InventoryStore persists inventory records
type InventoryStore interface {
	ReplaceForSettlement(ctx context.Context, settlementID string, records []models.InventoryItemRecord) error
}

// MemberStore persists member records
type MemberStore interface {
	ReplaceForSettlement(ctx context.Context, settlementID string, records []models.SettlementMemberRecord) error
}

// SkillStore persists skill records
type SkillStore interface {
	ReplaceForSettlement(ctx context.Context, settlementID string, records []models.SettlementSkillRecord) error
}

// SnapshotWriter persists per-cycle snapshot files
type SnapshotWriter interface {
	Write(ctx context.Context, snap *snapshot.Snapshot) error
}

// Emitter publishes sync lifecycle events
type Emitter interface {
	EmitSettlementSynced(ctx context.Context, cycleID string, result *models.SyncResult) error
	EmitScrapeFailed(ctx context.Context, cycleID string, settlementID string, cause error) error
}

// Config configures the scraper
type Config struct {
	SettlementID    string
	SnapshotEnabled bool
}

// Scraper runs sync cycles for one settlement
type Scraper struct {
	config    Config
	fetcher   Fetcher
	extractor Extractor
	inventory InventoryStore
	members   MemberStore
	skills    SkillStore
	snapshots SnapshotWriter
	emitter   Emitter
	logger    ectologger.Logger

	mu              sync.Mutex
	lastFingerprint string

	now func() time.Time
}

// New creates a scraper. snapshots and emitter may be nil.
func New(config Config, fetcher Fetcher, extractor Extractor, inventory InventoryStore, members MemberStore, skills SkillStore, snapshots SnapshotWriter, emitter Emitter, logger ectologger.Logger) *Scraper {
	return &Scraper{
		config:    config,
		fetcher:   fetcher,
		extractor: extractor,
		inventory: inventory,
		members:   members,
		skills:    skills,
		snapshots: snapshots,
		emitter:   emitter,
		logger:    logger,
		now:       time.Now,
	}
}

// RunCycle executes one full sync cycle. Persistence always runs, even
// when the payload fingerprint is unchanged, because member presence
// drifts without the payload changing shape.
func (s *Scraper) RunCycle(ctx context.Context) (*models.SyncResult, error) {
	cycleID := uuid.New().String()
	ctx = appctx.SetCycleID(ctx, cycleID)
	ctx = appctx.SetSettlementID(ctx, s.config.SettlementID)

	ctx, span := tracing.StartSpan(ctx, "scraper.Scraper.RunCycle")
	defer span.End()

	start := s.now()

	payload, err := s.fetchPayload(ctx)
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("Sync cycle failed to fetch settlement payload")
		if s.emitter != nil {
			_ = s.emitter.EmitScrapeFailed(ctx, cycleID, s.config.SettlementID, err)
		}
		return nil, err
	}

	now := s.now().UTC()
	items := normalize.Inventory(s.config.SettlementID, payload, now)
	members := normalize.Members(s.config.SettlementID, payload.Members, now)
	skills := normalize.Skills(s.config.SettlementID, payload.Citizens, payload.SkillNames, now)

	fp, changed := s.updateFingerprint(payload)

	if err := s.persist(ctx, items, members, skills); err != nil {
		if s.emitter != nil {
			_ = s.emitter.EmitScrapeFailed(ctx, cycleID, s.config.SettlementID, err)
		}
		return nil, err
	}

	if s.config.SnapshotEnabled && s.snapshots != nil {
		snap := &snapshot.Snapshot{
			SettlementID: s.config.SettlementID,
			CapturedAt:   now,
			Items:        items,
			Members:      members,
			Skills:       skills,
		}
		if err := s.snapshots.Write(ctx, snap); err != nil {
			// Snapshots are best-effort; the cycle already persisted
			s.logger.WithContext(ctx).WithError(err).Warn("Failed to write settlement snapshot")
		}
	}

	result := &models.SyncResult{
		SettlementID:   s.config.SettlementID,
		InventoryCount: len(items),
		MemberCount:    len(members),
		SkillCount:     len(skills),
		Changed:        changed,
		Fingerprint:    fp,
		Duration:       s.now().Sub(start),
		CompletedAt:    s.now().UTC(),
	}

	if s.emitter != nil {
		if err := s.emitter.EmitSettlementSynced(ctx, cycleID, result); err != nil {
			s.logger.WithContext(ctx).WithError(err).Warn("Failed to emit sync event")
		}
	}

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"settlement_id": s.config.SettlementID,
		"items":         result.InventoryCount,
		"members":       result.MemberCount,
		"skills":        result.SkillCount,
		"changed":       result.Changed,
		"duration":      result.Duration,
	}).Info("Completed sync cycle")

	return result, nil
}

// fetchPayload fetches the JSON inventories endpoint and the HTML claim
// page concurrently. The JSON payload is preferred for inventory data;
// member and citizen data only exists in the page hydration scripts, so
// the two sources are merged. A working JSON path with a broken page
// yields a degraded inventory-only payload.
func (s *Scraper) fetchPayload(ctx context.Context) (*models.RawSettlementPayload, error) {
	ctx, span := tracing.StartSpan(ctx, "scraper.Scraper.fetchPayload")
	defer span.End()

	var (
		wg          sync.WaitGroup
		jsonPayload *models.RawSettlementPayload
		jsonErr     error
		pagePayload *models.RawSettlementPayload
		pageErr     error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		jsonPayload, jsonErr = s.fetcher.FetchInventories(ctx, s.config.SettlementID)
	}()
	go func() {
		defer wg.Done()
		var html string
		html, pageErr = s.fetcher.FetchClaimPage(ctx, s.config.SettlementID)
		if pageErr != nil {
			return
		}
		pagePayload, pageErr = s.extractor.ExtractSettlement(ctx, html)
		if pageErr == nil && pagePayload == nil {
			pageErr = fmt.Errorf("claim page contained no settlement payload")
		}
	}()
	wg.Wait()

	switch {
	case jsonErr == nil && pageErr == nil:
		// JSON wins for inventory data; the page supplies the rest
		jsonPayload.Claim = pagePayload.Claim
		jsonPayload.Members = pagePayload.Members
		jsonPayload.MemberCount = pagePayload.MemberCount
		jsonPayload.Citizens = pagePayload.Citizens
		jsonPayload.CitizenCount = pagePayload.CitizenCount
		jsonPayload.SkillNames = pagePayload.SkillNames
		return jsonPayload, nil
	case jsonErr == nil:
		s.logger.WithContext(ctx).WithError(pageErr).Warn("Claim page unavailable, syncing inventory only")
		return jsonPayload, nil
	case pageErr == nil:
		s.logger.WithContext(ctx).WithError(jsonErr).Debug("Inventories API unavailable, using page payload")
		return pagePayload, nil
	default:
		return nil, fmt.Errorf("both settlement sources failed: inventories: %v; claim page: %w", jsonErr, pageErr)
	}
}

func (s *Scraper) persist(ctx context.Context, items []models.InventoryItemRecord, members []models.SettlementMemberRecord, skills []models.SettlementSkillRecord) error {
	ctx, span := tracing.StartSpan(ctx, "scraper.Scraper.persist")
	defer span.End()

	var (
		wg                             sync.WaitGroup
		itemsErr, membersErr, skillsErr error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		itemsErr = s.inventory.ReplaceForSettlement(ctx, s.config.SettlementID, items)
	}()
	go func() {
		defer wg.Done()
		membersErr = s.members.ReplaceForSettlement(ctx, s.config.SettlementID, members)
	}()
	go func() {
		defer wg.Done()
		skillsErr = s.skills.ReplaceForSettlement(ctx, s.config.SettlementID, skills)
	}()
	wg.Wait()

	for _, err := range []error{itemsErr, membersErr, skillsErr} {
		if err != nil {
			s.logger.WithContext(ctx).WithError(err).Error("Sync cycle failed to persist records")
			return err
		}
	}

	return nil
}

// updateFingerprint hashes the raw payload and reports whether it
// differs from the previous cycle. The fingerprint is advisory only.
func (s *Scraper) updateFingerprint(payload *models.RawSettlementPayload) (string, bool) {
	fp, err := fingerprint.GenerateFromValue(payload)
	if err != nil {
		return "", true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	changed := fingerprint.HasChanged(s.lastFingerprint, fp)
	s.lastFingerprint = fp
	return fp, changed
}
