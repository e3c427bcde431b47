// Package events handles event emission for settlement sync lifecycle changes
package events

import (
	"context"
	"encoding/json"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/pkg/kafka"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// SchemaVersion is the current event schema version
const SchemaVersion = "1.0"

// Emitter handles event emission for Fern. A nil producer disables
// emission entirely so the poller works without a broker.
type Emitter struct {
	producer *kafka.Producer
	logger   ectologger.Logger
}

// NewEmitter creates a new event emitter
func NewEmitter(producer *kafka.Producer, logger ectologger.Logger) *Emitter {
	return &Emitter{
		producer: producer,
		logger:   logger,
	}
}

// EmitSettlementSynced emits an event after a sync cycle persists its records
func (e *Emitter) EmitSettlementSynced(ctx context.Context, cycleID string, result *models.SyncResult) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitSettlementSynced")
	defer span.End()

	if e.producer == nil {
		return nil
	}

	data := map[string]any{
		"schema_version": SchemaVersion,
		"item_count":     result.InventoryCount,
		"member_count":   result.MemberCount,
		"skill_count":    result.SkillCount,
		"changed":        result.Changed,
		"fingerprint":    result.Fingerprint,
		"duration_ms":    result.Duration.Milliseconds(),
	}
	dataJSON, _ := json.Marshal(data)

	event := &kafka.SettlementEvent{
		EventType:    "settlement.synced",
		SettlementID: result.SettlementID,
		CycleID:      cycleID,
		Data:         dataJSON,
	}

	if err := e.producer.PublishSettlementEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit settlement.synced event")
		return err
	}

	return nil
}

// EmitScrapeFailed emits an event when a sync cycle fails before persisting
func (e *Emitter) EmitScrapeFailed(ctx context.Context, cycleID string, settlementID string, cause error) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitScrapeFailed")
	defer span.End()

	if e.producer == nil {
		return nil
	}

	data := map[string]any{
		"schema_version": SchemaVersion,
		"error":          cause.Error(),
	}
	dataJSON, _ := json.Marshal(data)

	event := &kafka.SettlementEvent{
		EventType:    "settlement.scrape_failed",
		SettlementID: settlementID,
		CycleID:      cycleID,
		Data:         dataJSON,
	}

	if err := e.producer.PublishSettlementEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit settlement.scrape_failed event")
		return err
	}

	return nil
}
