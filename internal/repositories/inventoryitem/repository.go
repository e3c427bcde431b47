package inventoryitem

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

var columns = []string{
	"id", "settlement_id", "building_id", "building_name", "building_nickname",
	"building_type", "item_id", "item_name", "item_type", "quantity", "tier",
	"rarity", "icon_asset_name", "location", "slot_index", "created_at", "updated_at",
}

// Repository handles inventory item persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// ReplaceForSettlement replaces all inventory rows for one settlement in a
// single transaction. Rows belonging to other settlements are untouched.
func (r *Repository) ReplaceForSettlement(ctx context.Context, settlementID string, records []models.InventoryItemRecord) error {
	ctx, span := tracing.StartSpan(ctx, "inventoryitem.Repository.ReplaceForSettlement")
	defer span.End()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to begin inventory replace transaction")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to replace inventory items")
	}
	defer tx.Rollback()

	db := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	db.DeleteFrom("inventory_items")
	db.Where(db.Equal("settlement_id", settlementID))

	query, args := db.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"settlement_id": settlementID}).Error("Failed to delete inventory items")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to replace inventory items")
	}

	if len(records) > 0 {
		sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
		sb.InsertInto("inventory_items")
		sb.Cols(columns...)
		for _, rec := range records {
			sb.Values(rec.ID, rec.SettlementID, rec.BuildingID, rec.BuildingName, rec.BuildingNick,
				rec.BuildingType, rec.ItemID, rec.ItemName, rec.ItemType, rec.Quantity, rec.Tier,
				rec.Rarity, rec.IconAssetName, rec.Location, rec.SlotIndex, rec.CreatedAt, rec.UpdatedAt)
		}

		query, args = sb.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"settlement_id": settlementID, "count": len(records)}).Error("Failed to insert inventory items")
			return httperror.NewHTTPError(http.StatusInternalServerError, "failed to replace inventory items")
		}
	}

	if err := tx.Commit(); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to commit inventory replace transaction")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to replace inventory items")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"settlement_id": settlementID, "count": len(records)}).Debug("Replaced inventory items")
	return nil
}

// ListBySettlement returns all inventory rows for a settlement
func (r *Repository) ListBySettlement(ctx context.Context, settlementID string) ([]models.InventoryItemRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "inventoryitem.Repository.ListBySettlement")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("inventory_items")
	sb.Where(sb.Equal("settlement_id", settlementID))
	sb.OrderBy("location", "slot_index")

	query, args := sb.Build()
	var records []models.InventoryItemRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"settlement_id": settlementID}).Error("Failed to list inventory items")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list inventory items")
	}

	return records, nil
}
