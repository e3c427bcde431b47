package settlementmember

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
	"id", "settlement_id", "player_entity_id", "player_name",
	"storage_permission", "build_permission", "officer_permission", "co_owner_permission",
	"role", "is_online", "last_login_at", "created_at", "updated_at",
}

// Repository handles settlement member persistence
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

// ReplaceForSettlement replaces all member rows for one settlement in a
// single transaction.
func (r *Repository) ReplaceForSettlement(ctx context.Context, settlementID string, records []models.SettlementMemberRecord) error {
	ctx, span := tracing.StartSpan(ctx, "settlementmember.Repository.ReplaceForSettlement")
	defer span.End()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to begin member replace transaction")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to replace settlement members")
	}
	defer tx.Rollback()

	db := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	db.DeleteFrom("settlement_members")
	db.Where(db.Equal("settlement_id", settlementID))

	query, args := db.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"settlement_id": settlementID}).Error("Failed to delete settlement members")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to replace settlement members")
	}

	if len(records) > 0 {
		sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
		sb.InsertInto("settlement_members")
		sb.Cols(columns...)
		for _, rec := range records {
			sb.Values(rec.ID, rec.SettlementID, rec.PlayerEntityID, rec.PlayerName,
				rec.StoragePermission, rec.BuildPermission, rec.OfficerPermission, rec.CoOwnerPermission,
				rec.Role, rec.IsOnline, rec.LastLoginAt, rec.CreatedAt, rec.UpdatedAt)
		}

		query, args = sb.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"settlement_id": settlementID, "count": len(records)}).Error("Failed to insert settlement members")
			return httperror.NewHTTPError(http.StatusInternalServerError, "failed to replace settlement members")
		}
	}

	if err := tx.Commit(); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to commit member replace transaction")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to replace settlement members")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"settlement_id": settlementID, "count": len(records)}).Debug("Replaced settlement members")
	return nil
}

// ListBySettlement returns all member rows for a settlement
func (r *Repository) ListBySettlement(ctx context.Context, settlementID string) ([]models.SettlementMemberRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "settlementmember.Repository.ListBySettlement")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("settlement_members")
	sb.Where(sb.Equal("settlement_id", settlementID))
	sb.OrderBy("player_name")

	query, args := sb.Build()
	var records []models.SettlementMemberRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"settlement_id": settlementID}).Error("Failed to list settlement members")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list settlement members")
	}

	return records, nil
}

// ListOnline returns members currently flagged online for a settlement
func (r *Repository) ListOnline(ctx context.Context, settlementID string) ([]models.SettlementMemberRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "settlementmember.Repository.ListOnline")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("settlement_members")
	sb.Where(
		sb.Equal("settlement_id", settlementID),
		sb.Equal("is_online", true),
	)
	sb.OrderBy("player_name")

	query, args := sb.Build()
	var records []models.SettlementMemberRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"settlement_id": settlementID}).Error("Failed to list online settlement members")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list online settlement members")
	}

	return records, nil
}
