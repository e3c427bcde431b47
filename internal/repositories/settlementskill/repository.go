package settlementskill

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
	"id", "settlement_id", "player_entity_id", "player_name", "skill_id", "skill_name",
	"skill_level", "total_skills", "highest_level", "total_level", "total_xp",
	"created_at", "updated_at",
}

// Repository handles settlement skill persistence
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

// ReplaceForSettlement replaces all skill rows for one settlement in a
// single transaction.
func (r *Repository) ReplaceForSettlement(ctx context.Context, settlementID string, records []models.SettlementSkillRecord) error {
	ctx, span := tracing.StartSpan(ctx, "settlementskill.Repository.ReplaceForSettlement")
	defer span.End()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to begin skill replace transaction")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to replace settlement skills")
	}
	defer tx.Rollback()

	db := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	db.DeleteFrom("settlement_skills")
	db.Where(db.Equal("settlement_id", settlementID))

	query, args := db.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"settlement_id": settlementID}).Error("Failed to delete settlement skills")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to replace settlement skills")
	}

	if len(records) > 0 {
		sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
		sb.InsertInto("settlement_skills")
		sb.Cols(columns...)
		for _, rec := range records {
			sb.Values(rec.ID, rec.SettlementID, rec.PlayerEntityID, rec.PlayerName, rec.SkillID, rec.SkillName,
				rec.SkillLevel, rec.TotalSkills, rec.HighestLevel, rec.TotalLevel, rec.TotalXP,
				rec.CreatedAt, rec.UpdatedAt)
		}

		query, args = sb.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"settlement_id": settlementID, "count": len(records)}).Error("Failed to insert settlement skills")
			return httperror.NewHTTPError(http.StatusInternalServerError, "failed to replace settlement skills")
		}
	}

	if err := tx.Commit(); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to commit skill replace transaction")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to replace settlement skills")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"settlement_id": settlementID, "count": len(records)}).Debug("Replaced settlement skills")
	return nil
}

// ListBySettlement returns all skill rows for a settlement
func (r *Repository) ListBySettlement(ctx context.Context, settlementID string) ([]models.SettlementSkillRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "settlementskill.Repository.ListBySettlement")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("settlement_skills")
	sb.Where(sb.Equal("settlement_id", settlementID))
	sb.OrderBy("player_name", "skill_name")

	query, args := sb.Build()
	var records []models.SettlementSkillRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"settlement_id": settlementID}).Error("Failed to list settlement skills")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list settlement skills")
	}

	return records, nil
}

// ListByPlayer returns one player's skill rows for a settlement
func (r *Repository) ListByPlayer(ctx context.Context, settlementID string, playerEntityID string) ([]models.SettlementSkillRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "settlementskill.Repository.ListByPlayer")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("settlement_skills")
	sb.Where(
		sb.Equal("settlement_id", settlementID),
		sb.Equal("player_entity_id", playerEntityID),
	)
	sb.OrderBy("skill_name")

	query, args := sb.Build()
	var records []models.SettlementSkillRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"settlement_id": settlementID, "player_entity_id": playerEntityID}).Error("Failed to list player skills")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list player skills")
	}

	return records, nil
}
