package inventory

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/fern/internal/repositories/inventoryitem"
	appctx "github.com/Ramsey-B/fern/pkg/context"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/packaging"
)

// Catalog provides the unified item list for package resolution
type Catalog interface {
	Items(ctx context.Context) ([]models.UnifiedItem, error)
}

// Handler serves inventory read routes
type Handler struct {
	repo    *inventoryitem.Repository
	catalog Catalog
	logger  ectologger.Logger
}

func NewHandler(repo *inventoryitem.Repository, catalog Catalog, logger ectologger.Logger) *Handler {
	return &Handler{
		repo:    repo,
		catalog: catalog,
		logger:  logger,
	}
}

// Register registers inventory routes
func (h *Handler) Register(g *echo.Group) {
	g.GET("", h.List)
	g.GET("/combined", h.Combined)
}

// List returns the raw per-slot inventory rows for the settlement
func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()

	settlementID := appctx.GetSettlementID(ctx)
	if settlementID == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "settlement id is required")
	}

	records, err := h.repo.ListBySettlement(ctx, settlementID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, records)
}

// Combined returns one aggregate row per base item, with packaged
// variants folded into canonical unit totals
func (h *Handler) Combined(c echo.Context) error {
	ctx := c.Request().Context()

	settlementID := appctx.GetSettlementID(ctx)
	if settlementID == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "settlement id is required")
	}

	records, err := h.repo.ListBySettlement(ctx, settlementID)
	if err != nil {
		return err
	}

	catalogItems, err := h.catalog.Items(ctx)
	if err != nil {
		// The aggregate still works without catalog seeding
		h.logger.WithContext(ctx).WithError(err).Warn("Catalog unavailable, combining without catalog rows")
		catalogItems = nil
	}

	combined := packaging.Combine(records, catalogItems, packaging.DefaultRules())
	return c.JSON(http.StatusOK, combined)
}
