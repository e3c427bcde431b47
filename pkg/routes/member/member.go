package member

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/fern/internal/repositories/settlementmember"
	appctx "github.com/Ramsey-B/fern/pkg/context"
)

// Handler serves member read routes
type Handler struct {
	repo *settlementmember.Repository
}

func NewHandler(repo *settlementmember.Repository) *Handler {
	return &Handler{repo: repo}
}

// Register registers member routes
func (h *Handler) Register(g *echo.Group) {
	g.GET("", h.List)
	g.GET("/online", h.ListOnline)
}

// List returns all members for the settlement
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

// ListOnline returns members flagged online as of the last sync cycle
func (h *Handler) ListOnline(c echo.Context) error {
	ctx := c.Request().Context()

	settlementID := appctx.GetSettlementID(ctx)
	if settlementID == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "settlement id is required")
	}

	records, err := h.repo.ListOnline(ctx, settlementID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, records)
}
