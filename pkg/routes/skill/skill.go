package skill

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/fern/internal/repositories/settlementskill"
	appctx "github.com/Ramsey-B/fern/pkg/context"
)

// Handler serves skill read routes
type Handler struct {
	repo *settlementskill.Repository
}

func NewHandler(repo *settlementskill.Repository) *Handler {
	return &Handler{repo: repo}
}

// Register registers skill routes
func (h *Handler) Register(g *echo.Group) {
	g.GET("", h.List)
	g.GET("/players/:playerEntityId", h.ListByPlayer)
}

// List returns all (player, skill) rows for the settlement
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

// ListByPlayer returns one player's skill rows
func (h *Handler) ListByPlayer(c echo.Context) error {
	ctx := c.Request().Context()

	settlementID := appctx.GetSettlementID(ctx)
	if settlementID == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "settlement id is required")
	}

	playerEntityID := c.Param("playerEntityId")
	if playerEntityID == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "player entity id is required")
	}

	records, err := h.repo.ListByPlayer(ctx, settlementID, playerEntityID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, records)
}
