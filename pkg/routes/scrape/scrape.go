package scrape

import (
	"context"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	appctx "github.com/Ramsey-B/fern/pkg/context"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/redis"
)

// CooldownKeyPrefix namespaces the manual-trigger cooldown keys
const CooldownKeyPrefix = "scrape:cooldown:"

// Runner executes one sync cycle on demand
type Runner interface {
	RunCycle(ctx context.Context) (*models.SyncResult, error)
}

// Handler serves the manual scrape trigger
type Handler struct {
	runner   Runner
	redis    *redis.Client
	cooldown time.Duration
	logger   ectologger.Logger
}

// NewHandler creates a scrape handler. redisClient may be nil, which
// disables the cooldown.
func NewHandler(runner Runner, redisClient *redis.Client, cooldown time.Duration, logger ectologger.Logger) *Handler {
	return &Handler{
		runner:   runner,
		redis:    redisClient,
		cooldown: cooldown,
		logger:   logger,
	}
}

// Register registers scrape routes
func (h *Handler) Register(g *echo.Group) {
	g.POST("", h.Trigger)
}

// Trigger runs a sync cycle outside the poll schedule. Triggers are
// rate limited per settlement with a Redis cooldown key.
func (h *Handler) Trigger(c echo.Context) error {
	ctx := c.Request().Context()

	settlementID := appctx.GetSettlementID(ctx)
	if settlementID == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "settlement id is required")
	}

	if h.redis != nil && h.cooldown > 0 {
		key := CooldownKeyPrefix + settlementID
		ok, err := h.redis.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), h.cooldown)
		if err != nil {
			h.logger.WithContext(ctx).WithError(err).Warn("Cooldown check failed, allowing manual scrape")
		} else if !ok {
			return httperror.NewHTTPErrorf(http.StatusTooManyRequests, "scrape for settlement %s is on cooldown", settlementID)
		}
	}

	h.logger.WithContext(ctx).Infof("Manual scrape triggered for settlement %s", settlementID)

	result, err := h.runner.RunCycle(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}
