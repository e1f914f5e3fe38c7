package api

import (
	"net/http"
	"strconv"

	models "TradePulse/internal/domain/models"
	"TradePulse/internal/service/ratelimit"
	"TradePulse/internal/usecase"
	xhttp "TradePulse/pkg/http"
	xlogger "TradePulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// DashboardHandler serves the chart-and-metrics API consumed by the browser
// front end.
type DashboardHandler struct {
	logger  *xlogger.Logger
	refresh *usecase.RefreshUseCase
	limiter *ratelimit.Limiter

	rlCapacity float64
	rlRefill   float64
}

func NewDashboardHandler(logger *xlogger.Logger, refresh *usecase.RefreshUseCase, limiter *ratelimit.Limiter, rlCapacity, rlRefill float64) *DashboardHandler {
	return &DashboardHandler{
		logger:     logger,
		refresh:    refresh,
		limiter:    limiter,
		rlCapacity: rlCapacity,
		rlRefill:   rlRefill,
	}
}

func (h *DashboardHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/data", h.Data)
	g.GET("/positions", h.Positions)
	g.POST("/positions/:id/close", h.ClosePosition)
	g.GET("/history", h.History)
	g.POST("/reset", h.Reset)
	g.GET("/logs", h.Logs)
	e.GET("/healthz", h.Health)
}

// Data returns the latest dashboard snapshot, computing a fresh cycle when
// none exists yet or ?refresh=true is passed. Refresh calls are rate limited
// per client so the UI polling cannot stampede the providers.
func (h *DashboardHandler) Data(c echo.Context) error {
	req := &models.DataRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	snapshot := h.refresh.Snapshot()
	force := c.QueryParam("refresh") == "true"
	if snapshot == nil || force {
		if !h.limiter.Allow("data:"+c.RealIP(), h.rlCapacity, h.rlRefill) {
			return xhttp.DataResponse(c, http.StatusTooManyRequests, "rate limited")
		}
		fresh, err := h.refresh.Refresh(c.Request().Context())
		if err != nil {
			h.logger.Error("refresh cycle error", xlogger.Error(err))
			return xhttp.AppErrorResponse(c, err)
		}
		snapshot = fresh
	}

	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=5")
	return xhttp.SuccessResponse(c, snapshot)
}

// Positions returns the open set with live P&L.
func (h *DashboardHandler) Positions(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.refresh.Positions())
}

// ClosePosition force-closes one open position at the current market price.
func (h *DashboardHandler) ClosePosition(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return xhttp.BadRequestResponse(c, "invalid position id")
	}
	trade, err := h.refresh.ClosePosition(c.Request().Context(), models.PositionID(id))
	if err != nil {
		h.logger.Warn("manual close failed", xlogger.Uint64("id", id), xlogger.Error(err))
		return xhttp.NotFoundResponse(c, err.Error())
	}
	return xhttp.SuccessResponse(c, trade)
}

// History returns the trailing closed trades.
func (h *DashboardHandler) History(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, h.refresh.HistoryView(req.Limit))
}

// Reset wipes the paper-trading session back to its initial balance.
func (h *DashboardHandler) Reset(c echo.Context) error {
	h.refresh.Reset()
	return xhttp.SuccessResponse(c, map[string]string{"status": "reset"})
}

// Logs returns recent aggregated warn/error log entries.
func (h *DashboardHandler) Logs(c echo.Context) error {
	limit := xhttp.ParseIntDefault(c.QueryParam("limit"), 100)
	if limit <= 0 {
		limit = 100
	}
	return xhttp.SuccessResponse(c, h.logger.Recent(limit))
}

// Health reports liveness.
func (h *DashboardHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
