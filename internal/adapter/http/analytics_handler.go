package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"bonafide-backend/internal/adapter/middleware"
	ucAnalytics "bonafide-backend/internal/usecase/analytics"
)

type AnalyticsHandler struct {
	uc  *ucAnalytics.Usecase
	log *zap.Logger
}

func NewAnalyticsHandler(uc *ucAnalytics.Usecase, log *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{uc: uc, log: log}
}

func (h *AnalyticsHandler) Dashboard(c echo.Context) error {
	from, to, err := parseRange(c.QueryParam("from"), c.QueryParam("to"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	d, err := h.uc.Dashboard(c.Request().Context(), middleware.Actor(c), from, to)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, d)
}
