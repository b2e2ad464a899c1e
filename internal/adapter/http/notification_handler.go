package http

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"bonafide-backend/internal/adapter/middleware"
	ucNotification "bonafide-backend/internal/usecase/notification"
)

type NotificationHandler struct {
	uc  *ucNotification.Usecase
	log *zap.Logger
}

func NewNotificationHandler(uc *ucNotification.Usecase, log *zap.Logger) *NotificationHandler {
	return &NotificationHandler{uc: uc, log: log}
}

func (h *NotificationHandler) List(c echo.Context) error {
	inbox, err := h.uc.List(c.Request().Context(), middleware.Actor(c).ID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, inbox)
}

func (h *NotificationHandler) MarkRead(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	if !reHex32.MatchString(id) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id path param"})
	}
	if err := h.uc.MarkRead(c.Request().Context(), middleware.Actor(c).ID, id); err != nil {
		return respondError(c, h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	n, err := h.uc.MarkAllRead(c.Request().Context(), middleware.Actor(c).ID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"updated": n})
}
