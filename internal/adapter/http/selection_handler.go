package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"bonafide-backend/internal/adapter/middleware"
	ucCertificate "bonafide-backend/internal/usecase/certificate"
	ucSelection "bonafide-backend/internal/usecase/selection"
)

// SelectionHandler exposes the bulk selection of the caller. Every call names
// the view it applies to with the same query string as the listing.
type SelectionHandler struct {
	uc  *ucSelection.Usecase
	log *zap.Logger
}

func NewSelectionHandler(uc *ucSelection.Usecase, log *zap.Logger) *SelectionHandler {
	return &SelectionHandler{uc: uc, log: log}
}

func (h *SelectionHandler) view(c echo.Context) (ucCertificate.QueryInput, bool, error) {
	var q listQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return ucCertificate.QueryInput{}, false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid query"})
	}
	if err := c.Validate(&q); err != nil {
		return ucCertificate.QueryInput{}, false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	in, err := q.input()
	if err != nil {
		return in, false, respondError(c, h.log, err)
	}
	return in, true, nil
}

func (h *SelectionHandler) Get(c echo.Context) error {
	in, ok, err := h.view(c)
	if !ok {
		return err
	}
	st, err := h.uc.Get(c.Request().Context(), middleware.Actor(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *SelectionHandler) Toggle(c echo.Context) error {
	id, ok, err := requestIDParam(c)
	if !ok {
		return err
	}
	in, ok, err := h.view(c)
	if !ok {
		return err
	}
	st, err := h.uc.Toggle(c.Request().Context(), middleware.Actor(c), in, id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *SelectionHandler) TogglePage(c echo.Context) error {
	in, ok, err := h.view(c)
	if !ok {
		return err
	}
	st, err := h.uc.TogglePage(c.Request().Context(), middleware.Actor(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *SelectionHandler) Clear(c echo.Context) error {
	if err := h.uc.Clear(c.Request().Context(), middleware.Actor(c).ID); err != nil {
		return respondError(c, h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
