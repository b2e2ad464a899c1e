package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"bonafide-backend/internal/domain/certificate"
	"bonafide-backend/internal/domain/notification"
	"bonafide-backend/internal/domain/profile"
)

const (
	msgIllegal  = "request is no longer in a state that allows this action"
	msgConflict = "this request was already updated by someone else"
	msgNotFound = "not found"
	msgDenied   = "not allowed"
	msgInternal = "internal error"
)

// statusOf maps a usecase error to an HTTP status and a message safe to show.
func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, certificate.ErrValidation):
		return http.StatusUnprocessableEntity, "validation failed"
	case errors.Is(err, certificate.ErrIllegalTransition):
		return http.StatusConflict, msgIllegal
	case errors.Is(err, certificate.ErrConflict):
		return http.StatusConflict, msgConflict
	case errors.Is(err, certificate.ErrNotFound),
		errors.Is(err, profile.ErrNotFound),
		errors.Is(err, notification.ErrNotFound):
		return http.StatusNotFound, msgNotFound
	case errors.Is(err, certificate.ErrForbidden):
		return http.StatusForbidden, msgDenied
	}
	return http.StatusInternalServerError, msgInternal
}

// userMessage is the per-item message used in bulk results.
func userMessage(err error) string {
	var ve *certificate.ValidationError
	if errors.As(err, &ve) {
		return ve.Field + " " + ve.Message
	}
	_, msg := statusOf(err)
	return msg
}

func respondError(c echo.Context, log *zap.Logger, err error) error {
	code, msg := statusOf(err)
	resp := ErrorResponse{Error: msg}
	var ve *certificate.ValidationError
	if errors.As(err, &ve) {
		resp.Details = []FieldError{{Field: ve.Field, Message: ve.Message}}
	}
	if code == http.StatusInternalServerError {
		log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	}
	return c.JSON(code, resp)
}

// bind decodes and validates a request body or query into dst, writing the
// 400/422 response itself. ok is false when the handler should stop.
func bind(c echo.Context, dst any) (ok bool, err error) {
	if err := c.Bind(dst); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(dst); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	return true, nil
}
