package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"bonafide-backend/internal/adapter/middleware"
	"bonafide-backend/internal/domain/profile"
	"bonafide-backend/internal/usecase/export"
	ucProfile "bonafide-backend/internal/usecase/profile"
)

type ProfileHandler struct {
	uc  *ucProfile.Usecase
	log *zap.Logger
	now func() time.Time
}

func NewProfileHandler(uc *ucProfile.Usecase, log *zap.Logger) *ProfileHandler {
	return &ProfileHandler{uc: uc, log: log, now: time.Now}
}

type updateSelfReq struct {
	FirstName *string `json:"first_name" validate:"omitempty,max=100"`
	LastName  *string `json:"last_name" validate:"omitempty,max=100"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url"`
}

type adminUpdateReq struct {
	Role           *string `json:"role" validate:"omitempty,role"`
	Department     *string `json:"department" validate:"omitempty,max=150"`
	RegisterNumber *string `json:"register_number" validate:"omitempty,max=50"`
	TutorID        *string `json:"tutor_id" validate:"omitempty,max=36"`
}

type userQuery struct {
	Role       string `query:"role" validate:"omitempty,role"`
	Department string `query:"department" validate:"max=150"`
	Search     string `query:"search" validate:"max=200"`
}

func (q userQuery) filter() profile.ListFilter {
	return profile.ListFilter{Role: profile.Role(q.Role), Department: q.Department, Search: strings.TrimSpace(q.Search)}
}

func (h *ProfileHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, middleware.Actor(c))
}

func (h *ProfileHandler) UpdateMe(c echo.Context) error {
	var req updateSelfReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	p, err := h.uc.UpdateSelf(c.Request().Context(), middleware.Actor(c), ucProfile.SelfUpdateInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProfileHandler) ListUsers(c echo.Context) error {
	var q userQuery
	if ok, err := bind(c, &q); !ok {
		return err
	}
	users, err := h.uc.List(c.Request().Context(), q.filter())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": users, "total": len(users)})
}

func (h *ProfileHandler) UpdateUser(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing id path param"})
	}
	var req adminUpdateReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	p, err := h.uc.AdminUpdate(c.Request().Context(), id, ucProfile.AdminUpdateInput{
		Role:           req.Role,
		Department:     req.Department,
		RegisterNumber: req.RegisterNumber,
		TutorID:        req.TutorID,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProfileHandler) DeleteUser(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing id path param"})
	}
	if err := h.uc.Delete(c.Request().Context(), middleware.Actor(c), id); err != nil {
		return respondError(c, h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ProfileHandler) ExportUsers(c echo.Context) error {
	var q userQuery
	if ok, err := bind(c, &q); !ok {
		return err
	}
	users, err := h.uc.List(c.Request().Context(), q.filter())
	if err != nil {
		return respondError(c, h.log, err)
	}
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	res.Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+export.Filename("users", h.now())+`"`)
	res.WriteHeader(http.StatusOK)
	if err := export.WriteUsers(res, users); err != nil {
		h.log.Error("csv export interrupted", zap.Error(err))
	}
	return nil
}
