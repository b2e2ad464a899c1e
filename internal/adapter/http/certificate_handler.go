package http

import (
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"bonafide-backend/internal/adapter/middleware"
	"bonafide-backend/internal/domain/workflow"
	ucCertificate "bonafide-backend/internal/usecase/certificate"
	"bonafide-backend/internal/usecase/export"
)

type CertificateHandler struct {
	uc  *ucCertificate.Usecase
	log *zap.Logger
	now func() time.Time
}

func NewCertificateHandler(uc *ucCertificate.Usecase, log *zap.Logger) *CertificateHandler {
	return &CertificateHandler{uc: uc, log: log, now: time.Now}
}

type createReq struct {
	Reason string `json:"reason" validate:"required,max=2000"`
}

type reasonReq struct {
	Reason string `json:"reason" validate:"required,max=2000"`
}

type transitionReq struct {
	RejectionReason string `json:"rejection_reason" validate:"max=2000"`
}

type bulkReq struct {
	IDs             []string `json:"ids" validate:"max=500,dive,hex32"`
	Action          string   `json:"action" validate:"required,action"`
	RejectionReason string   `json:"rejection_reason" validate:"max=2000"`
}

type bulkFailure struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

type bulkResp struct {
	Succeeded []string      `json:"succeeded"`
	Failed    []bulkFailure `json:"failed"`
	Message   string        `json:"message"`
}

func (h *CertificateHandler) Create(c echo.Context) error {
	var req createReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	r, err := h.uc.Create(c.Request().Context(), middleware.Actor(c), ucCertificate.CreateInput{Reason: req.Reason})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *CertificateHandler) Get(c echo.Context) error {
	id, ok, err := requestIDParam(c)
	if !ok {
		return err
	}
	v, err := h.uc.Get(c.Request().Context(), middleware.Actor(c), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *CertificateHandler) EditReason(c echo.Context) error {
	id, ok, err := requestIDParam(c)
	if !ok {
		return err
	}
	var req reasonReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	if err := h.uc.EditReason(c.Request().Context(), middleware.Actor(c), id, req.Reason); err != nil {
		return respondError(c, h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CertificateHandler) Resubmit(c echo.Context) error {
	id, ok, err := requestIDParam(c)
	if !ok {
		return err
	}
	var req reasonReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	r, err := h.uc.Resubmit(c.Request().Context(), middleware.Actor(c), id, req.Reason)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *CertificateHandler) Cancel(c echo.Context) error {
	id, ok, err := requestIDParam(c)
	if !ok {
		return err
	}
	if err := h.uc.Cancel(c.Request().Context(), middleware.Actor(c), id); err != nil {
		return respondError(c, h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Transition returns the handler for one staff action.
func (h *CertificateHandler) Transition(action workflow.Action) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, ok, err := requestIDParam(c)
		if !ok {
			return err
		}
		var req transitionReq
		if ok, err := bind(c, &req); !ok {
			return err
		}
		r, err := h.uc.Transition(c.Request().Context(), middleware.Actor(c), ucCertificate.TransitionInput{
			RequestID: id,
			Action:    action,
			Text:      req.RejectionReason,
		})
		if err != nil {
			return respondError(c, h.log, err)
		}
		return c.JSON(http.StatusOK, r)
	}
}

// Bulk answers 200 whenever the batch was attempted; per-id outcomes are in the body.
func (h *CertificateHandler) Bulk(c echo.Context) error {
	var req bulkReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	res, err := h.uc.BulkApply(c.Request().Context(), middleware.Actor(c), ucCertificate.BulkInput{
		IDs:    req.IDs,
		Action: workflow.Action(req.Action),
		Text:   req.RejectionReason,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	resp := bulkResp{Succeeded: res.Succeeded, Failed: []bulkFailure{}, Message: res.Message()}
	if resp.Succeeded == nil {
		resp.Succeeded = []string{}
	}
	for id, ferr := range res.Failed {
		resp.Failed = append(resp.Failed, bulkFailure{ID: id, Error: userMessage(ferr)})
	}
	sort.Slice(resp.Failed, func(i, j int) bool { return resp.Failed[i].ID < resp.Failed[j].ID })
	return c.JSON(http.StatusOK, resp)
}

func (h *CertificateHandler) List(c echo.Context) error {
	var q listQuery
	if ok, err := bind(c, &q); !ok {
		return err
	}
	in, err := q.input()
	if err != nil {
		return respondError(c, h.log, err)
	}
	page, err := h.uc.Query(c.Request().Context(), middleware.Actor(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, page)
}

// Export streams every row of the current view as CSV, in view order.
func (h *CertificateHandler) Export(c echo.Context) error {
	var q listQuery
	if ok, err := bind(c, &q); !ok {
		return err
	}
	in, err := q.input()
	if err != nil {
		return respondError(c, h.log, err)
	}
	rows, err := h.uc.Export(c.Request().Context(), middleware.Actor(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	res.Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+export.Filename("certificates", h.now())+`"`)
	res.WriteHeader(http.StatusOK)
	if err := export.WriteRequests(res, rows); err != nil {
		h.log.Error("csv export interrupted", zap.Error(err))
	}
	return nil
}

// Verify is public: it only confirms completed certificates.
func (h *CertificateHandler) Verify(c echo.Context) error {
	id, ok, err := requestIDParam(c)
	if !ok {
		return err
	}
	v, err := h.uc.Verify(c.Request().Context(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, v)
}
