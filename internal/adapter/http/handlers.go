package http

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// HealthCheck checks one dependency.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type Handler struct {
	checks []HealthCheck
}

func NewHandler(checks ...HealthCheck) *Handler { return &Handler{checks: checks} }

func (h *Handler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status, code := "ok", http.StatusOK
	components := map[string]string{}
	for _, hc := range h.checks {
		if err := hc.Check(ctx); err != nil {
			components[hc.Name] = err.Error()
			status, code = "degraded", http.StatusServiceUnavailable
			continue
		}
		components[hc.Name] = "ok"
	}
	body := map[string]any{
		"status": status,
		"time":   time.Now().UTC().Format(time.RFC3339Nano),
	}
	if len(components) > 0 {
		body["components"] = components
	}
	return c.JSON(code, body)
}
