package http

import (
	"github.com/labstack/echo/v4"

	"bonafide-backend/internal/adapter/middleware"
	"bonafide-backend/internal/domain/profile"
	"bonafide-backend/internal/domain/workflow"
)

type Routes struct {
	Health        *Handler
	Certificates  *CertificateHandler
	Profiles      *ProfileHandler
	Notifications *NotificationHandler
	Analytics     *AnalyticsHandler
	Selections    *SelectionHandler
	Stream        echo.HandlerFunc

	Auth        echo.MiddlewareFunc
	Idempotency echo.MiddlewareFunc
}

var staff = []profile.Role{profile.RoleTutor, profile.RoleHOD, profile.RoleAdmin}

// Register mounts every route on e.
func Register(e *echo.Echo, r Routes) {
	e.GET("/health", r.Health.Health)
	e.GET("/verify/:id", r.Certificates.Verify)

	api := e.Group("", r.Auth)
	if r.Stream != nil {
		api.GET("/ws/changes", r.Stream)
	}
	mut := api.Group("")
	if r.Idempotency != nil {
		mut.Use(r.Idempotency)
	}

	api.GET("/profile", r.Profiles.Me)
	mut.PATCH("/profile", r.Profiles.UpdateMe)

	api.GET("/certificates", r.Certificates.List)
	api.GET("/certificates/export", r.Certificates.Export)
	api.GET("/certificates/:id", r.Certificates.Get)

	student := mut.Group("", middleware.RequireRoles(profile.RoleStudent))
	student.POST("/certificates", r.Certificates.Create)
	student.PATCH("/certificates/:id", r.Certificates.EditReason)
	student.POST("/certificates/:id/resubmit", r.Certificates.Resubmit)
	student.DELETE("/certificates/:id", r.Certificates.Cancel)

	staffMut := mut.Group("", middleware.RequireRoles(staff...))
	staffMut.POST("/certificates/bulk", r.Certificates.Bulk)
	for _, a := range []workflow.Action{workflow.ActionApprove, workflow.ActionReject, workflow.ActionRevert} {
		staffMut.POST("/certificates/:id/"+string(a), r.Certificates.Transition(a))
	}

	sel := api.Group("/selection", middleware.RequireRoles(staff...))
	sel.GET("", r.Selections.Get)
	sel.PUT("/page", r.Selections.TogglePage)
	sel.PUT("/:id", r.Selections.Toggle)
	sel.DELETE("", r.Selections.Clear)

	api.GET("/notifications", r.Notifications.List)
	api.POST("/notifications/read-all", r.Notifications.MarkAllRead)
	api.POST("/notifications/:id/read", r.Notifications.MarkRead)

	api.GET("/analytics", r.Analytics.Dashboard)

	admin := api.Group("/admin", middleware.RequireRoles(profile.RoleAdmin))
	admin.GET("/users", r.Profiles.ListUsers)
	admin.GET("/users/export", r.Profiles.ExportUsers)
	adminMut := mut.Group("/admin", middleware.RequireRoles(profile.RoleAdmin))
	adminMut.PATCH("/users/:id", r.Profiles.UpdateUser)
	adminMut.DELETE("/users/:id", r.Profiles.DeleteUser)
}
