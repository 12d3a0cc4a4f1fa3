package server

import (
	"github.com/rolescope/backend/internal/server/middleware"
	"github.com/rolescope/backend/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api", middleware.AuthMiddleware)

	// Session lifecycle
	apiRoutes.POST("/projects/:id/sessions", routes.OpenSessionHandler, middleware.RequirePermission("session.create"))
	apiRoutes.DELETE("/sessions/:id", routes.CloseSessionHandler)

	// Graph views
	apiRoutes.GET("/sessions/:id/graph", routes.GetGraphHandler)
	apiRoutes.GET("/sessions/:id/hierarchy", routes.GetHierarchyHandler)

	// Drill-down filter
	apiRoutes.GET("/sessions/:id/filter", routes.GetFilterHandler)
	apiRoutes.POST("/sessions/:id/filter", routes.ApplyFilterHandler)
	apiRoutes.POST("/sessions/:id/filter/back", routes.FilterBackHandler)
	apiRoutes.POST("/sessions/:id/filter/forward", routes.FilterForwardHandler)
	apiRoutes.POST("/sessions/:id/filter/navigate", routes.FilterNavigateHandler)
	apiRoutes.DELETE("/sessions/:id/filter", routes.ClearFilterHandler)

	// RACI matrix
	apiRoutes.GET("/sessions/:id/raci", routes.GetRaciHandler)
	apiRoutes.PATCH("/sessions/:id/raci/:role", routes.SetRaciOverrideHandler, middleware.RequirePermission("raci.override"))
	apiRoutes.POST("/sessions/:id/raci/:role/reclassify", routes.ReclassifyRaciHandler, middleware.RequirePermission("raci.override"))
	apiRoutes.DELETE("/sessions/:id/raci/:role", routes.RevertRaciRoleHandler, middleware.RequirePermission("raci.revert"))
	apiRoutes.DELETE("/sessions/:id/raci", routes.RevertRaciHandler, middleware.RequirePermission("raci.revert"))
}
