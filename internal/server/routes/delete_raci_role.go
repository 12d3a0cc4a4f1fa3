package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rolescope/backend/internal/server/middleware"
	"github.com/rolescope/backend/pkg/logger"
)

func RevertRaciRoleHandler(c echo.Context) error {
	roleID := c.Param("role")
	if roleID == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Missing role id"})
	}

	s, err := currentSession(c)
	if s == nil {
		return err
	}

	if _, ok := s.RaciEffective(roleID); !ok {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "Role not found"})
	}

	s.RevertRole(roleID)

	app := c.(*middleware.AppContext).App
	if err := app.Store.DeleteOverrides(c.Request().Context(), s.ProjectID, roleID); err != nil {
		logger.Error("[Server] Failed to delete overrides", "project_id", s.ProjectID, "role_id", roleID, "err", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "Failed to delete overrides"})
	}

	entry, _ := s.RaciEffective(roleID)
	return c.JSON(http.StatusOK, entry)
}
