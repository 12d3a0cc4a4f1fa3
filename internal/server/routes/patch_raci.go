package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rolescope/backend/internal/server/middleware"
	"github.com/rolescope/backend/pkg/graph"
	"github.com/rolescope/backend/pkg/logger"
)

func SetRaciOverrideHandler(c echo.Context) error {
	type setOverrideData struct {
		RoleID string `param:"role" validate:"required"`
		Type   string `json:"type" validate:"required,oneof=R A C I"`
		Value  *int   `json:"value" validate:"required,min=0"`
	}

	data := new(setOverrideData)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid request params"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid request params"})
	}

	s, err := currentSession(c)
	if s == nil {
		return err
	}

	if _, ok := s.RaciEffective(data.RoleID); !ok {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "Role not found"})
	}

	changed := s.SetOverride(data.RoleID, graph.RaciType(data.Type), *data.Value)

	app := c.(*middleware.AppContext).App
	if err := app.Store.SaveOverrides(c.Request().Context(), s.ProjectID, changed); err != nil {
		logger.Error("[Server] Failed to persist override", "project_id", s.ProjectID, "role_id", data.RoleID, "err", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "Failed to persist override"})
	}

	entry, _ := s.RaciEffective(data.RoleID)
	return c.JSON(http.StatusOK, entry)
}
