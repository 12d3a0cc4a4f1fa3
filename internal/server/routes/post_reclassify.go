package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rolescope/backend/internal/server/middleware"
	"github.com/rolescope/backend/pkg/graph"
	"github.com/rolescope/backend/pkg/logger"
)

func ReclassifyRaciHandler(c echo.Context) error {
	type reclassifyData struct {
		RoleID string `param:"role" validate:"required"`
		From   string `json:"from" validate:"required,oneof=R A C I"`
		To     string `json:"to" validate:"required,oneof=R A C I,nefield=From"`
		// Value defaults to the role's full count in the from column.
		Value *int `json:"value" validate:"omitempty,min=0"`
	}

	data := new(reclassifyData)
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

	entry, ok := s.RaciEffective(data.RoleID)
	if !ok {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "Role not found"})
	}

	from := graph.RaciType(data.From)
	to := graph.RaciType(data.To)
	value := columnValue(entry, from)
	if data.Value != nil {
		value = *data.Value
	}

	changed := s.Reclassify(data.RoleID, from, to, value)

	app := c.(*middleware.AppContext).App
	if err := app.Store.SaveOverrides(c.Request().Context(), s.ProjectID, changed); err != nil {
		logger.Error("[Server] Failed to persist reclassification", "project_id", s.ProjectID, "role_id", data.RoleID, "err", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "Failed to persist reclassification"})
	}

	entry, _ = s.RaciEffective(data.RoleID)
	return c.JSON(http.StatusOK, entry)
}

func columnValue(e graph.RaciEntry, t graph.RaciType) int {
	switch t {
	case graph.RaciResponsible:
		return e.Responsible
	case graph.RaciAccountable:
		return e.Accountable
	case graph.RaciConsulted:
		return e.Consulted
	case graph.RaciInformed:
		return e.Informed
	}
	return 0
}
