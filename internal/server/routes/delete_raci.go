package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rolescope/backend/internal/server/middleware"
	"github.com/rolescope/backend/pkg/logger"
)

func RevertRaciHandler(c echo.Context) error {
	s, err := currentSession(c)
	if s == nil {
		return err
	}

	s.RevertAll()

	app := c.(*middleware.AppContext).App
	if err := app.Store.DeleteOverrides(c.Request().Context(), s.ProjectID); err != nil {
		logger.Error("[Server] Failed to delete overrides", "project_id", s.ProjectID, "err", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "Failed to delete overrides"})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Overrides reverted"})
}
