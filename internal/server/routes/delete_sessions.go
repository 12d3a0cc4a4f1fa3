package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rolescope/backend/internal/server/middleware"
)

func CloseSessionHandler(c echo.Context) error {
	s, err := currentSession(c)
	if s == nil {
		return err
	}

	c.(*middleware.AppContext).App.Sessions.Close(s.ID)
	return c.JSON(http.StatusOK, map[string]string{"message": "Session closed"})
}
