package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rolescope/backend/internal/server/middleware"
	"github.com/rolescope/backend/internal/session"
)

type errorResponse struct {
	Error string `json:"error"`
}

// currentSession resolves the :id path param against the session manager.
// When it returns a nil session the response has already been written and
// the handler should return the accompanying error.
func currentSession(c echo.Context) (*session.Session, error) {
	id := c.Param("id")
	if id == "" {
		return nil, c.JSON(http.StatusBadRequest, errorResponse{Error: "Missing session id"})
	}

	s, ok := c.(*middleware.AppContext).App.Sessions.Get(id)
	if !ok {
		return nil, c.JSON(http.StatusNotFound, errorResponse{Error: "Session not found"})
	}
	return s, nil
}
