package routes

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rolescope/backend/internal/server/middleware"
	"github.com/rolescope/backend/pkg/logger"
	"github.com/rolescope/backend/pkg/store"
)

func OpenSessionHandler(c echo.Context) error {
	type openSessionData struct {
		ProjectID int64 `param:"id" validate:"required,numeric"`
	}

	type openSessionResponse struct {
		SessionID string `json:"session_id"`
		ProjectID int64  `json:"project_id"`
		ScanID    string `json:"scan_id"`
		NodeCount int    `json:"node_count"`
		EdgeCount int    `json:"edge_count"`
	}

	data := new(openSessionData)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid request params"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid request params"})
	}

	app := c.(*middleware.AppContext).App
	s, err := app.Sessions.Open(c.Request().Context(), data.ProjectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, errorResponse{Error: "Project has no scan snapshot yet"})
		}
		logger.Error("[Server] Failed to open session", "project_id", data.ProjectID, "err", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
	}

	g := s.Graph()
	return c.JSON(http.StatusCreated, openSessionResponse{
		SessionID: s.ID,
		ProjectID: s.ProjectID,
		ScanID:    s.ScanID(),
		NodeCount: len(g.Nodes),
		EdgeCount: len(g.Edges),
	})
}
