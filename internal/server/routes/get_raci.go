package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rolescope/backend/pkg/graph"
)

func GetRaciHandler(c echo.Context) error {
	type getRaciResponse struct {
		ScanID  string            `json:"scan_id"`
		Entries []graph.RaciEntry `json:"entries"`
	}

	s, err := currentSession(c)
	if s == nil {
		return err
	}

	return c.JSON(http.StatusOK, getRaciResponse{
		ScanID:  s.ScanID(),
		Entries: s.RaciMatrix(),
	})
}
