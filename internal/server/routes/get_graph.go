package routes

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/rolescope/backend/pkg/common"
	"github.com/rolescope/backend/pkg/graph"
)

func GetGraphHandler(c echo.Context) error {
	type getGraphResponse struct {
		ScanID    string       `json:"scan_id"`
		MinDegree int          `json:"min_degree"`
		Graph     common.Graph `json:"graph"`
	}

	s, err := currentSession(c)
	if s == nil {
		return err
	}

	minDegree := graph.DefaultMinDegree
	if raw := c.QueryParam("min_degree"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid min_degree"})
		}
		minDegree = parsed
	}

	return c.JSON(http.StatusOK, getGraphResponse{
		ScanID:    s.ScanID(),
		MinDegree: minDegree,
		Graph:     s.PrunedGraph(minDegree),
	})
}
