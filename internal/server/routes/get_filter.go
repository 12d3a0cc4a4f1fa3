package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rolescope/backend/internal/session"
	"github.com/rolescope/backend/pkg/common"
)

type filterResponse struct {
	session.FilterState
	Graph *common.Graph `json:"graph,omitempty"`
}

// respondFilterState serializes the drill-down state, attaching the
// visible subgraph whenever a filter is active.
func respondFilterState(c echo.Context, s *session.Session, state session.FilterState) error {
	resp := filterResponse{FilterState: state}
	if state.Filtered {
		sub := s.VisibleSubgraph()
		resp.Graph = &sub
	}
	return c.JSON(http.StatusOK, resp)
}

func GetFilterHandler(c echo.Context) error {
	s, err := currentSession(c)
	if s == nil {
		return err
	}

	return respondFilterState(c, s, s.FilterState())
}
