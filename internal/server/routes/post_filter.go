package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rolescope/backend/pkg/common"
)

func ApplyFilterHandler(c echo.Context) error {
	type applyFilterData struct {
		NodeID   string `json:"node_id" validate:"required"`
		NodeType string `json:"node_type" validate:"required,oneof=role document"`
		Label    string `json:"label"`
	}

	data := new(applyFilterData)
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

	state := s.ApplyFilter(data.NodeID, common.NodeType(data.NodeType), data.Label)
	return respondFilterState(c, s, state)
}
