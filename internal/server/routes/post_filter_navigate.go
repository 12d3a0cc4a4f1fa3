package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func FilterNavigateHandler(c echo.Context) error {
	type navigateData struct {
		Index *int `json:"index" validate:"required,min=0"`
	}

	data := new(navigateData)
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

	return respondFilterState(c, s, s.NavigateTo(*data.Index))
}
