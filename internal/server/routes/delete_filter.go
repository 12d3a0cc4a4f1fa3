package routes

import (
	"github.com/labstack/echo/v4"
)

func ClearFilterHandler(c echo.Context) error {
	s, err := currentSession(c)
	if s == nil {
		return err
	}

	return respondFilterState(c, s, s.ClearFilter())
}
