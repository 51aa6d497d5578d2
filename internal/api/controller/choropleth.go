package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mvisser/crimemap/internal/pkg/store"
)

type choroplethRequest struct {
	Year      int    `query:"year" validate:"required"`
	CrimeCode string `query:"crime_code" validate:"required"`
}

func (c *Controller) GetChoropleth(ctx echo.Context) error {
	var req choroplethRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}

	rows, err := c.store.GetChoropleth(ctx.Request().Context(), store.GetChoroplethOpts{
		Year:      req.Year,
		CrimeCode: req.CrimeCode,
	})
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, rows)
}
