package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (c *Controller) GetRegions(ctx echo.Context) error {
	regions, err := c.store.ListRegions(ctx.Request().Context())
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, regions)
}

func (c *Controller) GetCrimeTypes(ctx echo.Context) error {
	crimeTypes, err := c.store.ListCrimeTypes(ctx.Request().Context())
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, crimeTypes)
}

func (c *Controller) GetPeriods(ctx echo.Context) error {
	periods, err := c.store.ListPeriods(ctx.Request().Context())
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, periods)
}
