package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mvisser/crimemap/internal/service/pipeline"
)

type runPipelineRequest struct {
	ForceFetch bool `query:"force_fetch"`
}

// RunPipeline triggers a full end-to-end rebuild. The report is returned even
// when a stage fails so the caller can see where the run stopped.
func (c *Controller) RunPipeline(ctx echo.Context) error {
	var req runPipelineRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}

	report, err := c.pipeline.Run(ctx.Request().Context(), pipeline.RunOpts{ForceFetch: req.ForceFetch})
	if err != nil {
		if report != nil {
			return ctx.JSON(http.StatusInternalServerError, report)
		}
		return err
	}

	return ctx.JSON(http.StatusOK, report)
}
