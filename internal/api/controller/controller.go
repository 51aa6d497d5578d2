package controller

import (
	"context"

	"github.com/mvisser/crimemap/internal/pkg/store"
	"github.com/mvisser/crimemap/internal/service/pipeline"
)

type PipelineRunner interface {
	Run(ctx context.Context, opts pipeline.RunOpts) (*pipeline.Report, error)
}

type Controller struct {
	store    store.Store
	pipeline PipelineRunner
}

func NewController(store store.Store, pipeline PipelineRunner) *Controller {
	return &Controller{store: store, pipeline: pipeline}
}
