package api

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/mvisser/crimemap/internal/api/controller"
	"github.com/mvisser/crimemap/internal/pkg/logger"
	"github.com/mvisser/crimemap/internal/pkg/store"
	"github.com/mvisser/crimemap/internal/service/pipeline"
)

type APIService struct {
	router *echo.Echo
}

func (svc *APIService) Serve(addr string) {
	logger.Fatal(context.Background(), svc.router.Start(addr))
}

func (svc *APIService) Shutdown(ctx context.Context) error {
	return svc.router.Shutdown(ctx)
}

func NewAPIService(st store.Store, pipelineSvc *pipeline.Service, corsOrigins []string) (*APIService, error) {
	svc := &APIService{router: echo.New()}

	svc.router.HideBanner = true
	svc.router.Logger.SetLevel(log.INFO)
	svc.router.Validator = NewValidator()
	svc.router.Binder = NewBinder()
	svc.router.Use(middleware.Logger())
	svc.router.HTTPErrorHandler = httpErrorHandler
	svc.router.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: corsOrigins,
		AllowMethods: []string{echo.GET, echo.POST},
		AllowHeaders: []string{"Content-Type", "Authorization"},
	}))

	api := svc.router.Group("/api/v1")
	cntrl := controller.NewController(st, pipelineSvc)

	regions := api.Group("/regions")
	regions.GET("/list", cntrl.GetRegions)

	api.GET("/crime-types/list", cntrl.GetCrimeTypes)
	api.GET("/periods/list", cntrl.GetPeriods)
	api.GET("/choropleth", cntrl.GetChoropleth)

	pipe := api.Group("/pipeline")
	pipe.POST("/run", cntrl.RunPipeline, svc.AdminMiddleware)

	return svc, nil
}
