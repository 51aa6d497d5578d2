package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/mvisser/crimemap/internal/api"
	"github.com/mvisser/crimemap/internal/pkg/config"
	"github.com/mvisser/crimemap/internal/pkg/logger"
	"github.com/mvisser/crimemap/internal/pkg/store"
	"github.com/mvisser/crimemap/internal/pkg/store/xpgx"
	"github.com/mvisser/crimemap/internal/service/ingest"
	"github.com/mvisser/crimemap/internal/service/loader"
	"github.com/mvisser/crimemap/internal/service/normalize"
	"github.com/mvisser/crimemap/internal/service/pipeline"
	"github.com/mvisser/crimemap/internal/service/quality"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to yaml config (optional)")
	flag.Parse()

	ctx := context.Background()

	zl, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger.Init(zl)
	defer logger.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal(ctx, err)
	}

	pool, err := xpgx.NewPool(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal(ctx, fmt.Errorf("connect to store: %w", err))
	}
	defer pool.Close()

	st := store.NewStore(pool)
	if err := st.Migrate(ctx); err != nil {
		logger.Fatal(ctx, err)
	}

	raw := ingest.NewRawStore(cfg.Ingest.RawDir)
	policy := quality.Policy{
		MinYear:               cfg.Quality.MinYear,
		MaxYear:               cfg.Quality.MaxYear,
		MaxMeasureFailureRate: cfg.Quality.MaxMeasureFailureRate,
	}
	pipe := pipeline.NewService(
		ingest.NewService(
			raw,
			ingest.NewCBSClient(cfg.Ingest.CBSBaseURL, cfg.Ingest.CBSDataset, cfg.Ingest.PageLimit),
			ingest.NewGeoClient(cfg.Ingest.PDOKBaseURL, cfg.Ingest.PageLimit),
		),
		normalize.NewService(raw),
		quality.NewGate(policy),
		policy,
		loader.NewService(st),
	)

	svc, err := api.NewAPIService(st, pipe, cfg.API.CORSOrigins)
	if err != nil {
		logger.Fatal(ctx, err)
	}

	svc.Serve(cfg.API.Addr)
}
