package store

import (
	"context"

	"github.com/mvisser/crimemap/internal/domain"
	"github.com/mvisser/crimemap/internal/domain/dto"
	"github.com/mvisser/crimemap/internal/pkg/store/xpgx"
)

type Pool = xpgx.Pool

type Store interface {
	Migrate(ctx context.Context) error
	LoadSnapshot(ctx context.Context, tables *dto.Tables) (*domain.LoadSummary, error)
	ListRegions(ctx context.Context) ([]*domain.Region, error)
	ListCrimeTypes(ctx context.Context) ([]*domain.CrimeType, error)
	ListPeriods(ctx context.Context) ([]*domain.Period, error)
	GetChoropleth(ctx context.Context, opts GetChoroplethOpts) ([]*domain.ChoroplethRow, error)
}

type store struct {
	pool *Pool
}

func NewStore(pool *Pool) Store {
	return &store{pool}
}
