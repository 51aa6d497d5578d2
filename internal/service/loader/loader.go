package loader

import (
	"context"
	"fmt"

	"github.com/mvisser/crimemap/internal/domain"
	"github.com/mvisser/crimemap/internal/domain/dto"
	"github.com/mvisser/crimemap/internal/pkg/constants"
	"github.com/mvisser/crimemap/internal/pkg/logger"
	"github.com/mvisser/crimemap/internal/pkg/store"
)

// Service loads validated candidate tables into the star schema. One call is
// one transaction: the store either matches the input afterwards or is left
// untouched.
type Service struct {
	store store.Store
}

func NewService(store store.Store) *Service {
	return &Service{store: store}
}

func (s *Service) Load(ctx context.Context, tables *dto.Tables) (*domain.LoadSummary, error) {
	summary, err := s.store.LoadSnapshot(ctx, tables)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", constants.ErrStoreFailure, err)
	}

	logger.Infof(ctx, "loaded %d regions, %d crime types, %d periods, %d facts (%d skipped, %d stale removed)",
		summary.Regions, summary.CrimeTypes, summary.Periods, summary.Facts, summary.SkippedFacts, summary.RemovedFacts)

	return summary, nil
}
