package ingest

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/mvisser/crimemap/internal/pkg/logger"
)

// Service populates the raw landing store from the two public sources. The
// sources are independent, so they are fetched concurrently; everything after
// this stage is strictly sequential.
type Service struct {
	raw *RawStore
	cbs *CBSClient
	geo *GeoClient
}

func NewService(raw *RawStore, cbs *CBSClient, geo *GeoClient) *Service {
	return &Service{raw: raw, cbs: cbs, geo: geo}
}

func (s *Service) RawPresent() bool {
	return s.raw.Present()
}

func (s *Service) Run(ctx context.Context) error {
	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		return s.ingestCrime(egCtx)
	})
	eg.Go(func() error {
		return s.ingestBoundaries(egCtx)
	})

	if err := eg.Wait(); err != nil {
		return fmt.Errorf("ingest: %w", err)
	}

	return nil
}

func (s *Service) ingestCrime(ctx context.Context) error {
	records, err := s.cbs.FetchTypedDataSet(ctx)
	if err != nil {
		return fmt.Errorf("cbs.FetchTypedDataSet: %w", err)
	}

	regionMeta, err := s.cbs.FetchMeta(ctx, "RegioS")
	if err != nil {
		return fmt.Errorf("cbs.FetchMeta RegioS: %w", err)
	}

	crimeMeta, err := s.cbs.FetchMeta(ctx, "SoortMisdrijf")
	if err != nil {
		return fmt.Errorf("cbs.FetchMeta SoortMisdrijf: %w", err)
	}

	if err := s.raw.WriteJSON(s.raw.CrimePath(), records); err != nil {
		return err
	}
	if err := s.raw.WriteJSON(s.raw.RegionMetaPath(), regionMeta); err != nil {
		return err
	}
	if err := s.raw.WriteJSON(s.raw.CrimeMetaPath(), crimeMeta); err != nil {
		return err
	}

	logger.Infof(ctx, "landed %d crime rows, %d region meta, %d crime meta",
		len(records), len(regionMeta), len(crimeMeta))
	return nil
}

func (s *Service) ingestBoundaries(ctx context.Context) error {
	collection, err := s.geo.FetchMunicipalities(ctx)
	if err != nil {
		return fmt.Errorf("geo.FetchMunicipalities: %w", err)
	}

	if err := s.raw.WriteJSON(s.raw.BoundariesPath(), collection); err != nil {
		return err
	}

	logger.Infof(ctx, "landed %d municipality boundaries", len(collection.Features))
	return nil
}
