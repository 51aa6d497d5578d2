package store

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/mvisser/crimemap/internal/domain"
	"github.com/mvisser/crimemap/internal/pkg/logger"
)

// Read-only queries behind the dashboard. Geometry goes out as GeoJSON.

var (
	regionColumns    = []string{"id", "region_code", "region_name", "ST_AsGeoJSON(geometry) as geometry"}
	crimeTypeColumns = []string{"id", "crime_code", "crime_name"}
	periodColumns    = []string{"id", "period_code", "year"}
)

func (s *store) ListRegions(ctx context.Context) ([]*domain.Region, error) {
	query := builder().Select(regionColumns...).
		From(tableDimRegions).
		OrderBy("region_code")

	var selected []*domain.Region
	if err := s.pool.Selectx(ctx, &selected, query); err != nil {
		return nil, wrapErr(err)
	}

	return selected, nil
}

func (s *store) ListCrimeTypes(ctx context.Context) ([]*domain.CrimeType, error) {
	query := builder().Select(crimeTypeColumns...).
		From(tableDimCrimeTypes).
		OrderBy("crime_code")

	var selected []*domain.CrimeType
	if err := s.pool.Selectx(ctx, &selected, query); err != nil {
		return nil, wrapErr(err)
	}

	return selected, nil
}

func (s *store) ListPeriods(ctx context.Context) ([]*domain.Period, error) {
	query := builder().Select(periodColumns...).
		From(tableDimPeriods).
		OrderBy("year, period_code")

	var selected []*domain.Period
	if err := s.pool.Selectx(ctx, &selected, query); err != nil {
		return nil, wrapErr(err)
	}

	return selected, nil
}

type GetChoroplethOpts struct {
	Year      int
	CrimeCode string
}

func (s *store) GetChoropleth(ctx context.Context, opts GetChoroplethOpts) ([]*domain.ChoroplethRow, error) {
	query := builder().Select(
		"r.region_code",
		"r.region_name",
		"ST_AsGeoJSON(r.geometry) as geometry",
		"f.registered_crimes",
		"f.registered_crimes_per_1000").
		From(tableFactCrimes+" f").
		Join("dim_regions r on r.id = f.region_id").
		Join("dim_crime_types ct on ct.id = f.crime_type_id").
		Join("dim_periods p on p.id = f.period_id").
		Where(sq.Eq{"p.year": opts.Year, "ct.crime_code": opts.CrimeCode}).
		OrderBy("r.region_code")

	var selected []*domain.ChoroplethRow
	if err := s.pool.Selectx(ctx, &selected, query); err != nil {
		logger.Errorf(ctx, "GetChoropleth: %s", err.Error())
		return nil, wrapErr(err)
	}

	return selected, nil
}
