package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/mvisser/crimemap/internal/domain/dto"
	"github.com/mvisser/crimemap/internal/pkg/store/xpgx"
)

const dimBatchSize = 1000

// dimRow is the (surrogate key, natural key) pair a dimension upsert returns.
type dimRow struct {
	ID   int64  `db:"id"`
	Code string `db:"code"`
}

func collectDimRows(ctx context.Context, q xpgx.Queryer, query xpgx.Sqlizer, into map[string]int64) error {
	var rows []dimRow
	if err := q.Selectx(ctx, &rows, query); err != nil {
		return err
	}
	for _, r := range rows {
		into[r.Code] = r.ID
	}
	return nil
}

// regionUpsertQuery builds one multi-row upsert batch. Absent geometry binds
// null and never clobbers a boundary loaded earlier.
func regionUpsertQuery(batch []dto.RegionCandidate) xpgx.Sqlizer {
	query := builder().Insert(tableDimRegions).
		Columns("region_code", "region_name", "geometry")
	for _, r := range batch {
		var geom interface{}
		if r.Geometry != nil {
			geom = sq.Expr("ST_Multi(ST_GeomFromGeoJSON(?))", *r.Geometry)
		}
		query = query.Values(r.RegionCode, r.RegionName, geom)
	}
	return query.Suffix(`
on conflict (region_code)
do update set
	region_name = excluded.region_name,
	geometry = coalesce(excluded.geometry, dim_regions.geometry)
returning id, region_code as code`)
}

// upsertRegions inserts or updates regions by region_code and returns the
// code→id map for fact linking. Existing rows keep their surrogate key.
func upsertRegions(ctx context.Context, q xpgx.Queryer, regions []dto.RegionCandidate) (map[string]int64, error) {
	ids := make(map[string]int64, len(regions))

	for _, batch := range chunk(regions, dimBatchSize) {
		if len(batch) == 0 {
			continue
		}

		if err := collectDimRows(ctx, q, regionUpsertQuery(batch), ids); err != nil {
			return nil, fmt.Errorf("upsert regions: %w", err)
		}
	}

	return ids, nil
}

func upsertCrimeTypes(ctx context.Context, q xpgx.Queryer, crimeTypes []dto.CrimeTypeCandidate) (map[string]int64, error) {
	ids := make(map[string]int64, len(crimeTypes))

	for _, batch := range chunk(crimeTypes, dimBatchSize) {
		if len(batch) == 0 {
			continue
		}

		query := builder().Insert(tableDimCrimeTypes).
			Columns("crime_code", "crime_name")
		for _, ct := range batch {
			query = query.Values(ct.CrimeCode, ct.CrimeName)
		}
		query = query.Suffix(`
on conflict (crime_code)
do update set crime_name = excluded.crime_name
returning id, crime_code as code`)

		if err := collectDimRows(ctx, q, query, ids); err != nil {
			return nil, fmt.Errorf("upsert crime types: %w", err)
		}
	}

	return ids, nil
}

func upsertPeriods(ctx context.Context, q xpgx.Queryer, periods []dto.PeriodCandidate) (map[string]int64, error) {
	ids := make(map[string]int64, len(periods))

	for _, batch := range chunk(periods, dimBatchSize) {
		if len(batch) == 0 {
			continue
		}

		query := builder().Insert(tableDimPeriods).
			Columns("period_code", "year")
		for _, p := range batch {
			query = query.Values(p.PeriodCode, p.Year)
		}
		query = query.Suffix(`
on conflict (period_code)
do update set year = excluded.year
returning id, period_code as code`)

		if err := collectDimRows(ctx, q, query, ids); err != nil {
			return nil, fmt.Errorf("upsert periods: %w", err)
		}
	}

	return ids, nil
}
