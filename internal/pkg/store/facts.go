package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/mvisser/crimemap/internal/domain"
	"github.com/mvisser/crimemap/internal/domain/dto"
	"github.com/mvisser/crimemap/internal/pkg/logger"
	"github.com/mvisser/crimemap/internal/pkg/store/xpgx"
)

// 5 parameters per fact row keeps a batch well under the wire limit.
const factBatchSize = 5000

// factKeySet collects the surrogate-key triples the current snapshot carries,
// as parallel arrays so the stale-row delete binds them as three parameters
// regardless of snapshot size.
type factKeySet struct {
	regionIDs    []int64
	crimeTypeIDs []int64
	periodIDs    []int64
}

func (s *factKeySet) add(regionID, crimeTypeID, periodID int64) {
	s.regionIDs = append(s.regionIDs, regionID)
	s.crimeTypeIDs = append(s.crimeTypeIDs, crimeTypeID)
	s.periodIDs = append(s.periodIDs, periodID)
}

// upsertFacts resolves each fact's natural keys against the dimension maps
// and upserts by the composite key. A fact with an unresolved key is skipped
// and counted, never aborts the batch; the quality gate should have removed
// those already.
func upsertFacts(
	ctx context.Context,
	q xpgx.Queryer,
	facts []dto.FactCandidate,
	regionIDs, crimeTypeIDs, periodIDs map[string]int64,
) (loaded, skipped int, kept *factKeySet, err error) {
	kept = &factKeySet{}

	for _, batch := range chunk(facts, factBatchSize) {
		if len(batch) == 0 {
			continue
		}

		query := builder().Insert(tableFactCrimes).
			Columns("region_id", "crime_type_id", "period_id", "registered_crimes", "registered_crimes_per_1000")

		rows := 0
		for _, f := range batch {
			regionID, okRegion := regionIDs[f.RegionCode]
			crimeTypeID, okCrime := crimeTypeIDs[f.CrimeCode]
			periodID, okPeriod := periodIDs[f.PeriodCode]
			if !okRegion || !okCrime || !okPeriod {
				logger.Warnf(ctx, "skipping fact with unresolved keys: region=%s crime=%s period=%s",
					f.RegionCode, f.CrimeCode, f.PeriodCode)
				skipped++
				continue
			}

			query = query.Values(regionID, crimeTypeID, periodID, f.RegisteredCrimes, f.RegisteredCrimesPer1000)
			kept.add(regionID, crimeTypeID, periodID)
			rows++
		}
		if rows == 0 {
			continue
		}

		query = query.Suffix(`
on conflict (region_id, crime_type_id, period_id)
do update set
	registered_crimes = excluded.registered_crimes,
	registered_crimes_per_1000 = excluded.registered_crimes_per_1000`)

		if _, err := q.Execx(ctx, query); err != nil {
			return 0, 0, nil, fmt.Errorf("upsert facts: %w", err)
		}
		loaded += rows
	}

	return loaded, skipped, kept, nil
}

// deleteStaleFacts removes facts whose key triple is absent from the current
// snapshot, so a rerun over shrunken raw data does not keep serving rows the
// source no longer publishes. Dimensions stay: surrogate keys survive reruns.
func deleteStaleFacts(ctx context.Context, q xpgx.Queryer, kept *factKeySet) (int, error) {
	query := builder().Delete(tableFactCrimes).
		Where(sq.Expr(`not exists (
select 1
from unnest(?::bigint[], ?::bigint[], ?::bigint[]) as kept(region_id, crime_type_id, period_id)
where kept.region_id = fact_crimes.region_id
  and kept.crime_type_id = fact_crimes.crime_type_id
  and kept.period_id = fact_crimes.period_id
)`, kept.regionIDs, kept.crimeTypeIDs, kept.periodIDs))

	tag, err := q.Execx(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("delete stale facts: %w", err)
	}

	return int(tag.RowsAffected()), nil
}

// loadSnapshot makes the star schema match the validated candidate tables:
// dimensions first, then fact upserts, then a sweep of facts the snapshot no
// longer contains.
func loadSnapshot(ctx context.Context, q xpgx.Queryer, tables *dto.Tables) (*domain.LoadSummary, error) {
	regionIDs, err := upsertRegions(ctx, q, tables.Regions)
	if err != nil {
		return nil, err
	}

	crimeTypeIDs, err := upsertCrimeTypes(ctx, q, tables.CrimeTypes)
	if err != nil {
		return nil, err
	}

	periodIDs, err := upsertPeriods(ctx, q, tables.Periods)
	if err != nil {
		return nil, err
	}

	loaded, skipped, kept, err := upsertFacts(ctx, q, tables.Facts, regionIDs, crimeTypeIDs, periodIDs)
	if err != nil {
		return nil, err
	}

	removed, err := deleteStaleFacts(ctx, q, kept)
	if err != nil {
		return nil, err
	}

	return &domain.LoadSummary{
		Regions:      len(regionIDs),
		CrimeTypes:   len(crimeTypeIDs),
		Periods:      len(periodIDs),
		Facts:        loaded,
		SkippedFacts: skipped,
		RemovedFacts: removed,
	}, nil
}

// LoadSnapshot runs loadSnapshot in one transaction: readers never observe a
// partial load, and the rerun over the same input leaves identical rows and
// surrogate keys.
func (s *store) LoadSnapshot(ctx context.Context, tables *dto.Tables) (*domain.LoadSummary, error) {
	var summary *domain.LoadSummary

	err := s.pool.InTx(ctx, func(q xpgx.Queryer) error {
		var err error
		summary, err = loadSnapshot(ctx, q, tables)
		return err
	})
	if err != nil {
		return nil, wrapErr(err)
	}

	return summary, nil
}
