package quality

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvisser/crimemap/internal/domain/dto"
	"github.com/mvisser/crimemap/internal/pkg/constants"
)

func fptr(f float64) *float64 {
	return &f
}

func validTables() *dto.Tables {
	return &dto.Tables{
		Regions: []dto.RegionCandidate{
			{RegionCode: "GM0363", RegionName: "Amsterdam"},
			{RegionCode: "GM0599", RegionName: "Rotterdam"},
		},
		CrimeTypes: []dto.CrimeTypeCandidate{
			{CrimeCode: "0.0.0", CrimeName: "Misdrijven, totaal"},
		},
		Periods: []dto.PeriodCandidate{
			{PeriodCode: "2023JJ00", Year: 2023},
		},
		Facts: []dto.FactCandidate{
			{RegionCode: "GM0363", CrimeCode: "0.0.0", PeriodCode: "2023JJ00", RegisteredCrimes: fptr(120), RegisteredCrimesPer1000: fptr(1.4)},
			{RegionCode: "GM0599", CrimeCode: "0.0.0", PeriodCode: "2023JJ00", RegisteredCrimes: nil, RegisteredCrimesPer1000: nil},
		},
	}
}

func defaultPolicy() Policy {
	return Policy{MinYear: 2010, MaxYear: 2030, MaxMeasureFailureRate: 0.5}
}

func TestGatePassesCleanTables(t *testing.T) {
	gate := NewGate(defaultPolicy())

	filtered, report := gate.Run(context.Background(), validTables())
	require.NoError(t, defaultPolicy().Verdict(report))

	assert.Len(t, filtered.Facts, 2)
	assert.Equal(t, 0, report.RowsFailed)
	assert.Equal(t, report.RowsChecked, report.RowsPassed)
	assert.Empty(t, report.FailuresByCheck)
	assert.Equal(t, 0, report.ExcludedFacts)
}

func TestGateDropsAndCountsOrphans(t *testing.T) {
	tables := validTables()
	tables.Facts = append(tables.Facts, dto.FactCandidate{
		RegionCode: "GM9999", CrimeCode: "0.0.0", PeriodCode: "2023JJ00", RegisteredCrimes: fptr(5),
	})

	gate := NewGate(defaultPolicy())
	filtered, report := gate.Run(context.Background(), tables)
	require.NoError(t, defaultPolicy().Verdict(report), "orphans are dropped, not blocking")

	assert.Len(t, filtered.Facts, 2)
	assert.Equal(t, 1, report.DroppedOrphans)
	assert.Equal(t, 1, report.FailuresByCheck[CheckReferential])
	assert.Equal(t, 1, report.ExcludedFacts)
	for _, f := range filtered.Facts {
		assert.NotEqual(t, "GM9999", f.RegionCode)
	}
}

func TestGateExcludesNegativeMeasuresUnderThreshold(t *testing.T) {
	tables := validTables()
	tables.Facts = append(tables.Facts, dto.FactCandidate{
		RegionCode: "GM0363", CrimeCode: "0.0.0", PeriodCode: "2023JJ00", RegisteredCrimes: fptr(-1),
	})

	gate := NewGate(defaultPolicy())
	filtered, report := gate.Run(context.Background(), tables)
	require.NoError(t, defaultPolicy().Verdict(report))

	assert.Len(t, filtered.Facts, 2)
	assert.Equal(t, 1, report.FailuresByCheck[CheckMeasureValid])
	for _, f := range filtered.Facts {
		if f.RegisteredCrimes != nil {
			assert.GreaterOrEqual(t, *f.RegisteredCrimes, 0.0)
		}
	}
}

func TestVerdictBlocksOnMeasureFailureRate(t *testing.T) {
	tables := validTables()
	tables.Facts = []dto.FactCandidate{
		{RegionCode: "GM0363", CrimeCode: "0.0.0", PeriodCode: "2023JJ00", RegisteredCrimes: fptr(-10)},
		{RegionCode: "GM0599", CrimeCode: "0.0.0", PeriodCode: "2023JJ00", RegisteredCrimes: fptr(3)},
	}

	policy := Policy{MinYear: 2010, MaxYear: 2030, MaxMeasureFailureRate: 0.1}
	_, report := NewGate(policy).Run(context.Background(), tables)

	err := policy.Verdict(report)
	require.Error(t, err)
	assert.ErrorIs(t, err, constants.ErrQualityGateBlocked)
	assert.Equal(t, 1, report.FailuresByCheck[CheckMeasureValid])
}

func TestVerdictBlocksOnDuplicateDimensionKeys(t *testing.T) {
	tables := validTables()
	tables.Regions = append(tables.Regions, dto.RegionCandidate{RegionCode: "GM0363", RegionName: "Amsterdam again"})

	policy := defaultPolicy()
	_, report := NewGate(policy).Run(context.Background(), tables)

	err := policy.Verdict(report)
	require.Error(t, err)
	assert.ErrorIs(t, err, constants.ErrQualityGateBlocked)
	assert.Equal(t, 1, report.FailuresByCheck[CheckRegionsUnique])
}

func TestVerdictBlocksOnEmptyTables(t *testing.T) {
	policy := defaultPolicy()
	_, report := NewGate(policy).Run(context.Background(), &dto.Tables{})

	err := policy.Verdict(report)
	require.Error(t, err)
	assert.ErrorIs(t, err, constants.ErrQualityGateBlocked)
	assert.Equal(t, 4, report.FailuresByCheck[CheckNotEmpty])
	assert.Equal(t, 0, report.RowsChecked, "table-level findings stay out of the row totals")
}

func TestGateFlagsOutOfRangeYearsWithoutBlocking(t *testing.T) {
	tables := validTables()
	tables.Periods = append(tables.Periods, dto.PeriodCandidate{PeriodCode: "1999JJ00", Year: 1999})

	gate := NewGate(defaultPolicy())
	filtered, report := gate.Run(context.Background(), tables)

	require.NoError(t, defaultPolicy().Verdict(report), "year range findings are flagged, never blocking")
	assert.Equal(t, 1, report.FailuresByCheck[CheckYearRange])
	assert.Len(t, filtered.Periods, 2, "flagged periods stay in the load")
}
