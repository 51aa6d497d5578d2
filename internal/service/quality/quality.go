package quality

import (
	"context"
	"fmt"

	"github.com/mvisser/crimemap/internal/domain/dto"
	"github.com/mvisser/crimemap/internal/pkg/constants"
	"github.com/mvisser/crimemap/internal/pkg/logger"
)

// Check names as they appear in reports.
const (
	CheckNotEmpty         = "not_empty"
	CheckRegionsUnique    = "dim_regions_unique"
	CheckCrimeTypesUnique = "dim_crime_types_unique"
	CheckPeriodsUnique    = "dim_periods_unique"
	CheckMeasureValid     = "measure_valid"
	CheckReferential      = "referential"
	CheckYearRange        = "year_range"
)

// Policy decides which failures block the load. The gate only measures;
// the orchestrator asks the policy for the verdict. Referential orphans are
// always dropped and counted rather than blocking; year-range findings are
// flagged only.
type Policy struct {
	MinYear               int
	MaxYear               int
	MaxMeasureFailureRate float64
}

// Verdict applies the blocking policy to a finished report. Row-scoped
// exclusions have already happened by the time this is called.
func (p Policy) Verdict(report *Report) error {
	var emptyTables, dups, badMeasures, measureRows int
	for _, c := range report.Checks {
		switch c.Name {
		case CheckNotEmpty:
			emptyTables = c.Failed
		case CheckRegionsUnique, CheckCrimeTypesUnique, CheckPeriodsUnique:
			dups += c.Failed
		case CheckMeasureValid:
			badMeasures, measureRows = c.Failed, c.Checked
		}
	}

	if emptyTables > 0 {
		return fmt.Errorf("%w: %d normalized tables are empty", constants.ErrQualityGateBlocked, emptyTables)
	}
	if dups > 0 {
		return fmt.Errorf("%w: %d duplicate dimension keys", constants.ErrQualityGateBlocked, dups)
	}
	if measureRows > 0 {
		rate := float64(badMeasures) / float64(measureRows)
		if rate > p.MaxMeasureFailureRate {
			return fmt.Errorf("%w: measure failure rate %.4f exceeds %.4f",
				constants.ErrQualityGateBlocked, rate, p.MaxMeasureFailureRate)
		}
	}

	return nil
}

// CheckResult counts rows for row-scoped checks and tables for the
// table-scoped not_empty check.
type CheckResult struct {
	Name    string `json:"name"`
	Checked int    `json:"checked"`
	Failed  int    `json:"failed"`
}

// Report row totals cover row-scoped checks only; table-level findings appear
// in Checks and FailuresByCheck without inflating the row counts.
type Report struct {
	RowsChecked     int            `json:"rows_checked"`
	RowsPassed      int            `json:"rows_passed"`
	RowsFailed      int            `json:"rows_failed"`
	FailuresByCheck map[string]int `json:"failures_by_check"`
	Checks          []CheckResult  `json:"checks"`
	DroppedOrphans  int            `json:"dropped_orphans"`
	ExcludedFacts   int            `json:"excluded_facts"`
}

func (r *Report) add(result CheckResult) {
	r.Checks = append(r.Checks, result)
	r.RowsChecked += result.Checked
	r.RowsFailed += result.Failed
	r.RowsPassed += result.Checked - result.Failed
	if result.Failed > 0 {
		r.FailuresByCheck[result.Name] = result.Failed
	}
}

func (r *Report) addTable(result CheckResult) {
	r.Checks = append(r.Checks, result)
	if result.Failed > 0 {
		r.FailuresByCheck[result.Name] = result.Failed
	}
}

type Gate struct {
	policy Policy
}

func NewGate(policy Policy) *Gate {
	return &Gate{policy: policy}
}

// Run executes every check independently and returns the filtered tables a
// loader could write plus the full report. Data is never mutated, only
// excluded; whether the run may proceed is the policy's Verdict, applied by
// the caller.
func (g *Gate) Run(ctx context.Context, tables *dto.Tables) (*dto.Tables, *Report) {
	report := &Report{FailuresByCheck: map[string]int{}}

	emptyTables := checkNotEmpty(tables)
	report.addTable(CheckResult{Name: CheckNotEmpty, Checked: 4, Failed: emptyTables})

	dupRegions := duplicateKeys(tables.Regions, func(r dto.RegionCandidate) string { return r.RegionCode })
	report.add(CheckResult{Name: CheckRegionsUnique, Checked: len(tables.Regions), Failed: dupRegions})

	dupCrimeTypes := duplicateKeys(tables.CrimeTypes, func(ct dto.CrimeTypeCandidate) string { return ct.CrimeCode })
	report.add(CheckResult{Name: CheckCrimeTypesUnique, Checked: len(tables.CrimeTypes), Failed: dupCrimeTypes})

	dupPeriods := duplicateKeys(tables.Periods, func(p dto.PeriodCandidate) string { return p.PeriodCode })
	report.add(CheckResult{Name: CheckPeriodsUnique, Checked: len(tables.Periods), Failed: dupPeriods})

	badMeasures := checkMeasures(tables.Facts)
	report.add(CheckResult{Name: CheckMeasureValid, Checked: len(tables.Facts), Failed: len(badMeasures)})

	orphans := checkReferential(tables)
	report.add(CheckResult{Name: CheckReferential, Checked: len(tables.Facts), Failed: len(orphans)})
	report.DroppedOrphans = len(orphans)

	flaggedYears := 0
	for _, p := range tables.Periods {
		if p.Year < g.policy.MinYear || p.Year > g.policy.MaxYear {
			flaggedYears++
			logger.Warnf(ctx, "period %s: year %d outside coverage window [%d, %d]",
				p.PeriodCode, p.Year, g.policy.MinYear, g.policy.MaxYear)
		}
	}
	report.add(CheckResult{Name: CheckYearRange, Checked: len(tables.Periods), Failed: flaggedYears})

	filtered := &dto.Tables{
		Regions:    tables.Regions,
		CrimeTypes: tables.CrimeTypes,
		Periods:    tables.Periods,
		Facts:      excludeFacts(tables.Facts, orphans, badMeasures),
	}
	report.ExcludedFacts = len(tables.Facts) - len(filtered.Facts)

	logger.Infof(ctx, "quality checks done: %d/%d rows passed, %d facts excluded (%d orphans)",
		report.RowsPassed, report.RowsChecked, report.ExcludedFacts, report.DroppedOrphans)

	return filtered, report
}

func checkNotEmpty(tables *dto.Tables) int {
	empty := 0
	if len(tables.Regions) == 0 {
		empty++
	}
	if len(tables.CrimeTypes) == 0 {
		empty++
	}
	if len(tables.Periods) == 0 {
		empty++
	}
	if len(tables.Facts) == 0 {
		empty++
	}
	return empty
}

func duplicateKeys[T any](rows []T, key func(T) string) int {
	seen := make(map[string]struct{}, len(rows))
	dups := 0
	for _, row := range rows {
		k := key(row)
		if _, ok := seen[k]; ok {
			dups++
			continue
		}
		seen[k] = struct{}{}
	}
	return dups
}

// checkMeasures returns the indexes of facts carrying a present but negative
// measure. Null measures pass: absence is valid, negative counts are not.
func checkMeasures(facts []dto.FactCandidate) map[int]struct{} {
	bad := map[int]struct{}{}
	for i, f := range facts {
		if f.RegisteredCrimes != nil && *f.RegisteredCrimes < 0 {
			bad[i] = struct{}{}
			continue
		}
		if f.RegisteredCrimesPer1000 != nil && *f.RegisteredCrimesPer1000 < 0 {
			bad[i] = struct{}{}
		}
	}
	return bad
}

// checkReferential returns the indexes of facts whose natural keys are absent
// from the candidate dimensions.
func checkReferential(tables *dto.Tables) map[int]struct{} {
	regions := make(map[string]struct{}, len(tables.Regions))
	for _, r := range tables.Regions {
		regions[r.RegionCode] = struct{}{}
	}
	crimeTypes := make(map[string]struct{}, len(tables.CrimeTypes))
	for _, ct := range tables.CrimeTypes {
		crimeTypes[ct.CrimeCode] = struct{}{}
	}
	periods := make(map[string]struct{}, len(tables.Periods))
	for _, p := range tables.Periods {
		periods[p.PeriodCode] = struct{}{}
	}

	orphans := map[int]struct{}{}
	for i, f := range tables.Facts {
		if _, ok := regions[f.RegionCode]; !ok {
			orphans[i] = struct{}{}
			continue
		}
		if _, ok := crimeTypes[f.CrimeCode]; !ok {
			orphans[i] = struct{}{}
			continue
		}
		if _, ok := periods[f.PeriodCode]; !ok {
			orphans[i] = struct{}{}
		}
	}
	return orphans
}

func excludeFacts(facts []dto.FactCandidate, exclude ...map[int]struct{}) []dto.FactCandidate {
	kept := make([]dto.FactCandidate, 0, len(facts))
	for i, f := range facts {
		excluded := false
		for _, set := range exclude {
			if _, ok := set[i]; ok {
				excluded = true
				break
			}
		}
		if !excluded {
			kept = append(kept, f)
		}
	}
	return kept
}
