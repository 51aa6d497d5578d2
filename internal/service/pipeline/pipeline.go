package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mvisser/crimemap/internal/domain"
	"github.com/mvisser/crimemap/internal/domain/dto"
	"github.com/mvisser/crimemap/internal/pkg/logger"
	"github.com/mvisser/crimemap/internal/service/normalize"
	"github.com/mvisser/crimemap/internal/service/quality"
)

// Stage names of the linear pipeline state machine.
type Stage string

const (
	StageIdle        Stage = "idle"
	StageIngesting   Stage = "ingesting"
	StageNormalizing Stage = "normalizing"
	StageValidating  Stage = "validating"
	StageLoading     Stage = "loading"
	StageDone        Stage = "done"
	StageFailed      Stage = "failed"
)

type Ingester interface {
	RawPresent() bool
	Run(ctx context.Context) error
}

type Normalizer interface {
	Normalize(ctx context.Context) (*dto.Tables, *normalize.Stats, error)
}

type Gate interface {
	Run(ctx context.Context, tables *dto.Tables) (*dto.Tables, *quality.Report)
}

type Loader interface {
	Load(ctx context.Context, tables *dto.Tables) (*domain.LoadSummary, error)
}

type StageSummary struct {
	Stage   Stage          `json:"stage"`
	Seconds float64        `json:"seconds"`
	Counts  map[string]int `json:"counts,omitempty"`
	Cause   string         `json:"cause,omitempty"`
}

type Report struct {
	RunID   string              `json:"run_id"`
	State   Stage               `json:"state"`
	Stages  []StageSummary      `json:"stages"`
	Quality *quality.Report     `json:"quality,omitempty"`
	Load    *domain.LoadSummary `json:"load,omitempty"`
}

func (r *Report) pass(stage Stage, start time.Time, counts map[string]int) {
	r.Stages = append(r.Stages, StageSummary{
		Stage:   stage,
		Seconds: time.Since(start).Seconds(),
		Counts:  counts,
	})
}

func (r *Report) fail(stage Stage, start time.Time, err error) {
	r.Stages = append(r.Stages, StageSummary{
		Stage:   stage,
		Seconds: time.Since(start).Seconds(),
		Cause:   err.Error(),
	})
	r.State = StageFailed
}

type RunOpts struct {
	// ForceFetch re-ingests even when the raw landing files already exist.
	ForceFetch bool
}

// Service sequences normalize → validate → load over the raw landing files,
// fetching them first when absent. The gate measures; the orchestrator holds
// the policy and decides whether findings block the load. A failed run is
// re-invoked end to end; every run is a cheap idempotent rebuild, so there is
// no partial resume.
type Service struct {
	ingester   Ingester
	normalizer Normalizer
	gate       Gate
	policy     quality.Policy
	loader     Loader
}

func NewService(ingester Ingester, normalizer Normalizer, gate Gate, policy quality.Policy, loader Loader) *Service {
	return &Service{
		ingester:   ingester,
		normalizer: normalizer,
		gate:       gate,
		policy:     policy,
		loader:     loader,
	}
}

func (s *Service) Run(ctx context.Context, opts RunOpts) (*Report, error) {
	report := &Report{RunID: uuid.NewString(), State: StageIdle}
	logger.Infof(ctx, "pipeline run %s started", report.RunID)

	report.State = StageIngesting
	start := time.Now()
	if opts.ForceFetch || !s.ingester.RawPresent() {
		if err := s.ingester.Run(ctx); err != nil {
			report.fail(StageIngesting, start, err)
			return report, fmt.Errorf("ingesting: %w", err)
		}
		report.pass(StageIngesting, start, map[string]int{"fetched": 1})
	} else {
		report.pass(StageIngesting, start, map[string]int{"fetched": 0})
	}

	report.State = StageNormalizing
	start = time.Now()
	tables, stats, err := s.normalizer.Normalize(ctx)
	if err != nil {
		report.fail(StageNormalizing, start, err)
		return report, fmt.Errorf("normalizing: %w", err)
	}
	report.pass(StageNormalizing, start, map[string]int{
		"raw_rows":              stats.RawRows,
		"municipal_rows":        stats.MunicipalRows,
		"skipped_non_municipal": stats.SkippedNonMunicipal,
		"dropped_missing_key":   stats.DroppedMissingKey,
		"dropped_bad_period":    stats.DroppedBadPeriod,
		"geometry_matched":      stats.GeometryMatched,
		"geometry_missing":      stats.GeometryMissing,
		"regions":               len(tables.Regions),
		"crime_types":           len(tables.CrimeTypes),
		"periods":               len(tables.Periods),
		"facts":                 len(tables.Facts),
	})

	report.State = StageValidating
	start = time.Now()
	validated, qualityReport := s.gate.Run(ctx, tables)
	report.Quality = qualityReport
	if err := s.policy.Verdict(qualityReport); err != nil {
		report.fail(StageValidating, start, err)
		return report, fmt.Errorf("validating: %w", err)
	}
	report.pass(StageValidating, start, map[string]int{
		"rows_checked":    qualityReport.RowsChecked,
		"rows_failed":     qualityReport.RowsFailed,
		"dropped_orphans": qualityReport.DroppedOrphans,
		"excluded_facts":  qualityReport.ExcludedFacts,
	})

	report.State = StageLoading
	start = time.Now()
	summary, err := s.loader.Load(ctx, validated)
	if err != nil {
		report.fail(StageLoading, start, err)
		return report, fmt.Errorf("loading: %w", err)
	}
	report.Load = summary
	report.pass(StageLoading, start, map[string]int{
		"regions":       summary.Regions,
		"crime_types":   summary.CrimeTypes,
		"periods":       summary.Periods,
		"facts":         summary.Facts,
		"skipped_facts": summary.SkippedFacts,
		"removed_facts": summary.RemovedFacts,
	})

	report.State = StageDone
	logger.Infof(ctx, "pipeline run %s done", report.RunID)
	return report, nil
}
