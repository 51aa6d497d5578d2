package normalize

import (
	"context"
	"fmt"
	"strings"

	"github.com/mvisser/crimemap/internal/domain/dto"
	"github.com/mvisser/crimemap/internal/pkg/constants"
	"github.com/mvisser/crimemap/internal/pkg/logger"
	"github.com/mvisser/crimemap/internal/service/ingest"
)

// Service reshapes the raw landing files into deduplicated dimension and fact
// candidate tables. It writes nothing; the loader owns all store effects.
type Service struct {
	raw *ingest.RawStore
}

func NewService(raw *ingest.RawStore) *Service {
	return &Service{raw: raw}
}

type Stats struct {
	RawRows             int `json:"raw_rows"`
	MunicipalRows       int `json:"municipal_rows"`
	SkippedNonMunicipal int `json:"skipped_non_municipal"`
	DroppedMissingKey   int `json:"dropped_missing_key"`
	DroppedBadPeriod    int `json:"dropped_bad_period"`
	GeometryMatched     int `json:"geometry_matched"`
	GeometryMissing     int `json:"geometry_missing"`
}

func (s *Service) Normalize(ctx context.Context) (*dto.Tables, *Stats, error) {
	var records []dto.RawCrimeRecord
	if err := s.raw.ReadJSON(s.raw.CrimePath(), &records); err != nil {
		return nil, nil, fmt.Errorf("%w: %s", constants.ErrRawInputMissing, err)
	}

	var regionMeta, crimeMeta []dto.MetaEntry
	if err := s.raw.ReadJSON(s.raw.RegionMetaPath(), &regionMeta); err != nil {
		return nil, nil, fmt.Errorf("%w: %s", constants.ErrRawInputMissing, err)
	}
	if err := s.raw.ReadJSON(s.raw.CrimeMetaPath(), &crimeMeta); err != nil {
		return nil, nil, fmt.Errorf("%w: %s", constants.ErrRawInputMissing, err)
	}

	var boundaries dto.FeatureCollection
	if err := s.raw.ReadJSON(s.raw.BoundariesPath(), &boundaries); err != nil {
		return nil, nil, fmt.Errorf("%w: %s", constants.ErrRawInputMissing, err)
	}

	regionNames := metaTitles(regionMeta)
	crimeNames := metaTitles(crimeMeta)
	geometries := boundaryGeometries(&boundaries)

	tables := &dto.Tables{}
	stats := &Stats{RawRows: len(records)}

	regionIdx := map[string]int{}
	crimeIdx := map[string]int{}
	periodIdx := map[string]int{}
	factIdx := map[string]int{}

	for _, rec := range records {
		regionCode := strings.TrimSpace(rec.RegionCode)
		crimeCode := strings.TrimSpace(rec.CrimeCode)
		periodCode := strings.TrimSpace(rec.PeriodCode)

		if regionCode == "" || crimeCode == "" || periodCode == "" {
			stats.DroppedMissingKey++
			logger.Warnf(ctx, "dropping row with missing natural key: region=%q crime=%q period=%q",
				regionCode, crimeCode, periodCode)
			continue
		}

		// national and provincial aggregates are out of scope
		if !strings.HasPrefix(regionCode, "GM") {
			stats.SkippedNonMunicipal++
			continue
		}

		year, err := ParsePeriod(periodCode)
		if err != nil {
			stats.DroppedBadPeriod++
			logger.Warnf(ctx, "dropping row: %s", err.Error())
			continue
		}
		stats.MunicipalRows++

		if _, ok := regionIdx[regionCode]; !ok {
			regionIdx[regionCode] = len(tables.Regions)
			name := regionNames[regionCode]
			if name == "" {
				name = regionCode
			}
			tables.Regions = append(tables.Regions, dto.RegionCandidate{
				RegionCode: regionCode,
				RegionName: name,
				Geometry:   geometries[regionCode],
			})
		}

		if _, ok := crimeIdx[crimeCode]; !ok {
			crimeIdx[crimeCode] = len(tables.CrimeTypes)
			name := crimeNames[crimeCode]
			if name == "" {
				name = crimeCode
			}
			tables.CrimeTypes = append(tables.CrimeTypes, dto.CrimeTypeCandidate{
				CrimeCode: crimeCode,
				CrimeName: name,
			})
		}

		if _, ok := periodIdx[periodCode]; !ok {
			periodIdx[periodCode] = len(tables.Periods)
			tables.Periods = append(tables.Periods, dto.PeriodCandidate{
				PeriodCode: periodCode,
				Year:       year,
			})
		}

		fact := dto.FactCandidate{
			RegionCode:              regionCode,
			CrimeCode:               crimeCode,
			PeriodCode:              periodCode,
			RegisteredCrimes:        parseMeasure(rec.Registered),
			RegisteredCrimesPer1000: parseMeasure(rec.Per1000),
		}

		// later ingestions of the same triple overwrite, never duplicate
		key := regionCode + "|" + crimeCode + "|" + periodCode
		if i, ok := factIdx[key]; ok {
			tables.Facts[i] = fact
		} else {
			factIdx[key] = len(tables.Facts)
			tables.Facts = append(tables.Facts, fact)
		}
	}

	for _, r := range tables.Regions {
		if r.Geometry != nil {
			stats.GeometryMatched++
		} else {
			stats.GeometryMissing++
		}
	}

	logger.Infof(ctx, "normalized %d raw rows into %d regions, %d crime types, %d periods, %d facts",
		stats.RawRows, len(tables.Regions), len(tables.CrimeTypes), len(tables.Periods), len(tables.Facts))

	return tables, stats, nil
}

func metaTitles(entries []dto.MetaEntry) map[string]string {
	titles := make(map[string]string, len(entries))
	for _, e := range entries {
		titles[strings.TrimSpace(e.Key)] = strings.TrimSpace(e.Title)
	}
	return titles
}

// boundaryGeometries maps GM codes to raw GeoJSON geometry. The boundary file
// only supplies optional geometry; the crime file stays authoritative for
// which regions exist.
func boundaryGeometries(collection *dto.FeatureCollection) map[string]*string {
	geometries := make(map[string]*string, len(collection.Features))
	for _, f := range collection.Features {
		code := strings.TrimSpace(f.Properties.Identificatie)
		if code == "" || len(f.Geometry) == 0 || string(f.Geometry) == "null" {
			continue
		}
		if !strings.HasPrefix(code, "GM") {
			code = "GM" + code
		}

		geom := string(f.Geometry)
		geometries[code] = &geom
	}
	return geometries
}
