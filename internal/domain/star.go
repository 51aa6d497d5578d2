package domain

type Year = int

// Region is a municipality keyed by its CBS code (GM0363 etc). Geometry is
// the boundary as GeoJSON and may be absent.
type Region struct {
	ID         int64   `db:"id" json:"id"`
	RegionCode string  `db:"region_code" json:"region_code"`
	RegionName string  `db:"region_name" json:"region_name"`
	Geometry   *string `db:"geometry" json:"geometry,omitempty"`
}

type CrimeType struct {
	ID        int64  `db:"id" json:"id"`
	CrimeCode string `db:"crime_code" json:"crime_code"`
	CrimeName string `db:"crime_name" json:"crime_name"`
}

type Period struct {
	ID         int64  `db:"id" json:"id"`
	PeriodCode string `db:"period_code" json:"period_code"`
	Year       Year   `db:"year" json:"year"`
}

// CrimeFact measures are nullable: CBS publishes "not applicable" sentinels
// that must not collapse to zero.
type CrimeFact struct {
	ID                      int64    `db:"id" json:"id"`
	RegionID                int64    `db:"region_id" json:"region_id"`
	CrimeTypeID             int64    `db:"crime_type_id" json:"crime_type_id"`
	PeriodID                int64    `db:"period_id" json:"period_id"`
	RegisteredCrimes        *float64 `db:"registered_crimes" json:"registered_crimes"`
	RegisteredCrimesPer1000 *float64 `db:"registered_crimes_per_1000" json:"registered_crimes_per_1000"`
}

// ChoroplethRow is one region of the map frame for a (year, crime type) filter.
type ChoroplethRow struct {
	RegionCode              string   `db:"region_code" json:"region_code"`
	RegionName              string   `db:"region_name" json:"region_name"`
	Geometry                *string  `db:"geometry" json:"geometry,omitempty"`
	RegisteredCrimes        *float64 `db:"registered_crimes" json:"registered_crimes"`
	RegisteredCrimesPer1000 *float64 `db:"registered_crimes_per_1000" json:"registered_crimes_per_1000"`
}

// LoadSummary reports what one transactional load wrote and swept away.
type LoadSummary struct {
	Regions      int `json:"regions"`
	CrimeTypes   int `json:"crime_types"`
	Periods      int `json:"periods"`
	Facts        int `json:"facts"`
	SkippedFacts int `json:"skipped_facts"`
	RemovedFacts int `json:"removed_facts"`
}

type ErrorResponse struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}
