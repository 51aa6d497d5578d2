package dto

// Candidate rows produced by the normalizer, keyed by natural key. Surrogate
// ids exist only after the loader has resolved them against the store.

type RegionCandidate struct {
	RegionCode string
	RegionName string
	Geometry   *string
}

type CrimeTypeCandidate struct {
	CrimeCode string
	CrimeName string
}

type PeriodCandidate struct {
	PeriodCode string
	Year       int
}

type FactCandidate struct {
	RegionCode              string
	CrimeCode               string
	PeriodCode              string
	RegisteredCrimes        *float64
	RegisteredCrimesPer1000 *float64
}

// Tables is the in-memory star-schema candidate set between normalization and
// load. The quality gate filters it but never mutates rows in place.
type Tables struct {
	Regions    []RegionCandidate
	CrimeTypes []CrimeTypeCandidate
	Periods    []PeriodCandidate
	Facts      []FactCandidate
}
