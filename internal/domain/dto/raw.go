package dto

import "encoding/json"

// RawCrimeRecord mirrors one row of the CBS TypedDataSet as landed. Measures
// stay untyped: the source mixes numbers, nulls and sentinel strings, and the
// normalizer decides what they mean.
type RawCrimeRecord struct {
	CrimeCode  string `json:"SoortMisdrijf"`
	RegionCode string `json:"RegioS"`
	PeriodCode string `json:"Perioden"`
	Registered any    `json:"TotaalGeregistreerdeMisdrijven_1"`
	Per1000    any    `json:"GeregistreerdeMisdrijvenPer1000Inw_3"`
}

// MetaEntry is one Key/Title pair from a CBS dimension metadata endpoint.
type MetaEntry struct {
	Key   string `json:"Key"`
	Title string `json:"Title"`
}

// BoundaryFeature is one municipality polygon from the PDOK feature service.
// Geometry bytes are kept raw and handed to PostGIS untouched.
type BoundaryFeature struct {
	Type       string             `json:"type"`
	Properties BoundaryProperties `json:"properties"`
	Geometry   json.RawMessage    `json:"geometry"`
}

type BoundaryProperties struct {
	Identificatie string `json:"identificatie"`
	Naam          string `json:"naam"`
}

type FeatureCollection struct {
	Type     string            `json:"type"`
	Features []BoundaryFeature `json:"features"`
}
