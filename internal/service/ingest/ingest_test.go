package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvisser/crimemap/internal/domain/dto"
)

func crimeRow(region, period string, registered float64) dto.RawCrimeRecord {
	return dto.RawCrimeRecord{
		RegionCode: region,
		CrimeCode:  "0.0.0",
		PeriodCode: period,
		Registered: registered,
	}
}

// cbsHandler serves a TypedDataSet of `total` rows in $top-sized pages plus
// static RegioS / SoortMisdrijf metadata.
func cbsHandler(t *testing.T, total int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/83648NED/TypedDataSet":
			top, err := strconv.Atoi(r.URL.Query().Get("$top"))
			require.NoError(t, err)
			skip, err := strconv.Atoi(r.URL.Query().Get("$skip"))
			require.NoError(t, err)

			var rows []dto.RawCrimeRecord
			for i := skip; i < total && i < skip+top; i++ {
				rows = append(rows, crimeRow(fmt.Sprintf("GM%04d", i), "2023JJ00", float64(i)))
			}
			writeValue(w, rows)
		case "/83648NED/RegioS":
			writeValue(w, []dto.MetaEntry{{Key: "GM0000", Title: "Nulgemeente"}})
		case "/83648NED/SoortMisdrijf":
			writeValue(w, []dto.MetaEntry{{Key: "0.0.0", Title: "Misdrijven, totaal"}})
		default:
			http.NotFound(w, r)
		}
	}
}

func writeValue(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = writeJSONBody(w, map[string]any{"value": v})
}

func writeJSONBody(w http.ResponseWriter, v any) error {
	data, err := sonic.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func TestFetchTypedDataSetPages(t *testing.T) {
	srv := httptest.NewServer(cbsHandler(t, 5))
	defer srv.Close()

	cbs := NewCBSClient(srv.URL, "83648NED", 2)
	records, err := cbs.FetchTypedDataSet(context.Background())
	require.NoError(t, err)

	require.Len(t, records, 5, "three pages of 2+2+1")
	assert.Equal(t, "GM0000", records[0].RegionCode)
	assert.Equal(t, "GM0004", records[4].RegionCode)
}

func TestFetchTypedDataSetExactPageBoundary(t *testing.T) {
	srv := httptest.NewServer(cbsHandler(t, 4))
	defer srv.Close()

	cbs := NewCBSClient(srv.URL, "83648NED", 2)
	records, err := cbs.FetchTypedDataSet(context.Background())
	require.NoError(t, err)

	assert.Len(t, records, 4, "the trailing empty page terminates paging")
}

func TestFetchMeta(t *testing.T) {
	srv := httptest.NewServer(cbsHandler(t, 0))
	defer srv.Close()

	cbs := NewCBSClient(srv.URL, "83648NED", 100)
	entries, err := cbs.FetchMeta(context.Background(), "SoortMisdrijf")
	require.NoError(t, err)

	require.Len(t, entries, 1)
	assert.Equal(t, "0.0.0", entries[0].Key)
	assert.Equal(t, "Misdrijven, totaal", entries[0].Title)
}

func TestGetJSONRetriesTransientFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		writeValue(w, []dto.MetaEntry{{Key: "GM0363", Title: "Amsterdam"}})
	}))
	defer srv.Close()

	cbs := NewCBSClient(srv.URL, "83648NED", 100)
	entries, err := cbs.FetchMeta(context.Background(), "RegioS")
	require.NoError(t, err)

	assert.Len(t, entries, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetchMunicipalitiesPages(t *testing.T) {
	boundaries := []dto.BoundaryFeature{
		{Type: "Feature", Properties: dto.BoundaryProperties{Identificatie: "GM0363", Naam: "Amsterdam"}},
		{Type: "Feature", Properties: dto.BoundaryProperties{Identificatie: "GM0599", Naam: "Rotterdam"}},
		{Type: "Feature", Properties: dto.BoundaryProperties{Identificatie: "GM0518", Naam: "'s-Gravenhage"}},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/collections/gemeentegebied/items", r.URL.Path)

		limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
		require.NoError(t, err)
		offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
		require.NoError(t, err)

		var page []dto.BoundaryFeature
		for i := offset; i < len(boundaries) && i < offset+limit; i++ {
			page = append(page, boundaries[i])
		}
		_ = writeJSONBody(w, map[string]any{"features": page})
	}))
	defer srv.Close()

	geo := NewGeoClient(srv.URL, 2)
	collection, err := geo.FetchMunicipalities(context.Background())
	require.NoError(t, err)

	require.Len(t, collection.Features, 3)
	assert.Equal(t, "GM0518", collection.Features[2].Properties.Identificatie)
}

func TestServiceRunLandsAllFiles(t *testing.T) {
	cbsSrv := httptest.NewServer(cbsHandler(t, 3))
	defer cbsSrv.Close()

	geoSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = writeJSONBody(w, map[string]any{"features": []dto.BoundaryFeature{
			{Type: "Feature", Properties: dto.BoundaryProperties{Identificatie: "GM0363", Naam: "Amsterdam"}},
		}})
	}))
	defer geoSrv.Close()

	raw := NewRawStore(t.TempDir())
	svc := NewService(raw, NewCBSClient(cbsSrv.URL, "83648NED", 100), NewGeoClient(geoSrv.URL, 100))

	assert.False(t, svc.RawPresent())
	require.NoError(t, svc.Run(context.Background()))
	assert.True(t, svc.RawPresent())

	var records []dto.RawCrimeRecord
	require.NoError(t, raw.ReadJSON(raw.CrimePath(), &records))
	assert.Len(t, records, 3)

	var collection dto.FeatureCollection
	require.NoError(t, raw.ReadJSON(raw.BoundariesPath(), &collection))
	require.Len(t, collection.Features, 1)
	assert.Equal(t, "GM0363", collection.Features[0].Properties.Identificatie)
}

func TestRawStoreRoundTrip(t *testing.T) {
	raw := NewRawStore(t.TempDir())

	in := []dto.MetaEntry{{Key: "GM0363", Title: "Amsterdam"}}
	require.NoError(t, raw.WriteJSON(raw.RegionMetaPath(), in))

	var out []dto.MetaEntry
	require.NoError(t, raw.ReadJSON(raw.RegionMetaPath(), &out))
	assert.Equal(t, in, out)

	assert.False(t, raw.Present(), "presence requires every landing file")
}
