package ingest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mvisser/crimemap/internal/domain/dto"
	"github.com/mvisser/crimemap/internal/pkg/logger"
)

// GeoClient pages through the PDOK bestuurlijke gebieden OGC feature service
// and assembles all municipality boundaries into one FeatureCollection.
type GeoClient struct {
	baseURL   string
	pageLimit int
	client    *http.Client
}

func NewGeoClient(baseURL string, pageLimit int) *GeoClient {
	return &GeoClient{
		baseURL:   baseURL,
		pageLimit: pageLimit,
		client:    &http.Client{Timeout: 60 * time.Second},
	}
}

func (g *GeoClient) FetchMunicipalities(ctx context.Context) (*dto.FeatureCollection, error) {
	collection := &dto.FeatureCollection{Type: "FeatureCollection"}

	for offset := 0; ; offset += g.pageLimit {
		url := fmt.Sprintf("%s/collections/gemeentegebied/items?f=json&limit=%d&offset=%d",
			g.baseURL, g.pageLimit, offset)

		var page struct {
			Features []dto.BoundaryFeature `json:"features"`
		}
		if err := getJSON(ctx, g.client, url, &page); err != nil {
			return nil, fmt.Errorf("fetch boundaries page offset=%d: %w", offset, err)
		}

		if len(page.Features) == 0 {
			break
		}

		collection.Features = append(collection.Features, page.Features...)
		logger.Infof(ctx, "fetched %d boundary features (total %d)", len(page.Features), len(collection.Features))

		if len(page.Features) < g.pageLimit {
			break
		}
	}

	return collection, nil
}
