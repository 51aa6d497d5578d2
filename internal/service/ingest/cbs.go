package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cenkalti/backoff/v4"

	"github.com/mvisser/crimemap/internal/domain/dto"
	"github.com/mvisser/crimemap/internal/pkg/logger"
)

// CBSClient pages through a CBS OData dataset (registered crimes, 83648NED).
type CBSClient struct {
	baseURL   string
	dataset   string
	pageLimit int
	client    *http.Client
}

func NewCBSClient(baseURL, dataset string, pageLimit int) *CBSClient {
	return &CBSClient{
		baseURL:   baseURL,
		dataset:   dataset,
		pageLimit: pageLimit,
		client:    &http.Client{Timeout: 60 * time.Second},
	}
}

// FetchTypedDataSet pulls every row of the dataset's TypedDataSet feed.
func (c *CBSClient) FetchTypedDataSet(ctx context.Context) ([]dto.RawCrimeRecord, error) {
	var records []dto.RawCrimeRecord

	for skip := 0; ; skip += c.pageLimit {
		url := fmt.Sprintf("%s/%s/TypedDataSet?$format=json&$top=%d&$skip=%d",
			c.baseURL, c.dataset, c.pageLimit, skip)

		var page struct {
			Value []dto.RawCrimeRecord `json:"value"`
		}
		if err := getJSON(ctx, c.client, url, &page); err != nil {
			return nil, fmt.Errorf("fetch TypedDataSet page skip=%d: %w", skip, err)
		}

		if len(page.Value) == 0 {
			break
		}

		records = append(records, page.Value...)
		logger.Infof(ctx, "fetched %d crime rows (total %d)", len(page.Value), len(records))

		if len(page.Value) < c.pageLimit {
			break
		}
	}

	return records, nil
}

// FetchMeta pulls the Key/Title entries of a dataset dimension, e.g. RegioS
// or SoortMisdrijf, used to resolve display names for codes.
func (c *CBSClient) FetchMeta(ctx context.Context, dimension string) ([]dto.MetaEntry, error) {
	url := fmt.Sprintf("%s/%s/%s?$format=json", c.baseURL, c.dataset, dimension)

	var page struct {
		Value []dto.MetaEntry `json:"value"`
	}
	if err := getJSON(ctx, c.client, url, &page); err != nil {
		return nil, fmt.Errorf("fetch %s metadata: %w", dimension, err)
	}

	logger.Infof(ctx, "fetched %d %s metadata entries", len(page.Value), dimension)
	return page.Value, nil
}

// getJSON fetches url into dst, retrying transient failures with a constant
// backoff the way the public CBS and PDOK endpoints tolerate.
func getJSON(ctx context.Context, client *http.Client, url string, dst any) error {
	var body []byte

	err := backoff.Retry(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return backoff.Permanent(err)
			}

			resp, err := client.Do(req)
			if err != nil {
				return fmt.Errorf("http.Get: %w", err)
			}
			defer func() {
				_ = resp.Body.Close()
			}()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("status code error: %d %s", resp.StatusCode, resp.Status)
			}

			body, err = io.ReadAll(resp.Body)
			if err != nil {
				return fmt.Errorf("read body: %w", err)
			}

			return nil
		},
		backoff.WithContext(
			backoff.WithMaxRetries(backoff.NewConstantBackOff(500*time.Millisecond), 5),
			ctx,
		),
	)
	if err != nil {
		return err
	}

	if err := sonic.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}

	return nil
}
