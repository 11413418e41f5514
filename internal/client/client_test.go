package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"basler/crawler/internal/config"
	"basler/crawler/internal/fetcher"
)

// fakeFetcher serves canned bodies keyed by URL and records every request.
type fakeFetcher struct {
	html      map[string]string
	jsonFn    func(rawURL string) ([]byte, error)
	requested []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, req fetcher.Request) ([]byte, error) {
	if req.Kind == fetcher.KindHTML {
		body, err := f.FetchHTML(ctx, req.Bucket, req.URL)
		return []byte(body), err
	}
	return f.FetchJSON(ctx, req.Bucket, req.URL, req.Payload)
}

func (f *fakeFetcher) FetchHTML(_ context.Context, _ string, rawURL string) (string, error) {
	f.requested = append(f.requested, rawURL)
	body, ok := f.html[rawURL]
	if !ok {
		return "", fmt.Errorf("%w: HTTP 404 for %s", fetcher.ErrFetchFailed, rawURL)
	}
	return body, nil
}

func (f *fakeFetcher) FetchJSON(_ context.Context, _ string, rawURL string, _ map[string]any) ([]byte, error) {
	f.requested = append(f.requested, rawURL)
	if f.jsonFn == nil {
		return nil, fmt.Errorf("%w: HTTP 404 for %s", fetcher.ErrFetchFailed, rawURL)
	}
	return f.jsonFn(rawURL)
}

func testSiteConfig() config.SiteConfig {
	return config.SiteConfig{
		BaseURL:            "https://www.baslerweb.com",
		Locale:             "en-us",
		Store:              "amer_en",
		PageSize:           21,
		ExcludedCategories: []string{"Kits & Bundles", "Software"},
	}
}

func newTestClient(t *testing.T, f fetcher.Fetcher) *Client {
	t.Helper()

	c, err := NewBaslerClient(testSiteConfig(), f)
	require.NoError(t, err)
	return c
}

// listingRequest decodes the category id and page number out of a products API URL.
func listingRequest(t *testing.T, rawURL string) (string, int) {
	t.Helper()

	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	require.Equal(t, "/api/magento/products", u.Path)

	var decoded listingFilters
	require.NoError(t, json.Unmarshal([]byte(u.Query().Get("filters")), &decoded))
	require.Len(t, decoded.Page, 1)
	require.Len(t, decoded.CategoryID, 1)

	page, err := strconv.Atoi(decoded.Page[0])
	require.NoError(t, err)
	return decoded.CategoryID[0], page
}
