package client

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"basler/crawler/internal/domain"
	"basler/crawler/internal/fetcher"
)

func TestClassifyLink(t *testing.T) {
	tests := []struct {
		link string
		want domain.LinkShape
	}{
		{"https://www.baslerweb.com/en-us/shop/a2a1920-51gcpro/", domain.ShapeDirectProduct},
		{"https://www.baslerweb.com/en-us/cameras/area-scan/", domain.ShapeTrailingSlash},
		{"https://www.baslerweb.com/en-us/foo/?x=1#products", domain.ShapeAnchorMarker},
		{"https://www.baslerweb.com/en-us/lenses/c-mount/#products", domain.ShapeAnchorMarker},
		{"https://www.baslerweb.com/en-us/foo", domain.ShapePlainSlug},
	}

	for _, tt := range tests {
		t.Run(tt.link, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyLink(tt.link, "en-us"))
		})
	}
}

func TestNormalizeSlug(t *testing.T) {
	tests := []struct {
		raw   string
		shape domain.LinkShape
		want  string
	}{
		{"foo/?x=1#products", domain.ShapeAnchorMarker, "foo"},
		{"lenses/c-mount/#products", domain.ShapeAnchorMarker, "lenses/c-mount"},
		{"foo", domain.ShapePlainSlug, "foo"},
		{"foo/", domain.ShapeTrailingSlash, "foo"},
		{"cameras/area-scan/", domain.ShapeTrailingSlash, "cameras/area-scan"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeSlug(tt.raw, tt.shape))
		})
	}
}

func TestExtractSlug(t *testing.T) {
	slug, err := ExtractSlug("https://www.baslerweb.com/en-us/foo/?x=1#products", "en-us")
	require.NoError(t, err)
	assert.Equal(t, "foo/?x=1#products", slug)

	_, err = ExtractSlug("https://www.baslerweb.com/de-de/foo/", "en-us")
	assert.ErrorIs(t, err, ErrNoSlug)

	_, err = ExtractSlug("https://www.baslerweb.com/en-us/", "en-us")
	assert.ErrorIs(t, err, ErrNoSlug)
}

func TestCategoryIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr error
	}{
		{
			name: "first entry in document order wins",
			body: `{"entry":{"linkedEntries":{
				"zeta":{"fields":{"staticFilters":{"category_id":["123","9"]}}},
				"alpha":{"fields":{"staticFilters":{"category_id":["456"]}}}}}}`,
			want: "123",
		},
		{
			name: "entries without ids are skipped",
			body: `{"entry":{"linkedEntries":{
				"hero":{"fields":{"title":"Cameras"}},
				"empty":{"fields":{"staticFilters":{"category_id":[]}}},
				"grid":{"fields":{"staticFilters":{"category_id":["456"]}}}}}}`,
			want: "456",
		},
		{
			name: "numeric id",
			body: `{"entry":{"linkedEntries":{"grid":{"fields":{"staticFilters":{"category_id":[789]}}}}}}`,
			want: "789",
		},
		{
			name:    "no linked entries",
			body:    `{"entry":{"fields":{}}}`,
			wantErr: ErrNoCategoryFound,
		},
		{
			name:    "no category in any entry",
			body:    `{"entry":{"linkedEntries":{"hero":{"fields":{"title":"Cameras"}}}}}`,
			wantErr: ErrNoCategoryFound,
		},
		{
			name:    "empty document",
			body:    `{}`,
			wantErr: ErrNoCategoryFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := categoryIDFromContent([]byte(tt.body))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveCategoryID(t *testing.T) {
	f := &fakeFetcher{jsonFn: func(rawURL string) ([]byte, error) {
		switch rawURL {
		case "https://www.baslerweb.com/api/contentful?slug=foo&locale=en-us":
			return []byte(`{"entry":{"linkedEntries":{"grid":{"fields":{"staticFilters":{"category_id":["123"]}}}}}}`), nil
		case "https://www.baslerweb.com/api/contentful?slug=cameras%2Farea-scan&locale=en-us":
			return []byte(`{"entry":{"linkedEntries":{}}}`), nil
		}
		return nil, fmt.Errorf("%w: HTTP 404 for %s", fetcher.ErrFetchFailed, rawURL)
	}}
	c := newTestClient(t, f)
	ctx := context.Background()

	t.Run("anchor marker", func(t *testing.T) {
		got, err := c.ResolveCategoryID(ctx, "https://www.baslerweb.com/en-us/foo/?x=1#products")
		require.NoError(t, err)
		assert.Equal(t, &domain.ResolvedCategory{Slug: "foo", CategoryID: "123"}, got)
	})

	t.Run("trailing slash and plain slug share a key", func(t *testing.T) {
		for _, link := range []string{"https://www.baslerweb.com/en-us/foo/", "https://www.baslerweb.com/en-us/foo"} {
			got, err := c.ResolveCategoryID(ctx, link)
			require.NoError(t, err)
			assert.Equal(t, "123", got.CategoryID)
		}
	})

	t.Run("no category", func(t *testing.T) {
		_, err := c.ResolveCategoryID(ctx, "https://www.baslerweb.com/en-us/cameras/area-scan/")
		assert.ErrorIs(t, err, ErrNoCategoryFound)
	})

	t.Run("fetch failure", func(t *testing.T) {
		_, err := c.ResolveCategoryID(ctx, "https://www.baslerweb.com/en-us/missing/")
		assert.True(t, errors.Is(err, fetcher.ErrFetchFailed))
	})

	t.Run("direct product link", func(t *testing.T) {
		_, err := c.ResolveCategoryID(ctx, "https://www.baslerweb.com/en-us/shop/cam-x/")
		assert.Error(t, err)
	})
}
