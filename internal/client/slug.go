package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"basler/crawler/internal/domain"
)

var (
	ErrNoSlug          = errors.New("link carries no category slug")
	ErrNoCategoryFound = errors.New("no category id found for slug")
)

const (
	shopMarker     = "/shop/"
	productsAnchor = "#products"
)

// ClassifyLink decides how a product-category link has to be handled.
func ClassifyLink(link, locale string) domain.LinkShape {
	if strings.Contains(link, shopMarker) {
		return domain.ShapeDirectProduct
	}

	slug := link
	if _, after, found := strings.Cut(link, "/"+locale+"/"); found {
		slug = after
	}

	switch {
	case strings.HasSuffix(slug, "/"):
		return domain.ShapeTrailingSlash
	case strings.Contains(slug, productsAnchor):
		return domain.ShapeAnchorMarker
	default:
		return domain.ShapePlainSlug
	}
}

// ExtractSlug returns the part of link following the locale segment.
func ExtractSlug(link, locale string) (string, error) {
	_, slug, found := strings.Cut(link, "/"+locale+"/")
	if !found || slug == "" {
		return "", fmt.Errorf("%w: %s", ErrNoSlug, link)
	}
	return slug, nil
}

// NormalizeSlug turns a raw slug of the given shape into the content API lookup key.
func NormalizeSlug(slug string, shape domain.LinkShape) string {
	switch shape {
	case domain.ShapeAnchorMarker:
		if i := strings.IndexAny(slug, "?#"); i >= 0 {
			slug = slug[:i]
		}
		return strings.TrimRight(slug, "/")
	case domain.ShapeTrailingSlash:
		return strings.TrimSuffix(slug, "/")
	default:
		return slug
	}
}

func (c *Client) ClassifyLink(link string) domain.LinkShape {
	return ClassifyLink(link, c.config.Locale)
}

// ResolveCategoryID maps a product-category link to the id used by the listing API.
func (c *Client) ResolveCategoryID(ctx context.Context, link string) (*domain.ResolvedCategory, error) {
	shape := c.ClassifyLink(link)
	if shape == domain.ShapeDirectProduct {
		return nil, fmt.Errorf("%s is a product link, not a category", link)
	}

	raw, err := ExtractSlug(link, c.config.Locale)
	if err != nil {
		return nil, err
	}

	slug := NormalizeSlug(raw, shape)
	if slug == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoSlug, link)
	}

	body, err := c.fetcher.FetchJSON(ctx, bucketCategoryIDs, c.contentURL(slug), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch content entry for slug %s: %w", slug, err)
	}

	categoryID, err := categoryIDFromContent(body)
	if err != nil {
		return nil, fmt.Errorf("slug %s: %w", slug, err)
	}

	log.Debugf("Resolved slug %s (%s) to category %s", slug, shape, categoryID)
	return &domain.ResolvedCategory{Slug: slug, CategoryID: categoryID}, nil
}

func (c *Client) contentURL(slug string) string {
	return fmt.Sprintf("%s/api/contentful?slug=%s&locale=%s",
		c.origin,
		url.QueryEscape(slug),
		url.QueryEscape(c.config.Locale))
}

// categoryIDFromContent walks entry.linkedEntries in document order and returns the first
// category id listed under fields.staticFilters.
func categoryIDFromContent(body []byte) (string, error) {
	entries := gjson.GetBytes(body, "entry.linkedEntries")
	if !entries.IsObject() {
		return "", ErrNoCategoryFound
	}

	var categoryID string
	entries.ForEach(func(_, entry gjson.Result) bool {
		ids := entry.Get("fields.staticFilters.category_id")
		switch {
		case ids.IsArray():
			if list := ids.Array(); len(list) > 0 {
				categoryID = list[0].String()
			}
		case ids.Type == gjson.String || ids.Type == gjson.Number:
			categoryID = ids.String()
		}
		return categoryID == ""
	})

	if categoryID == "" {
		return "", ErrNoCategoryFound
	}
	return categoryID, nil
}
