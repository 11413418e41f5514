package client

import (
	"context"
	"fmt"
	"iter"

	log "github.com/sirupsen/logrus"

	"basler/crawler/internal/config"
	"basler/crawler/internal/domain"
	"basler/crawler/internal/fetcher"
)

const (
	bucketMainPage     = "main_page"
	bucketCategoryIDs  = "category_ids"
	bucketProductPages = "product_pages"
)

type BaslerClient interface {
	GetCategoryTree(ctx context.Context) ([]domain.MainCategory, error)
	ClassifyLink(link string) domain.LinkShape
	ResolveCategoryID(ctx context.Context, link string) (*domain.ResolvedCategory, error)
	GetProductPage(ctx context.Context, categoryID string, pageNumber int) (*domain.ProductPage, error)
	ProductPages(ctx context.Context, categoryID string) iter.Seq2[*domain.ProductPage, error]
	ProductURL(urlKey string) string
}

type Client struct {
	config  config.SiteConfig
	origin  string
	fetcher fetcher.Fetcher
	parser  *navigationParser
}

func NewBaslerClient(cfg config.SiteConfig, f fetcher.Fetcher) (*Client, error) {
	origin, err := originOf(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	if cfg.PageSize <= 0 {
		return nil, fmt.Errorf("page size must be positive, got %d", cfg.PageSize)
	}

	return &Client{
		config:  cfg,
		origin:  origin.String(),
		fetcher: f,
		parser:  newNavigationParser(origin, cfg.ExcludedCategories, cfg.MainCategoryOffset, cfg.MainCategoryLimit),
	}, nil
}

// GetCategoryTree fetches the localized landing page and parses its navigation.
func (c *Client) GetCategoryTree(ctx context.Context) ([]domain.MainCategory, error) {
	rootURL := c.config.RootURL()

	html, err := c.fetcher.FetchHTML(ctx, bucketMainPage, rootURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch HTML for root page: %w", err)
	}

	tree, err := c.parser.ParseNavigation(html)
	if err != nil {
		return nil, fmt.Errorf("failed to parse navigation: %w", err)
	}

	log.Infof("Successfully fetched and parsed navigation with %d main categories", len(tree))
	return tree, nil
}
