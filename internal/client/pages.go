package client

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"net/url"
	"strconv"

	log "github.com/sirupsen/logrus"

	"basler/crawler/internal/domain"
)

type listingFilters struct {
	SortDir    []string `json:"sort_dir"`
	Page       []string `json:"page"`
	CategoryID []string `json:"category_id"`
}

// PageCount is the number of listing pages needed for total items at size items per page.
func PageCount(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

func (c *Client) productsURL(categoryID string, page int) (string, error) {
	filters, err := json.Marshal(listingFilters{
		SortDir:    []string{"asc"},
		Page:       []string{strconv.Itoa(page)},
		CategoryID: []string{categoryID},
	})
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s/api/magento/products?store=%s&locale=%s&filters=%s",
		c.origin,
		url.QueryEscape(c.config.Store),
		url.QueryEscape(c.config.Locale),
		url.QueryEscape(string(filters))), nil
}

func (c *Client) GetProductPage(ctx context.Context, categoryID string, pageNumber int) (*domain.ProductPage, error) {
	pageURL, err := c.productsURL(categoryID, pageNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to build listing URL: %w", err)
	}

	body, err := c.fetcher.FetchJSON(ctx, bucketProductPages, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listing page %d of category %s: %w", pageNumber, categoryID, err)
	}

	var page domain.ProductPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("failed to decode listing page %d of category %s: %w", pageNumber, categoryID, err)
	}
	page.PageNumber = pageNumber

	log.Debugf("Fetched listing page %d of category %s with %d items", pageNumber, categoryID, len(page.Items))
	return &page, nil
}

// ProductPages yields every listing page of a category in order. The first page is read
// once to learn total_count; an error is yielded once and ends the sequence.
func (c *Client) ProductPages(ctx context.Context, categoryID string) iter.Seq2[*domain.ProductPage, error] {
	return func(yield func(*domain.ProductPage, error) bool) {
		firstPage, err := c.GetProductPage(ctx, categoryID, 1)
		if err != nil {
			yield(nil, err)
			return
		}

		pageCount := PageCount(firstPage.TotalCount, c.config.PageSize)
		log.Infof("🔄 Category %s: %d products on %d pages", categoryID, firstPage.TotalCount, pageCount)

		for pageNumber := 1; pageNumber <= pageCount; pageNumber++ {
			page := firstPage
			if pageNumber > 1 {
				page, err = c.GetProductPage(ctx, categoryID, pageNumber)
				if err != nil {
					yield(nil, err)
					return
				}
			}

			if !yield(page, nil) {
				return
			}
		}
	}
}

// ProductURL maps a listing url_key to the product page URL.
func (c *Client) ProductURL(urlKey string) string {
	return fmt.Sprintf("%s/%s/shop/%s", c.origin, c.config.Locale, url.PathEscape(urlKey))
}
