package domain

import "time"

// CrawlSummary holds the counters of one crawl run
type CrawlSummary struct {
	RunID                string    `json:"run_id"`
	StartedAt            time.Time `json:"started_at"`
	FinishedAt           time.Time `json:"finished_at"`
	MainCategories       int       `json:"main_categories"`
	SubCategories        int       `json:"sub_categories"`
	ProductCategoryLinks int       `json:"product_category_links"`
	DirectLinks          int       `json:"direct_links"`
	ResolvedCategories   int       `json:"resolved_categories"`
	SkippedLinks         int       `json:"skipped_links"`
	PagesFetched         int       `json:"pages_fetched"`
	LinksInserted        int       `json:"links_inserted"`
	LinksDuplicate       int       `json:"links_duplicate"`
	LinksFailed          int       `json:"links_failed"`
}
