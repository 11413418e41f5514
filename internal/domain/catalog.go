package domain

type ProductItem struct {
	URLKey string `json:"url_key"`
}

type ProductPage struct {
	PageNumber int           `json:"-"`           // Requested page, 1-based
	TotalCount int           `json:"total_count"` // Total products in the category
	Items      []ProductItem `json:"items"`       // Products on this page
}

// ResolvedCategory is the outcome of resolving a product-category link through the content API.
type ResolvedCategory struct {
	Slug       string `json:"slug"`
	CategoryID string `json:"category_id"`
}
