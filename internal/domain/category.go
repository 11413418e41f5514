package domain

// CategoryNode is a single entry of the site navigation
type CategoryNode struct {
	Name  string        `json:"name"`
	Link  string        `json:"link"` // Absolute URL
	Level CategoryLevel `json:"level"`
}

type SubCategory struct {
	CategoryNode
	ProductCategories []CategoryNode `json:"product_categories"`
}

type MainCategory struct {
	CategoryNode
	Subcategories []SubCategory `json:"subcategories"`
}
