package domain

import (
	"encoding/json"
	"fmt"
)

// NotApplicable fills the product-category slot of links found directly in the navigation.
const NotApplicable = "N/A"

const (
	labelMainCategory    = "main category link"
	labelSubCategory     = "Sub category link"
	labelProductCategory = "Prod category link"
)

// Lineage records the navigation path that led to a product link.
type Lineage struct {
	MainCategoryLink    string
	SubCategoryLink     string
	ProductCategoryLink string
}

// MarshalJSON writes the lineage as an ordered list of single-key records.
func (l Lineage) MarshalJSON() ([]byte, error) {
	return json.Marshal([]map[string]string{
		{labelMainCategory: l.MainCategoryLink},
		{labelSubCategory: l.SubCategoryLink},
		{labelProductCategory: l.ProductCategoryLink},
	})
}

func (l *Lineage) UnmarshalJSON(data []byte) error {
	var records []map[string]string
	if err := json.Unmarshal(data, &records); err != nil {
		return err
	}

	for _, record := range records {
		for label, value := range record {
			switch label {
			case labelMainCategory:
				l.MainCategoryLink = value
			case labelSubCategory:
				l.SubCategoryLink = value
			case labelProductCategory:
				l.ProductCategoryLink = value
			default:
				return fmt.Errorf("unknown lineage label %q", label)
			}
		}
	}

	return nil
}

type ProductLink struct {
	ProductLink string  `json:"product_link"`
	Lineage     Lineage `json:"metadata"`
}

// StoredProductLink is a products_links row as read back from the database.
type StoredProductLink struct {
	ID          int64
	ProductLink string
	Metadata    string
}

type SaveResult int

const (
	SaveResultInserted SaveResult = iota
	SaveResultDuplicate
)

func (r SaveResult) String() string {
	if r == SaveResultDuplicate {
		return "duplicate"
	}
	return "inserted"
}
