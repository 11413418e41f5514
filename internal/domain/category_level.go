package domain

type CategoryLevel int

const (
	LevelMain CategoryLevel = iota
	LevelSub
	LevelProductCategory
)

func (l CategoryLevel) String() string {
	switch l {
	case LevelMain:
		return "main"
	case LevelSub:
		return "sub"
	case LevelProductCategory:
		return "product_category"
	default:
		return "unknown"
	}
}

// LinkShape classifies a product-category link by how it has to be handled.
type LinkShape int

const (
	ShapeDirectProduct LinkShape = iota // links straight to a /shop/ product page
	ShapeTrailingSlash                  // category slug ending in "/"
	ShapeAnchorMarker                   // category slug carrying the "#products" jump marker
	ShapePlainSlug                      // bare category slug
)

func (s LinkShape) String() string {
	switch s {
	case ShapeDirectProduct:
		return "direct_product"
	case ShapeTrailingSlash:
		return "trailing_slash"
	case ShapeAnchorMarker:
		return "anchor_marker"
	case ShapePlainSlug:
		return "plain_slug"
	default:
		return "unknown"
	}
}
