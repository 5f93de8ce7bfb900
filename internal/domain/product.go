package domain

// PriceUnavailable is the sentinel price for catalog items whose schema has
// no price field.
const PriceUnavailable = "Price not available"

// Product is the normalized shape of one catalog item returned by the search
// gateway. Never mutated after creation; a new search produces an entirely new
// list that replaces a session's prior one.
type Product struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Brand        string  `json:"brand"`
	Color        string  `json:"color,omitempty"`
	Description  string  `json:"description,omitempty"`
	BulletPoints string  `json:"bullet_points,omitempty"`
	Price        string  `json:"price"`
	ImageURL     string  `json:"image_url"`
	Rating       float64 `json:"rating"`
	Reviews      int     `json:"reviews"`
}

// SearchFilters are the exact-match equality filters a caller can apply to a
// search. They are passed per call, never stored on messages or products.
type SearchFilters struct {
	Brand string `json:"brand,omitempty"`
	Color string `json:"color,omitempty"`
}

// Empty reports whether no filter is set.
func (f SearchFilters) Empty() bool {
	return f.Brand == "" && f.Color == ""
}
