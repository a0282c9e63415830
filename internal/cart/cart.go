package cart

import "fmt"

// Line is one cart entry. Shoes are carted per size (and optionally color),
// so the same product can appear on several lines.
type Line struct {
	ProductID int    `json:"productId"`
	Size      string `json:"size"`
	Color     string `json:"color,omitempty"`
	Quantity  int    `json:"quantity"`
}

// key identifies a line inside the stored JSON map.
func (l Line) key() string {
	return fmt.Sprintf("%d|%s|%s", l.ProductID, l.Size, l.Color)
}

// Item is a cart line joined with the live product row for display. InStock
// reflects the per-size bucket, not the aggregate.
type Item struct {
	Line
	Name    string  `json:"name"`
	Price   float64 `json:"price"`
	Image   string  `json:"image,omitempty"`
	InStock bool    `json:"inStock"`
}
