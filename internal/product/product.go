package product

// Product represents a catalog entry. The per-size stock breakdown lives in
// the product_sizes table; Stock is the aggregate and always equals the sum
// of the size buckets.
type Product struct {
	ID          int            `json:"productId"`
	Name        string         `json:"productName"`
	Category    string         `json:"category,omitempty"`
	Price       float64        `json:"price"`
	Description string         `json:"description,omitempty"`
	Image       string         `json:"image,omitempty"`
	Sizes       map[string]int `json:"sizes"`
	Stock       int            `json:"stock"`
	Active      bool           `json:"active"`
	CreatedAt   string         `json:"createdAt,omitempty"`
	UpdatedAt   string         `json:"updatedAt,omitempty"`
}

// AggregateStock sums the per-size buckets.
func AggregateStock(sizes map[string]int) int {
	total := 0
	for _, n := range sizes {
		total += n
	}
	return total
}
