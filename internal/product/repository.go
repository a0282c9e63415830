package product

import (
	"errors"

	"github.com/stepkart/stepkart-backend/internal/database"
)

var ErrNotFound = errors.New("product not found")

type Repository interface {
	List() ([]Product, error)
	GetByID(id int) (Product, error)
	Create(p Product) (Product, error)
	Update(id int, p Product) (Product, error)
	Delete(id int) error

	// DecrementSize and IncrementSize mutate one per-size bucket through the
	// provided Querier so order placement and cancellation can run them
	// inside their own transaction. Decrement floors the bucket at zero; both
	// recompute the aggregate stock column from the buckets afterwards.
	DecrementSize(q database.Querier, productID int, size string, qty int) error
	IncrementSize(q database.Querier, productID int, size string, qty int) error
}
