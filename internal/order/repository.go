package order

import "errors"

var (
	ErrNotFound = errors.New("order not found")

	// ErrAddressRequired means no usable shipping address remained after
	// resolution; the placement transaction is aborted.
	ErrAddressRequired = errors.New("shipping address is required")
)

// SearchQuery carries the optional predicates the admin order search
// composes. Zero values mean "not filtered". CreatedFrom/CreatedTo are
// RFC3339 strings matching the stored timestamps.
type SearchQuery struct {
	Status        string
	PaymentStatus string
	UserID        int
	CodePrefix    string
	CreatedFrom   string
	CreatedTo     string
}

type Repository interface {
	// Create persists the order, its items and the shipping address snapshot
	// and decrements the per-size inventory bucket for every item, all in
	// one transaction. addressID > 0 resolves a stored address for the
	// order's user inside the same transaction.
	Create(ord Order, addressID int) (Order, error)

	// GetByIDOrCode resolves ref against the numeric order id or the
	// human-facing order code; either match is equivalent downstream.
	GetByIDOrCode(ref string) (Order, error)

	ListByUser(userID int) ([]Order, error)
	Search(q SearchQuery) ([]Order, error)

	// UpdateStatus persists the order's status, history and carrier fields.
	// With restock set it also re-increments the per-size bucket for every
	// item, in the same transaction.
	UpdateStatus(ord Order, restock bool) (Order, error)

	// SetPayment persists payment status and intent id.
	SetPayment(orderID int, paymentStatus, paymentIntentID string, updatedAt string) (Order, error)

	// HasOrders reports whether the given user or guest email has placed
	// any order. Satisfies coupon.OrderChecker.
	HasOrders(userID int, guestEmail string) (bool, error)
}
