package order

import (
	"math"

	"github.com/stepkart/stepkart-backend/internal/address"
)

// Order statuses. Any status may follow any other except a self-transition;
// the loose graph is deliberate (see DESIGN.md).
const (
	StatusConfirmed      = "CONFIRMED"
	StatusShipped        = "SHIPPED"
	StatusOutForDelivery = "OUT_FOR_DELIVERY"
	StatusDelivered      = "DELIVERED"
	StatusCancelled      = "CANCELLED"
	StatusRefunded       = "REFUNDED"
)

// Payment statuses.
const (
	PaymentPending   = "PENDING"
	PaymentCompleted = "COMPLETED"
	PaymentFailed    = "FAILED"
	PaymentRefunded  = "REFUNDED"
)

// ValidStatus reports whether s is a member of the status enum.
func ValidStatus(s string) bool {
	switch s {
	case StatusConfirmed, StatusShipped, StatusOutForDelivery, StatusDelivered, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// Item is a denormalized snapshot of the product at purchase time. It is
// never re-derived from the live product row.
type Item struct {
	ProductID int     `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Size      string  `json:"size"`
	Color     string  `json:"color,omitempty"`
	Quantity  int     `json:"quantity"`
}

// GuestInfo identifies an unauthenticated shopper.
type GuestInfo struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// StatusEntry is one row of the append-only status history.
type StatusEntry struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Actor     string `json:"actor"`
}

// Carrier holds shipment metadata supplied on SHIPPED-like transitions.
type Carrier struct {
	TrackingNumber    string `json:"trackingNumber,omitempty"`
	Courier           string `json:"courier,omitempty"`
	EstimatedDelivery string `json:"estimatedDelivery,omitempty"`
}

type Order struct {
	ID     int        `json:"orderId"`
	Code   string     `json:"orderCode"`
	UserID int        `json:"userId,omitempty"`
	Guest  *GuestInfo `json:"guest,omitempty"`

	Items []Item `json:"items"`

	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Shipping float64 `json:"shipping"`
	Discount float64 `json:"discount"`
	Total    float64 `json:"total"`

	CouponCode string `json:"couponCode,omitempty"`

	Status          string        `json:"status"`
	PaymentStatus   string        `json:"paymentStatus"`
	PaymentIntentID string        `json:"paymentIntentId,omitempty"`
	History         []StatusEntry `json:"statusHistory"`

	ShippingAddress address.Address `json:"shippingAddress"`
	Carrier         *Carrier        `json:"carrier,omitempty"`

	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// roundingTolerance absorbs client-side float arithmetic drift when the
// totals identity is checked.
const roundingTolerance = 0.01

// TotalsConsistent verifies subtotal == sum(items) and
// total == subtotal + tax + shipping - discount, both within the rounding
// tolerance.
func (o Order) TotalsConsistent() bool {
	sum := 0.0
	for _, it := range o.Items {
		sum += it.Price * float64(it.Quantity)
	}
	if math.Abs(sum-o.Subtotal) > roundingTolerance {
		return false
	}
	return math.Abs(o.Subtotal+o.Tax+o.Shipping-o.Discount-o.Total) <= roundingTolerance
}
