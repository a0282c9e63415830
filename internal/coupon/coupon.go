package coupon

import (
	"strings"
	"time"
)

// Discount types.
const (
	TypePercentage = "PERCENTAGE"
	TypeFlat       = "FLAT"
)

type Coupon struct {
	ID            int        `json:"id"`
	Code          string     `json:"code"`
	DiscountType  string     `json:"discountType"`
	Value         float64    `json:"value"`
	MinOrderValue float64    `json:"minOrderValue,omitempty"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
	MaxUses       *int       `json:"maxUses,omitempty"`
	CurrentUses   int        `json:"currentUses"`
	FirstTimeOnly bool       `json:"firstTimeOnly"`
	Active        bool       `json:"active"`
	CreatedAt     string     `json:"createdAt,omitempty"`
	UpdatedAt     string     `json:"updatedAt,omitempty"`
}

// Discount computes the discount amount for a cart total. The result never
// exceeds the cart total.
func (cp Coupon) Discount(cartTotal float64) float64 {
	var amount float64
	switch cp.DiscountType {
	case TypePercentage:
		amount = cartTotal * cp.Value / 100
	case TypeFlat:
		amount = cp.Value
	}
	if amount > cartTotal {
		amount = cartTotal
	}
	if amount < 0 {
		amount = 0
	}
	return amount
}

// Requester identifies who is applying a coupon: a registered user or a
// guest keyed by email.
type Requester struct {
	UserID     int    `json:"userId,omitempty"`
	GuestEmail string `json:"guestEmail,omitempty"`
}

// Reservation is a short-lived claim on a coupon code for one requester.
type Reservation struct {
	ID         string    `json:"id"`
	Code       string    `json:"code"`
	UserID     int       `json:"userId,omitempty"`
	GuestEmail string    `json:"guestEmail,omitempty"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// NormalizeCode upper-cases and trims a coupon code; codes are
// case-insensitive on input and stored upper-cased.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
