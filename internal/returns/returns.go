package returns

import "github.com/stepkart/stepkart-backend/internal/order"

// Return request statuses. PENDING resolves to APPROVED or REJECTED;
// only APPROVED completes.
const (
	StatusPending   = "PENDING"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
	StatusCompleted = "COMPLETED"
)

// Request types. A RETURN refunds the items, an EXCHANGE swaps them.
const (
	TypeReturn   = "RETURN"
	TypeExchange = "EXCHANGE"
)

// ValidTransition reports whether a return may move from one status to
// another. Terminal statuses are REJECTED and COMPLETED.
func ValidTransition(from, to string) bool {
	switch from {
	case StatusPending:
		return to == StatusApproved || to == StatusRejected
	case StatusApproved:
		return to == StatusCompleted
	}
	return false
}

// ValidType reports whether t is a known request type.
func ValidType(t string) bool {
	return t == TypeReturn || t == TypeExchange
}

// ReturnRequest tracks a shopper asking to send items back. Items are a
// subset of the order's item snapshots. RefundAmount and PickupCharge are
// computed at request time from the item snapshots and never recomputed.
type ReturnRequest struct {
	ID        int    `json:"returnId"`
	OrderID   int    `json:"orderId"`
	OrderCode string `json:"orderCode"`
	UserID    int    `json:"userId,omitempty"`
	Email     string `json:"email,omitempty"`

	Type   string       `json:"type"`
	Items  []order.Item `json:"items"`
	Reason string       `json:"reason"`

	RefundAmount float64 `json:"refundAmount"`
	PickupCharge float64 `json:"pickupCharge"`

	Status    string `json:"status"`
	Note      string `json:"note,omitempty"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}
