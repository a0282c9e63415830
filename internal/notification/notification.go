package notification

import "time"

// Triggers a dispatch can be fired for.
const (
	TriggerOrderPlaced   = "order_placed"
	TriggerStatusChanged = "status_changed"
	TriggerPaymentUpdate = "payment_update"
	TriggerReturnUpdate  = "return_update"
)

// Per-channel outcomes recorded in the log.
const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// Recipient identifies who a notice is addressed to. Either field may be
// empty; a channel that needs the missing one reports a failure for its own
// attempt only.
type Recipient struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Notice is the dispatcher's input: everything a channel needs to attempt
// delivery, already resolved by the caller. Payload carries the full order
// (or return request) for channels that forward structured data.
type Notice struct {
	Trigger   string    `json:"trigger"`
	OrderID   int       `json:"orderId"`
	OrderCode string    `json:"orderCode"`
	Recipient Recipient `json:"recipient"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Payload   any       `json:"payload,omitempty"`
}

// Entry is one append-only log row recording a single channel attempt.
type Entry struct {
	ID        int       `json:"id"`
	OrderID   int       `json:"orderId"`
	Channel   string    `json:"channel"`
	Trigger   string    `json:"trigger"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
