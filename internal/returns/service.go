package returns

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/stepkart/stepkart-backend/internal/notification"
	"github.com/stepkart/stepkart-backend/internal/order"
)

// returnWindow is how long after delivery a return may be requested.
const returnWindow = 14 * 24 * time.Hour

// pickupCharge is the flat fee for collecting the items, deducted from the
// refund on a RETURN.
const pickupCharge = 49.0

var (
	ErrBadType       = errors.New("type must be RETURN or EXCHANGE")
	ErrNotDelivered  = errors.New("order has not been delivered")
	ErrWindowClosed  = errors.New("return window has closed")
	ErrNotOwner      = errors.New("order does not belong to this requester")
	ErrEmptyItems    = errors.New("return must contain at least one item")
	ErrItemsMismatch = errors.New("returned items must match the order")
	ErrBadTransition = errors.New("invalid return status transition")
)

// OrderSource resolves orders for eligibility checks.
type OrderSource interface {
	Get(ref string) (order.Order, error)
}

type Service struct {
	repo       Repository
	orders     OrderSource
	dispatcher *notification.Dispatcher
	logger     *zap.Logger
}

func NewService(repo Repository, orders OrderSource, dispatcher *notification.Dispatcher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, orders: orders, dispatcher: dispatcher, logger: logger}
}

// RequestInput carries a new return request after handler-level decoding.
type RequestInput struct {
	OrderRef   string
	UserID     int
	GuestEmail string
	Type       string
	Items      []order.Item
	Reason     string
}

// Request opens a return for a delivered order. The window runs from the
// DELIVERED entry in the order's status history, not from the order date.
func (s *Service) Request(in RequestInput) (ReturnRequest, error) {
	if in.Type == "" {
		in.Type = TypeReturn
	}
	if !ValidType(in.Type) {
		return ReturnRequest{}, ErrBadType
	}
	if len(in.Items) == 0 {
		return ReturnRequest{}, ErrEmptyItems
	}

	ord, err := s.orders.Get(in.OrderRef)
	if err != nil {
		return ReturnRequest{}, err
	}

	switch {
	case in.UserID > 0:
		if ord.UserID != in.UserID {
			return ReturnRequest{}, ErrNotOwner
		}
	case in.GuestEmail != "":
		if ord.Guest == nil || ord.Guest.Email != in.GuestEmail {
			return ReturnRequest{}, ErrNotOwner
		}
	default:
		return ReturnRequest{}, ErrNotOwner
	}

	if ord.Status != order.StatusDelivered {
		return ReturnRequest{}, ErrNotDelivered
	}
	deliveredAt, ok := deliveredTime(ord)
	if !ok {
		return ReturnRequest{}, ErrNotDelivered
	}
	if time.Now().UTC().Sub(deliveredAt) > returnWindow {
		return ReturnRequest{}, ErrWindowClosed
	}

	if err := itemsWithinOrder(in.Items, ord.Items); err != nil {
		return ReturnRequest{}, err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	ret := ReturnRequest{
		OrderID:      ord.ID,
		OrderCode:    ord.Code,
		UserID:       ord.UserID,
		Type:         in.Type,
		Items:        in.Items,
		Reason:       in.Reason,
		RefundAmount: refundFor(in.Type, in.Items, ord.Items),
		PickupCharge: pickupCharge,
		Status:       StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if ord.Guest != nil {
		ret.Email = ord.Guest.Email
	}

	created, err := s.repo.Create(ret)
	if err != nil {
		return ReturnRequest{}, err
	}

	s.notify(created, ord,
		fmt.Sprintf("Return opened for order %s", ord.Code),
		fmt.Sprintf("We received your return request for order %s. Current status: %s", ord.Code, created.Status))

	return created, nil
}

// Resolve moves a return through its lifecycle. Restocking happens only when
// an approved return completes with restock requested.
func (s *Service) Resolve(id int, target, note string, restock bool) (ReturnRequest, error) {
	ret, err := s.repo.GetByID(id)
	if err != nil {
		return ReturnRequest{}, err
	}
	if !ValidTransition(ret.Status, target) {
		return ReturnRequest{}, ErrBadTransition
	}

	ret.Status = target
	if note != "" {
		ret.Note = note
	}
	ret.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	updated, err := s.repo.Update(ret, target == StatusCompleted && restock)
	if err != nil {
		return ReturnRequest{}, err
	}

	ord, err := s.orders.Get(updated.OrderCode)
	if err != nil {
		// notification loses the address snapshot but still goes out
		s.logger.Warn("order lookup failed for return notification",
			zap.String("orderCode", updated.OrderCode), zap.Error(err))
		ord = order.Order{ID: updated.OrderID, Code: updated.OrderCode, UserID: updated.UserID}
	}
	s.notify(updated, ord,
		fmt.Sprintf("Return %s for order %s", updated.Status, updated.OrderCode),
		fmt.Sprintf("Your return for order %s is now %s", updated.OrderCode, updated.Status))

	return updated, nil
}

func (s *Service) Get(id int) (ReturnRequest, error) { return s.repo.GetByID(id) }

func (s *Service) List() ([]ReturnRequest, error) { return s.repo.List() }

func (s *Service) ListByOrder(id int) ([]ReturnRequest, error) {
	return s.repo.ListByOrder(id)
}

func (s *Service) notify(ret ReturnRequest, ord order.Order, subject, message string) {
	if s.dispatcher == nil {
		return
	}
	rcp := notification.Recipient{Email: ret.Email}
	if ord.Guest != nil {
		rcp = notification.Recipient{Name: ord.Guest.Name, Email: ord.Guest.Email, Phone: ord.Guest.Phone}
	} else if ord.ShippingAddress.Name != "" {
		rcp.Name = ord.ShippingAddress.Name
		rcp.Phone = ord.ShippingAddress.Phone
	}
	s.dispatcher.Dispatch(notification.Notice{
		Trigger:   notification.TriggerReturnUpdate,
		OrderID:   ret.OrderID,
		OrderCode: ret.OrderCode,
		Recipient: rcp,
		Subject:   subject,
		Message:   message,
		Payload:   ret,
	})
}

// deliveredTime finds the timestamp of the DELIVERED entry in the status
// history. The latest entry wins if the order was delivered more than once.
func deliveredTime(ord order.Order) (time.Time, bool) {
	var at time.Time
	found := false
	for _, e := range ord.History {
		if e.Status != order.StatusDelivered {
			continue
		}
		t, err := time.Parse(time.RFC3339, e.Timestamp)
		if err != nil {
			continue
		}
		if !found || t.After(at) {
			at = t
			found = true
		}
	}
	return at, found
}

// refundFor prices the returned lines against the order's own snapshots, so
// client-supplied prices never matter. An EXCHANGE refunds nothing; a RETURN
// refunds the item value less the pickup charge, floored at zero.
func refundFor(reqType string, requested, ordered []order.Item) float64 {
	if reqType != TypeReturn {
		return 0
	}
	prices := make(map[int]float64, len(ordered))
	for _, it := range ordered {
		prices[it.ProductID] = it.Price
	}
	var total float64
	for _, it := range requested {
		total += prices[it.ProductID] * float64(it.Quantity)
	}
	if total < pickupCharge {
		return 0
	}
	return total - pickupCharge
}

// itemsWithinOrder checks every returned line against the order's item
// snapshots: the (product, size) pair must exist and the returned quantity
// may not exceed the purchased quantity.
func itemsWithinOrder(requested, ordered []order.Item) error {
	type key struct {
		productID int
		size      string
	}
	bought := make(map[key]int, len(ordered))
	for _, it := range ordered {
		bought[key{it.ProductID, it.Size}] += it.Quantity
	}
	for _, it := range requested {
		if it.Quantity <= 0 {
			return ErrItemsMismatch
		}
		k := key{it.ProductID, it.Size}
		if bought[k] < it.Quantity {
			return ErrItemsMismatch
		}
		bought[k] -= it.Quantity
	}
	return nil
}
