package order

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/stepkart/stepkart-backend/internal/address"
	"github.com/stepkart/stepkart-backend/internal/coupon"
	"github.com/stepkart/stepkart-backend/internal/notification"
	"github.com/stepkart/stepkart-backend/internal/user"
)

var (
	ErrEmptyItems      = errors.New("order must contain at least one item")
	ErrBadQuantity     = errors.New("item quantity must be positive")
	ErrNegativeAmount  = errors.New("monetary fields must be non-negative")
	ErrTotalsMismatch  = errors.New("totals do not add up")
	ErrGuestEmail      = errors.New("guest orders require an email")
	ErrUnknownStatus   = errors.New("unknown order status")
	ErrSameStatus      = errors.New("order already has this status")
	ErrUnknownRequester = errors.New("order requires a user or guest identity")
)

// CouponUsage is the hook usage accounting runs through when an order
// carrying a coupon is placed.
type CouponUsage interface {
	RecordUsage(code string, req coupon.Requester, orderID int) error
}

// PlaceInput is the order placement payload after handler-level decoding.
type PlaceInput struct {
	UserID int
	Guest  *GuestInfo

	Items []Item

	Subtotal float64
	Tax      float64
	Shipping float64
	Discount float64
	Total    float64

	CouponCode string

	// AddressID references a stored address; Address carries inline fields.
	// At least one must yield a complete address.
	AddressID int
	Address   *address.Address
}

// UserDirectory resolves a registered user's contact details for
// notifications.
type UserDirectory interface {
	GetByID(id int) (user.User, error)
}

type Service struct {
	repo        Repository
	coupons     CouponUsage
	users       UserDirectory
	dispatcher  *notification.Dispatcher
	storePrefix string
	logger      *zap.Logger
}

func NewService(repo Repository, coupons CouponUsage, users UserDirectory, dispatcher *notification.Dispatcher, storePrefix string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, coupons: coupons, users: users, dispatcher: dispatcher, storePrefix: storePrefix, logger: logger}
}

// Place creates the order atomically: address resolution, order + item
// insertion and the inventory decrement either all commit or nothing
// persists. Notifications fire after commit and are never awaited.
func (s *Service) Place(in PlaceInput) (Order, error) {
	if len(in.Items) == 0 {
		return Order{}, ErrEmptyItems
	}
	for _, it := range in.Items {
		if it.Quantity <= 0 {
			return Order{}, ErrBadQuantity
		}
		if it.Price < 0 {
			return Order{}, ErrNegativeAmount
		}
	}
	if in.Subtotal < 0 || in.Tax < 0 || in.Shipping < 0 || in.Discount < 0 || in.Total < 0 {
		return Order{}, ErrNegativeAmount
	}
	if in.UserID <= 0 {
		if in.Guest == nil {
			return Order{}, ErrUnknownRequester
		}
		if in.Guest.Email == "" {
			return Order{}, ErrGuestEmail
		}
	}

	now := time.Now().UTC()
	nowStr := now.Format(time.RFC3339)
	actor := "customer"
	if in.UserID <= 0 {
		actor = "guest"
	}

	ord := Order{
		Code:          GenerateCode(s.storePrefix, now),
		UserID:        in.UserID,
		Guest:         in.Guest,
		Items:         in.Items,
		Subtotal:      in.Subtotal,
		Tax:           in.Tax,
		Shipping:      in.Shipping,
		Discount:      in.Discount,
		Total:         in.Total,
		CouponCode:    coupon.NormalizeCode(in.CouponCode),
		Status:        StatusConfirmed,
		PaymentStatus: PaymentPending,
		History:       []StatusEntry{{Status: StatusConfirmed, Timestamp: nowStr, Actor: actor}},
		CreatedAt:     nowStr,
		UpdatedAt:     nowStr,
	}
	if in.Address != nil {
		ord.ShippingAddress = *in.Address
	}
	if !ord.TotalsConsistent() {
		return Order{}, ErrTotalsMismatch
	}

	created, err := s.repo.Create(ord, in.AddressID)
	if err != nil {
		return Order{}, err
	}

	if created.CouponCode != "" && s.coupons != nil {
		req := coupon.Requester{UserID: created.UserID}
		if created.UserID <= 0 && created.Guest != nil {
			req = coupon.Requester{GuestEmail: created.Guest.Email}
		}
		if err := s.coupons.RecordUsage(created.CouponCode, req, created.ID); err != nil {
			// the order is already committed; usage accounting failure is
			// logged, not surfaced
			s.logger.Warn("coupon usage accounting failed",
				zap.String("code", created.CouponCode),
				zap.Int("orderId", created.ID),
				zap.Error(err),
			)
		}
	}

	s.notify(notification.TriggerOrderPlaced, created,
		fmt.Sprintf("Order %s confirmed", created.Code),
		fmt.Sprintf("Your order %s has been placed. Total: %.2f", created.Code, created.Total))

	return created, nil
}

// UpdateStatus transitions the order identified by ref (internal id or order
// code) to target. A same-status target is a strict no-op: no history entry,
// no notification, the current state is returned unchanged.
func (s *Service) UpdateStatus(ref, target, actor string, carrier *Carrier) (Order, error) {
	if !ValidStatus(target) {
		return Order{}, ErrUnknownStatus
	}

	ord, err := s.repo.GetByIDOrCode(ref)
	if err != nil {
		return Order{}, err
	}

	if ord.Status == target {
		return ord, nil
	}

	restock := target == StatusCancelled && ord.Status != StatusCancelled

	now := time.Now().UTC().Format(time.RFC3339)
	previous := ord.Status
	ord.Status = target
	ord.History = append(ord.History, StatusEntry{Status: target, Timestamp: now, Actor: actor})
	ord.UpdatedAt = now
	if carrier != nil {
		ord.Carrier = carrier
	}

	updated, err := s.repo.UpdateStatus(ord, restock)
	if err != nil {
		return Order{}, err
	}

	s.notify(notification.TriggerStatusChanged, updated,
		fmt.Sprintf("Order %s is now %s", updated.Code, updated.Status),
		fmt.Sprintf("Your order %s moved from %s to %s", updated.Code, previous, updated.Status))

	return updated, nil
}

// Get resolves an order by id or code.
func (s *Service) Get(ref string) (Order, error) {
	return s.repo.GetByIDOrCode(ref)
}

func (s *Service) ListByUser(userID int) ([]Order, error) {
	return s.repo.ListByUser(userID)
}

func (s *Service) Search(q SearchQuery) ([]Order, error) {
	return s.repo.Search(q)
}

// SetPayment records the gateway outcome for an order and notifies the
// shopper. Used by the payment webhook.
func (s *Service) SetPayment(ref, paymentStatus, paymentIntentID string) (Order, error) {
	ord, err := s.repo.GetByIDOrCode(ref)
	if err != nil {
		return Order{}, err
	}

	updated, err := s.repo.SetPayment(ord.ID, paymentStatus, paymentIntentID, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return Order{}, err
	}

	s.notify(notification.TriggerPaymentUpdate, updated,
		fmt.Sprintf("Payment %s for order %s", updated.PaymentStatus, updated.Code),
		fmt.Sprintf("Payment for order %s is %s", updated.Code, updated.PaymentStatus))

	return updated, nil
}

func (s *Service) notify(trigger string, ord Order, subject, message string) {
	if s.dispatcher == nil {
		return
	}
	s.dispatcher.Dispatch(notification.Notice{
		Trigger:   trigger,
		OrderID:   ord.ID,
		OrderCode: ord.Code,
		Recipient: s.recipientFor(ord),
		Subject:   subject,
		Message:   message,
		Payload:   ord,
	})
}

func (s *Service) recipientFor(ord Order) notification.Recipient {
	if ord.Guest != nil {
		return notification.Recipient{Name: ord.Guest.Name, Email: ord.Guest.Email, Phone: ord.Guest.Phone}
	}
	rcp := notification.Recipient{Name: ord.ShippingAddress.Name, Phone: ord.ShippingAddress.Phone}
	if s.users != nil && ord.UserID > 0 {
		if u, err := s.users.GetByID(ord.UserID); err == nil {
			rcp.Email = u.Email
			if rcp.Phone == "" {
				rcp.Phone = u.Phone
			}
		}
	}
	return rcp
}
