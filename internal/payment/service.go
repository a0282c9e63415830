package payment

import (
	"errors"
	"math"

	"go.uber.org/zap"

	"github.com/stepkart/stepkart-backend/internal/order"
)

// Currency is the storefront's settlement currency; amounts go to the
// gateway in paise.
const Currency = "inr"

var (
	ErrAlreadyPaid = errors.New("order payment is already completed")
	ErrZeroAmount  = errors.New("order total must be positive")
)

// Orders is the slice of the order service payments need.
type Orders interface {
	Get(ref string) (order.Order, error)
	SetPayment(ref, paymentStatus, paymentIntentID string) (order.Order, error)
}

type Service struct {
	orders  Orders
	gateway Gateway
	logger  *zap.Logger
}

func NewService(orders Orders, gateway Gateway, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{orders: orders, gateway: gateway, logger: logger}
}

// IntentResult is what the storefront needs to confirm the payment.
type IntentResult struct {
	OrderCode    string  `json:"orderCode"`
	IntentID     string  `json:"intentId"`
	ClientSecret string  `json:"clientSecret"`
	Amount       float64 `json:"amount"`
}

// CreateIntent opens a gateway intent for the order's total and pins the
// intent id on the order.
func (s *Service) CreateIntent(orderRef string) (IntentResult, error) {
	ord, err := s.orders.Get(orderRef)
	if err != nil {
		return IntentResult{}, err
	}
	if ord.PaymentStatus == order.PaymentCompleted {
		return IntentResult{}, ErrAlreadyPaid
	}
	if ord.Total <= 0 {
		return IntentResult{}, ErrZeroAmount
	}

	paise := int64(math.Round(ord.Total * 100))
	id, secret, err := s.gateway.CreateIntent(paise, Currency, ord.Code)
	if err != nil {
		return IntentResult{}, err
	}

	if _, err := s.orders.SetPayment(ord.Code, ord.PaymentStatus, id); err != nil {
		s.logger.Warn("failed to pin payment intent on order",
			zap.String("orderCode", ord.Code), zap.String("intentId", id), zap.Error(err))
	}

	return IntentResult{OrderCode: ord.Code, IntentID: id, ClientSecret: secret, Amount: ord.Total}, nil
}

// ApplyGatewayEvent maps a gateway event to the order's payment status.
// Unknown event types are ignored so the webhook can be subscribed broadly.
func (s *Service) ApplyGatewayEvent(eventType, intentID, orderCode string) error {
	var status string
	switch eventType {
	case "payment_intent.succeeded":
		status = order.PaymentCompleted
	case "payment_intent.payment_failed", "payment_intent.canceled":
		status = order.PaymentFailed
	default:
		s.logger.Debug("ignoring gateway event", zap.String("type", eventType))
		return nil
	}

	if _, err := s.orders.SetPayment(orderCode, status, intentID); err != nil {
		return err
	}
	s.logger.Info("payment status updated",
		zap.String("orderCode", orderCode),
		zap.String("status", status),
		zap.String("intentId", intentID),
	)
	return nil
}
