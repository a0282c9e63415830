package payment

import (
	"testing"

	"github.com/stepkart/stepkart-backend/internal/order"
)

type fakeGateway struct {
	amount   int64
	currency string
	code     string
	err      error
}

func (g *fakeGateway) CreateIntent(amount int64, currency, orderCode string) (string, string, error) {
	g.amount = amount
	g.currency = currency
	g.code = orderCode
	if g.err != nil {
		return "", "", g.err
	}
	return "pi_test_123", "secret_abc", nil
}

type fakeOrders struct {
	ord      order.Order
	payments []string
}

func (f *fakeOrders) Get(ref string) (order.Order, error) {
	if f.ord.Code == "" {
		return order.Order{}, order.ErrNotFound
	}
	return f.ord, nil
}

func (f *fakeOrders) SetPayment(ref, paymentStatus, paymentIntentID string) (order.Order, error) {
	f.payments = append(f.payments, paymentStatus)
	f.ord.PaymentStatus = paymentStatus
	f.ord.PaymentIntentID = paymentIntentID
	return f.ord, nil
}

func TestCreateIntentConvertsTotalToPaise(t *testing.T) {
	gw := &fakeGateway{}
	orders := &fakeOrders{ord: order.Order{ID: 1, Code: "SK-20260101-AAAA", Total: 2499.50, PaymentStatus: order.PaymentPending}}
	svc := NewService(orders, gw, nil)

	res, err := svc.CreateIntent("SK-20260101-AAAA")
	if err != nil {
		t.Fatalf("CreateIntent: %v", err)
	}
	if gw.amount != 249950 {
		t.Errorf("amount = %d paise, want 249950", gw.amount)
	}
	if gw.currency != Currency {
		t.Errorf("currency = %q", gw.currency)
	}
	if res.ClientSecret != "secret_abc" || res.IntentID != "pi_test_123" {
		t.Errorf("result = %+v", res)
	}
	if orders.ord.PaymentIntentID != "pi_test_123" {
		t.Errorf("intent id not pinned on order: %q", orders.ord.PaymentIntentID)
	}
}

func TestCreateIntentRejectsPaidOrder(t *testing.T) {
	orders := &fakeOrders{ord: order.Order{Code: "SK-1", Total: 100, PaymentStatus: order.PaymentCompleted}}
	svc := NewService(orders, &fakeGateway{}, nil)

	if _, err := svc.CreateIntent("SK-1"); err != ErrAlreadyPaid {
		t.Fatalf("err = %v, want ErrAlreadyPaid", err)
	}
}

func TestCreateIntentRejectsZeroTotal(t *testing.T) {
	orders := &fakeOrders{ord: order.Order{Code: "SK-1", Total: 0, PaymentStatus: order.PaymentPending}}
	svc := NewService(orders, &fakeGateway{}, nil)

	if _, err := svc.CreateIntent("SK-1"); err != ErrZeroAmount {
		t.Fatalf("err = %v, want ErrZeroAmount", err)
	}
}

func TestApplyGatewayEvent(t *testing.T) {
	cases := []struct {
		event string
		want  []string
	}{
		{"payment_intent.succeeded", []string{order.PaymentCompleted}},
		{"payment_intent.payment_failed", []string{order.PaymentFailed}},
		{"payment_intent.canceled", []string{order.PaymentFailed}},
		{"charge.refund.updated", nil},
	}
	for _, tc := range cases {
		t.Run(tc.event, func(t *testing.T) {
			orders := &fakeOrders{ord: order.Order{Code: "SK-1", Total: 100}}
			svc := NewService(orders, &fakeGateway{}, nil)

			if err := svc.ApplyGatewayEvent(tc.event, "pi_1", "SK-1"); err != nil {
				t.Fatalf("ApplyGatewayEvent: %v", err)
			}
			if len(orders.payments) != len(tc.want) {
				t.Fatalf("payments = %v, want %v", orders.payments, tc.want)
			}
			for i := range tc.want {
				if orders.payments[i] != tc.want[i] {
					t.Errorf("payments[%d] = %q, want %q", i, orders.payments[i], tc.want[i])
				}
			}
		})
	}
}
