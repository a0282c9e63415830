package returns

import (
	"testing"
	"time"

	"github.com/stepkart/stepkart-backend/internal/notification"
	"github.com/stepkart/stepkart-backend/internal/order"
)

type stubOrders struct {
	ord order.Order
	err error
}

func (s stubOrders) Get(ref string) (order.Order, error) {
	if s.err != nil {
		return order.Order{}, s.err
	}
	return s.ord, nil
}

func deliveredOrder(deliveredAgo time.Duration) order.Order {
	deliveredAt := time.Now().UTC().Add(-deliveredAgo)
	return order.Order{
		ID:     42,
		Code:   "SK-20260810-AB12",
		UserID: 5,
		Items: []order.Item{
			{ProductID: 1, Name: "Runner", Price: 100, Size: "8", Quantity: 2},
		},
		Status: order.StatusDelivered,
		History: []order.StatusEntry{
			{Status: order.StatusConfirmed, Timestamp: deliveredAt.Add(-72 * time.Hour).Format(time.RFC3339), Actor: "customer"},
			{Status: order.StatusShipped, Timestamp: deliveredAt.Add(-48 * time.Hour).Format(time.RFC3339), Actor: "admin"},
			{Status: order.StatusDelivered, Timestamp: deliveredAt.Format(time.RFC3339), Actor: "admin"},
		},
	}
}

func newReturnsService(repo Repository, orders OrderSource) (*Service, *notification.Dispatcher, *notification.InMemoryRepository) {
	log := notification.NewInMemoryRepository()
	d := notification.NewDispatcher(log, nil)
	return NewService(repo, orders, d, nil), d, log
}

func validRequest() RequestInput {
	return RequestInput{
		OrderRef: "SK-20260810-AB12",
		UserID:   5,
		Items:    []order.Item{{ProductID: 1, Size: "8", Quantity: 1}},
		Reason:   "too small",
	}
}

func TestRequestOpensPendingReturn(t *testing.T) {
	repo := NewInMemoryRepository()
	svc, d, log := newReturnsService(repo, stubOrders{ord: deliveredOrder(48 * time.Hour)})

	ret, err := svc.Request(validRequest())
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if ret.Status != StatusPending {
		t.Errorf("status = %q, want PENDING", ret.Status)
	}
	if ret.OrderID != 42 || ret.OrderCode != "SK-20260810-AB12" {
		t.Errorf("order linkage wrong: %+v", ret)
	}
	if ret.Type != TypeReturn {
		t.Errorf("type = %q, want default RETURN", ret.Type)
	}
	if ret.RefundAmount != 100-pickupCharge || ret.PickupCharge != pickupCharge {
		t.Errorf("refund = %.2f pickup = %.2f, want %.2f and %.2f",
			ret.RefundAmount, ret.PickupCharge, 100-pickupCharge, pickupCharge)
	}

	d.Wait()
	entries, _ := log.ListByOrderID(42)
	if len(entries) == 0 {
		t.Error("expected a return_update dispatch")
	}
}

func TestRequestWindow(t *testing.T) {
	t.Run("day 13 accepted", func(t *testing.T) {
		svc, _, _ := newReturnsService(NewInMemoryRepository(), stubOrders{ord: deliveredOrder(13 * 24 * time.Hour)})
		if _, err := svc.Request(validRequest()); err != nil {
			t.Errorf("err = %v, want nil", err)
		}
	})
	t.Run("day 15 rejected", func(t *testing.T) {
		svc, _, _ := newReturnsService(NewInMemoryRepository(), stubOrders{ord: deliveredOrder(15 * 24 * time.Hour)})
		if _, err := svc.Request(validRequest()); err != ErrWindowClosed {
			t.Errorf("err = %v, want ErrWindowClosed", err)
		}
	})
}

func TestExchangeRefundsNothing(t *testing.T) {
	svc, _, _ := newReturnsService(NewInMemoryRepository(), stubOrders{ord: deliveredOrder(time.Hour)})

	in := validRequest()
	in.Type = TypeExchange
	ret, err := svc.Request(in)
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if ret.Type != TypeExchange || ret.RefundAmount != 0 {
		t.Errorf("exchange = %+v, want zero refund", ret)
	}
}

func TestRequestRejectsUnknownType(t *testing.T) {
	svc, _, _ := newReturnsService(NewInMemoryRepository(), stubOrders{ord: deliveredOrder(time.Hour)})

	in := validRequest()
	in.Type = "STORE_CREDIT"
	if _, err := svc.Request(in); err != ErrBadType {
		t.Fatalf("err = %v, want ErrBadType", err)
	}
}

func TestRefundIgnoresClientPrices(t *testing.T) {
	svc, _, _ := newReturnsService(NewInMemoryRepository(), stubOrders{ord: deliveredOrder(time.Hour)})

	in := validRequest()
	in.Items = []order.Item{{ProductID: 1, Size: "8", Quantity: 1, Price: 9999}}
	ret, err := svc.Request(in)
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if ret.RefundAmount != 100-pickupCharge {
		t.Errorf("refund = %.2f, want order-snapshot pricing %.2f", ret.RefundAmount, 100-pickupCharge)
	}
}

func TestRequestRequiresDeliveredOrder(t *testing.T) {
	ord := deliveredOrder(time.Hour)
	ord.Status = order.StatusShipped
	svc, _, _ := newReturnsService(NewInMemoryRepository(), stubOrders{ord: ord})

	if _, err := svc.Request(validRequest()); err != ErrNotDelivered {
		t.Fatalf("err = %v, want ErrNotDelivered", err)
	}
}

func TestRequestOwnership(t *testing.T) {
	svc, _, _ := newReturnsService(NewInMemoryRepository(), stubOrders{ord: deliveredOrder(time.Hour)})

	in := validRequest()
	in.UserID = 99
	if _, err := svc.Request(in); err != ErrNotOwner {
		t.Errorf("wrong user: err = %v, want ErrNotOwner", err)
	}

	in = validRequest()
	in.UserID = 0
	in.GuestEmail = "someone@example.com"
	if _, err := svc.Request(in); err != ErrNotOwner {
		t.Errorf("guest email on a registered order: err = %v, want ErrNotOwner", err)
	}
}

func TestRequestItemsMustMatchOrder(t *testing.T) {
	svc, _, _ := newReturnsService(NewInMemoryRepository(), stubOrders{ord: deliveredOrder(time.Hour)})

	in := validRequest()
	in.Items = []order.Item{{ProductID: 1, Size: "9", Quantity: 1}}
	if _, err := svc.Request(in); err != ErrItemsMismatch {
		t.Errorf("wrong size: err = %v, want ErrItemsMismatch", err)
	}

	in = validRequest()
	in.Items = []order.Item{{ProductID: 1, Size: "8", Quantity: 3}}
	if _, err := svc.Request(in); err != ErrItemsMismatch {
		t.Errorf("too many: err = %v, want ErrItemsMismatch", err)
	}
}

func TestResolveTransitions(t *testing.T) {
	repo := NewInMemoryRepository()
	svc, _, _ := newReturnsService(repo, stubOrders{ord: deliveredOrder(time.Hour)})

	ret, err := svc.Request(validRequest())
	if err != nil {
		t.Fatalf("Request: %v", err)
	}

	if _, err := svc.Resolve(ret.ID, StatusCompleted, "", false); err != ErrBadTransition {
		t.Fatalf("pending->completed: err = %v, want ErrBadTransition", err)
	}

	approved, err := svc.Resolve(ret.ID, StatusApproved, "looks legit", false)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Note != "looks legit" {
		t.Errorf("note = %q", approved.Note)
	}

	if _, err := svc.Resolve(ret.ID, StatusRejected, "", false); err != ErrBadTransition {
		t.Fatalf("approved->rejected: err = %v, want ErrBadTransition", err)
	}

	done, err := svc.Resolve(ret.ID, StatusCompleted, "", true)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.Status != StatusCompleted {
		t.Errorf("status = %q", done.Status)
	}
	if repo.Restocks != 1 {
		t.Errorf("restocks = %d, want 1", repo.Restocks)
	}

	if _, err := svc.Resolve(ret.ID, StatusApproved, "", false); err != ErrBadTransition {
		t.Fatalf("completed is terminal: err = %v, want ErrBadTransition", err)
	}
}

func TestResolveCompletionWithoutRestock(t *testing.T) {
	repo := NewInMemoryRepository()
	svc, _, _ := newReturnsService(repo, stubOrders{ord: deliveredOrder(time.Hour)})

	ret, _ := svc.Request(validRequest())
	svc.Resolve(ret.ID, StatusApproved, "", false)
	if _, err := svc.Resolve(ret.ID, StatusCompleted, "", false); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if repo.Restocks != 0 {
		t.Errorf("restocks = %d, want 0 when not requested", repo.Restocks)
	}
}
