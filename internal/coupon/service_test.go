package coupon

import (
	"testing"
	"time"
)

type stubOrders struct {
	has bool
}

func (s stubOrders) HasOrders(userID int, guestEmail string) (bool, error) {
	return s.has, nil
}

func intPtr(n int) *int              { return &n }
func timePtr(t time.Time) *time.Time { return &t }

func seedService(t *testing.T, coupons []Coupon, orders OrderChecker, ttl time.Duration) *Service {
	t.Helper()
	return NewService(NewInMemoryRepository(coupons), orders, ttl)
}

func TestValidateChain(t *testing.T) {
	expired := timePtr(time.Now().Add(-time.Hour))
	coupons := []Coupon{
		{Code: "SAVE10", DiscountType: TypePercentage, Value: 10, Active: true},
		{Code: "GONE", DiscountType: TypeFlat, Value: 50, Active: true, ExpiresAt: expired},
		{Code: "CAPPED", DiscountType: TypeFlat, Value: 50, Active: true, MaxUses: intPtr(1), CurrentUses: 1},
		{Code: "BIGCART", DiscountType: TypeFlat, Value: 50, Active: true, MinOrderValue: 1000},
		{Code: "DISABLED", DiscountType: TypeFlat, Value: 50, Active: false},
	}
	svc := seedService(t, coupons, stubOrders{}, time.Minute)
	req := Requester{UserID: 1}

	cases := []struct {
		name string
		code string
		cart float64
		want error
	}{
		{"ok", "SAVE10", 500, nil},
		{"case-insensitive input", "save10", 500, nil},
		{"unknown code", "NOPE", 500, ErrNotFound},
		{"inactive treated as missing", "DISABLED", 500, ErrNotFound},
		{"expired", "GONE", 500, ErrExpired},
		{"usage cap hit", "CAPPED", 500, ErrUsageLimitReached},
		{"below min order", "BIGCART", 500, ErrMinOrderNotMet},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.Validate(tc.code, tc.cart, req)
			if err != tc.want {
				t.Errorf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestDiscountClampedToCartTotal(t *testing.T) {
	svc := seedService(t, []Coupon{
		{Code: "FLAT500", DiscountType: TypeFlat, Value: 500, Active: true},
	}, stubOrders{}, time.Minute)

	_, discount, err := svc.Validate("FLAT500", 300, Requester{UserID: 1})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if discount != 300 {
		t.Errorf("discount = %v, want clamp to cart total 300", discount)
	}
}

func TestPercentageDiscount(t *testing.T) {
	svc := seedService(t, []Coupon{
		{Code: "SAVE25", DiscountType: TypePercentage, Value: 25, Active: true},
	}, stubOrders{}, time.Minute)

	_, discount, err := svc.Validate("SAVE25", 400, Requester{UserID: 1})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if discount != 100 {
		t.Errorf("discount = %v, want 100", discount)
	}
}

func TestFirstTimeOnly(t *testing.T) {
	coupons := []Coupon{{Code: "WELCOME", DiscountType: TypeFlat, Value: 100, Active: true, FirstTimeOnly: true}}

	t.Run("new customer accepted", func(t *testing.T) {
		svc := seedService(t, coupons, stubOrders{has: false}, time.Minute)
		if _, _, err := svc.Validate("WELCOME", 500, Requester{UserID: 1}); err != nil {
			t.Errorf("err = %v, want nil", err)
		}
	})

	t.Run("returning customer rejected", func(t *testing.T) {
		svc := seedService(t, coupons, stubOrders{has: true}, time.Minute)
		if _, _, err := svc.Validate("WELCOME", 500, Requester{UserID: 1}); err != ErrFirstTimeOnly {
			t.Errorf("err = %v, want ErrFirstTimeOnly", err)
		}
	})

	t.Run("prior usage rejected even without orders", func(t *testing.T) {
		svc := seedService(t, coupons, stubOrders{has: false}, time.Minute)
		if err := svc.RecordUsage("WELCOME", Requester{GuestEmail: "g@example.com"}, 1); err != nil {
			t.Fatalf("RecordUsage: %v", err)
		}
		if _, _, err := svc.Validate("WELCOME", 500, Requester{GuestEmail: "g@example.com"}); err != ErrFirstTimeOnly {
			t.Errorf("err = %v, want ErrFirstTimeOnly", err)
		}
	})
}

func TestApplyReusesReservationWithoutExtendingIt(t *testing.T) {
	svc := seedService(t, []Coupon{
		{Code: "HOLD", DiscountType: TypeFlat, Value: 10, Active: true},
	}, stubOrders{}, 10*time.Minute)
	req := Requester{UserID: 9}

	_, first, err := svc.Apply("HOLD", 100, req)
	if err != nil {
		t.Fatalf("first Apply: %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	_, second, err := svc.Apply("HOLD", 100, req)
	if err != nil {
		t.Fatalf("second Apply: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("second apply created a new reservation: %s vs %s", second.ID, first.ID)
	}
	if !second.ExpiresAt.Equal(first.ExpiresAt) {
		t.Errorf("re-apply extended the hold: %v vs %v", second.ExpiresAt, first.ExpiresAt)
	}
}

func TestApplyDistinctRequestersGetDistinctReservations(t *testing.T) {
	svc := seedService(t, []Coupon{
		{Code: "HOLD", DiscountType: TypeFlat, Value: 10, Active: true},
	}, stubOrders{}, 10*time.Minute)

	_, a, err := svc.Apply("HOLD", 100, Requester{UserID: 1})
	if err != nil {
		t.Fatalf("Apply user: %v", err)
	}
	_, b, err := svc.Apply("HOLD", 100, Requester{GuestEmail: "g@example.com"})
	if err != nil {
		t.Fatalf("Apply guest: %v", err)
	}
	if a.ID == b.ID {
		t.Error("distinct requesters must not share a reservation")
	}
}

func TestExpiredReservationIsReplaced(t *testing.T) {
	repo := NewInMemoryRepository([]Coupon{
		{Code: "HOLD", DiscountType: TypeFlat, Value: 10, Active: true},
	})
	req := Requester{UserID: 4}

	past := time.Now().Add(-time.Minute)
	first, created, err := repo.Reserve("HOLD", req, past.Add(-10*time.Minute), past)
	if err != nil || !created {
		t.Fatalf("seed reservation: err=%v created=%v", err, created)
	}

	now := time.Now()
	second, created, err := repo.Reserve("HOLD", req, now, now.Add(10*time.Minute))
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if !created {
		t.Error("an expired reservation must not be reused")
	}
	if second.ID == first.ID {
		t.Error("expected a fresh reservation id after expiry")
	}
}

func TestRecordUsageEnforcesMaxUses(t *testing.T) {
	svc := seedService(t, []Coupon{
		{Code: "ONCE", DiscountType: TypeFlat, Value: 10, Active: true, MaxUses: intPtr(1)},
	}, stubOrders{}, time.Minute)

	if err := svc.RecordUsage("ONCE", Requester{UserID: 1}, 11); err != nil {
		t.Fatalf("first usage: %v", err)
	}
	if err := svc.RecordUsage("ONCE", Requester{UserID: 2}, 12); err != ErrUsageLimitReached {
		t.Fatalf("err = %v, want ErrUsageLimitReached", err)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := seedService(t, nil, stubOrders{}, time.Minute)

	if _, err := svc.Create(Coupon{Code: "", DiscountType: TypeFlat, Value: 5}); err == nil {
		t.Error("empty code must be rejected")
	}
	if _, err := svc.Create(Coupon{Code: "X", DiscountType: "HALF", Value: 5}); err == nil {
		t.Error("unknown discount type must be rejected")
	}
	if _, err := svc.Create(Coupon{Code: "X", DiscountType: TypePercentage, Value: 150}); err == nil {
		t.Error("percentage above 100 must be rejected")
	}

	created, err := svc.Create(Coupon{Code: "ok10", DiscountType: TypePercentage, Value: 10, Active: true})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Code != "OK10" {
		t.Errorf("code not normalized on create: %q", created.Code)
	}
	if _, err := svc.Create(Coupon{Code: "OK10", DiscountType: TypeFlat, Value: 5, Active: true}); err != ErrCodeExists {
		t.Errorf("err = %v, want ErrCodeExists", err)
	}
}
