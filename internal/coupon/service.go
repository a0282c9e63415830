package coupon

import (
	"errors"
	"time"
)

// OrderChecker reports whether a requester has placed any orders before.
// The order package provides the implementation; the indirection keeps the
// first-time-customer check from coupling this package to order internals.
type OrderChecker interface {
	HasOrders(userID int, guestEmail string) (bool, error)
}

type Service struct {
	repo           Repository
	orders         OrderChecker
	reservationTTL time.Duration
}

func NewService(r Repository, orders OrderChecker, reservationTTL time.Duration) *Service {
	if reservationTTL <= 0 {
		reservationTTL = 10 * time.Minute
	}
	return &Service{repo: r, orders: orders, reservationTTL: reservationTTL}
}

// Validate runs the validation chain for a code against a cart total and
// requester. The first failing check wins. On success it returns the coupon
// and the clamped discount amount without touching the reservation ledger.
func (s *Service) Validate(code string, cartTotal float64, req Requester) (Coupon, float64, error) {
	code = NormalizeCode(code)
	if code == "" {
		return Coupon{}, 0, ErrNotFound
	}

	cp, err := s.repo.GetByCode(code)
	if err != nil {
		return Coupon{}, 0, err
	}
	if !cp.Active {
		return Coupon{}, 0, ErrNotFound
	}
	if cp.ExpiresAt != nil && !cp.ExpiresAt.After(time.Now()) {
		return Coupon{}, 0, ErrExpired
	}
	if cp.MaxUses != nil && cp.CurrentUses >= *cp.MaxUses {
		return Coupon{}, 0, ErrUsageLimitReached
	}
	if cartTotal < cp.MinOrderValue {
		return Coupon{}, 0, ErrMinOrderNotMet
	}
	if cp.FirstTimeOnly {
		if s.orders != nil {
			has, err := s.orders.HasOrders(req.UserID, req.GuestEmail)
			if err != nil {
				return Coupon{}, 0, err
			}
			if has {
				return Coupon{}, 0, ErrFirstTimeOnly
			}
		}
		used, err := s.repo.HasUsage(code, req)
		if err != nil {
			return Coupon{}, 0, err
		}
		if used {
			return Coupon{}, 0, ErrFirstTimeOnly
		}
	}

	return cp, cp.Discount(cartTotal), nil
}

// Apply validates the code and then claims it: an existing non-expired
// reservation for the same (code, requester) pair is returned as-is, so
// repeated applies never extend the hold.
func (s *Service) Apply(code string, cartTotal float64, req Requester) (float64, Reservation, error) {
	cp, discount, err := s.Validate(code, cartTotal, req)
	if err != nil {
		return 0, Reservation{}, err
	}

	now := time.Now()
	res, _, err := s.repo.Reserve(cp.Code, req, now, now.Add(s.reservationTTL))
	if err != nil {
		return 0, Reservation{}, err
	}
	return discount, res, nil
}

// Remove drops any reservation for (code, requester), expired or not.
func (s *Service) Remove(code string, req Requester) error {
	return s.repo.DeleteReservation(NormalizeCode(code), req)
}

// RecordUsage is the single place coupon usage accounting happens: it is
// invoked when an order carrying the code is placed, bumping currentUses and
// appending to the usage ledger. See DESIGN.md for why placement time was
// chosen over reservation time.
func (s *Service) RecordUsage(code string, req Requester, orderID int) error {
	return s.repo.RecordUsage(NormalizeCode(code), req, orderID, time.Now().UTC())
}

// Admin CRUD.

func (s *Service) List() ([]Coupon, error) {
	return s.repo.List()
}

func (s *Service) Create(cp Coupon) (Coupon, error) {
	cp.Code = NormalizeCode(cp.Code)
	if cp.Code == "" {
		return Coupon{}, errors.New("code is required")
	}
	if cp.DiscountType != TypePercentage && cp.DiscountType != TypeFlat {
		return Coupon{}, errors.New("discountType must be PERCENTAGE or FLAT")
	}
	if cp.Value <= 0 {
		return Coupon{}, errors.New("value must be positive")
	}
	if cp.DiscountType == TypePercentage && cp.Value > 100 {
		return Coupon{}, errors.New("percentage value cannot exceed 100")
	}
	now := time.Now().UTC().Format(time.RFC3339)
	cp.CreatedAt = now
	cp.UpdatedAt = now
	cp.CurrentUses = 0
	return s.repo.Create(cp)
}

func (s *Service) Update(id int, cp Coupon) (Coupon, error) {
	if cp.DiscountType != TypePercentage && cp.DiscountType != TypeFlat {
		return Coupon{}, errors.New("discountType must be PERCENTAGE or FLAT")
	}
	cp.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	return s.repo.Update(id, cp)
}

func (s *Service) Delete(id int) error {
	return s.repo.Delete(id)
}
