package coupon

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("coupon not found")
	ErrExpired           = errors.New("coupon has expired")
	ErrUsageLimitReached = errors.New("coupon usage limit reached")
	ErrMinOrderNotMet    = errors.New("cart total below minimum order value")
	ErrFirstTimeOnly     = errors.New("coupon is for first-time customers only")
	ErrCodeExists        = errors.New("coupon code already exists")
)

type Repository interface {
	GetByCode(code string) (Coupon, error)
	List() ([]Coupon, error)
	Create(cp Coupon) (Coupon, error)
	Update(id int, cp Coupon) (Coupon, error)
	Delete(id int) error

	// Reserve sweeps expired reservations, then returns the existing
	// non-expired reservation for (code, requester) if there is one, or
	// creates a new one expiring at expiresAt. The whole sequence runs in
	// one transaction. The boolean reports whether a new row was created.
	Reserve(code string, req Requester, now, expiresAt time.Time) (Reservation, bool, error)

	// DeleteReservation removes any reservation for (code, requester),
	// expired or not.
	DeleteReservation(code string, req Requester) error

	// HasUsage reports whether the requester has a usage record for code.
	HasUsage(code string, req Requester) (bool, error)

	// RecordUsage appends a usage row and bumps currentUses, respecting the
	// maxUses cap.
	RecordUsage(code string, req Requester, orderID int, usedAt time.Time) error
}

// InMemoryRepository backs service tests.
type InMemoryRepository struct {
	mu           sync.Mutex
	coupons      []Coupon
	reservations []Reservation
	usages       map[string][]Requester
	nextID       int
}

func NewInMemoryRepository(seed []Coupon) *InMemoryRepository {
	repo := &InMemoryRepository{usages: make(map[string][]Requester), nextID: 1}
	for _, cp := range seed {
		if cp.ID == 0 {
			cp.ID = repo.nextID
		}
		if cp.ID >= repo.nextID {
			repo.nextID = cp.ID + 1
		}
		repo.coupons = append(repo.coupons, cp)
	}
	return repo
}

func (r *InMemoryRepository) GetByCode(code string) (Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, cp := range r.coupons {
		if cp.Code == code {
			return cp, nil
		}
	}
	return Coupon{}, ErrNotFound
}

func (r *InMemoryRepository) List() ([]Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Coupon, len(r.coupons))
	copy(out, r.coupons)
	return out, nil
}

func (r *InMemoryRepository) Create(cp Coupon) (Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.coupons {
		if existing.Code == cp.Code {
			return Coupon{}, ErrCodeExists
		}
	}
	cp.ID = r.nextID
	r.nextID++
	r.coupons = append(r.coupons, cp)
	return cp, nil
}

func (r *InMemoryRepository) Update(id int, cp Coupon) (Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.coupons {
		if existing.ID == id {
			cp.ID = id
			cp.CurrentUses = existing.CurrentUses
			r.coupons[i] = cp
			return cp, nil
		}
	}
	return Coupon{}, ErrNotFound
}

func (r *InMemoryRepository) Delete(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.coupons {
		if existing.ID == id {
			r.coupons = append(r.coupons[:i], r.coupons[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *InMemoryRepository) Reserve(code string, req Requester, now, expiresAt time.Time) (Reservation, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.reservations[:0]
	for _, res := range r.reservations {
		if res.ExpiresAt.After(now) {
			kept = append(kept, res)
		}
	}
	r.reservations = kept

	for _, res := range r.reservations {
		if res.Code == code && res.UserID == req.UserID && res.GuestEmail == req.GuestEmail {
			return res, false, nil
		}
	}

	created := Reservation{
		ID:         uuid.NewString(),
		Code:       code,
		UserID:     req.UserID,
		GuestEmail: req.GuestEmail,
		ExpiresAt:  expiresAt,
	}
	r.reservations = append(r.reservations, created)
	return created, true, nil
}

func (r *InMemoryRepository) DeleteReservation(code string, req Requester) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.reservations[:0]
	for _, res := range r.reservations {
		if res.Code == code && res.UserID == req.UserID && res.GuestEmail == req.GuestEmail {
			continue
		}
		kept = append(kept, res)
	}
	r.reservations = kept
	return nil
}

func (r *InMemoryRepository) HasUsage(code string, req Requester) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.usages[code] {
		if u.UserID == req.UserID && u.GuestEmail == req.GuestEmail {
			return true, nil
		}
	}
	return false, nil
}

func (r *InMemoryRepository) RecordUsage(code string, req Requester, orderID int, usedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, cp := range r.coupons {
		if cp.Code == code {
			if cp.MaxUses != nil && cp.CurrentUses >= *cp.MaxUses {
				return ErrUsageLimitReached
			}
			r.coupons[i].CurrentUses++
			r.usages[code] = append(r.usages[code], req)
			return nil
		}
	}
	return ErrNotFound
}
