package cart

import (
	"errors"
	"time"
)

var (
	ErrBadProduct = errors.New("invalid product")
	ErrNoSize     = errors.New("size is required")
)

// Service orchestrates cart operations.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Add merges the line into the cart. A zero quantity returns the current
// cart unchanged; a negative quantity decrements the matching line.
func (s *Service) Add(userID int, line Line) ([]Item, error) {
	if userID <= 0 {
		return nil, ErrNotFound
	}
	if line.ProductID <= 0 {
		return nil, ErrBadProduct
	}
	if line.Size == "" {
		return nil, ErrNoSize
	}
	if line.Quantity == 0 {
		return s.repo.Get(userID)
	}
	return s.repo.Upsert(userID, line, time.Now().UTC().Format(time.RFC3339))
}

func (s *Service) Get(userID int) ([]Item, error) {
	if userID <= 0 {
		return nil, ErrNotFound
	}
	return s.repo.Get(userID)
}

func (s *Service) Clear(userID int) error {
	if userID <= 0 {
		return ErrNotFound
	}
	return s.repo.Clear(userID, time.Now().UTC().Format(time.RFC3339))
}
