package product

import (
	"errors"
	"time"
)

// ServiceInterface lets other packages depend on product lookups without the
// concrete service.
type ServiceInterface interface {
	List() ([]Product, error)
	GetByID(id int) (Product, error)
}

type Service struct {
	repo Repository
}

var _ ServiceInterface = (*Service)(nil)

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

func (s *Service) List() ([]Product, error) {
	return s.repo.List()
}

func (s *Service) GetByID(id int) (Product, error) {
	return s.repo.GetByID(id)
}

func (s *Service) Create(p Product) (Product, error) {
	if p.Name == "" {
		return Product{}, errors.New("product name is required")
	}
	if p.Price < 0 {
		return Product{}, errors.New("price must be non-negative")
	}
	if p.Sizes == nil {
		p.Sizes = map[string]int{}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	p.CreatedAt = now
	p.UpdatedAt = now
	p.Active = true
	return s.repo.Create(p)
}

func (s *Service) Update(id int, p Product) (Product, error) {
	if p.Price < 0 {
		return Product{}, errors.New("price must be non-negative")
	}
	if p.Sizes == nil {
		p.Sizes = map[string]int{}
	}
	p.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	return s.repo.Update(id, p)
}

func (s *Service) Delete(id int) error {
	return s.repo.Delete(id)
}
