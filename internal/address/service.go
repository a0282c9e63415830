package address

import "time"

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetAddresses(userID int) ([]Address, error) {
	return s.repo.GetAddresses(userID)
}

func (s *Service) GetByID(userID, addressID int) (Address, error) {
	return s.repo.GetByID(userID, addressID)
}

func (s *Service) AddAddress(a Address) (Address, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	a.CreatedAt = now
	a.UpdatedAt = now
	return s.repo.AddAddress(a)
}

func (s *Service) UpdateAddress(a Address) (Address, error) {
	a.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	return s.repo.UpdateAddress(a)
}

func (s *Service) DeleteAddress(userID, addressID int) error {
	return s.repo.DeleteAddress(userID, addressID)
}
