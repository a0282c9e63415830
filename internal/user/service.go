package user

import "golang.org/x/crypto/bcrypt"

// ServiceInterface lets other packages depend on user operations without the
// concrete service.
type ServiceInterface interface {
	GetByID(id int) (User, error)
	Register(u User) (User, error)
	Authenticate(email, password string) (User, error)
	Update(id int, u User) (User, error)
	Search(q SearchQuery) ([]User, error)
}

type Service struct {
	repo Repository
}

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByID(id int) (User, error) {
	return s.repo.GetByID(id)
}

func (s *Service) Register(u User) (User, error) {
	if _, err := s.repo.GetByEmail(u.Email); err == nil {
		return User{}, ErrEmailExists
	} else if err != ErrNotFound {
		return User{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	u.Password = string(hashed)
	u.Role = RoleCustomer
	return s.repo.Create(u)
}

func (s *Service) Authenticate(email, password string) (User, error) {
	u, err := s.repo.GetByEmail(email)
	if err != nil {
		return User{}, ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}

	return u, nil
}

func (s *Service) Update(id int, u User) (User, error) {
	if u.Password != "" && !looksLikeBcrypt(u.Password) {
		hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			return User{}, err
		}
		u.Password = string(hashed)
	}
	return s.repo.Update(id, u)
}

func (s *Service) Search(q SearchQuery) ([]User, error) {
	return s.repo.Search(q)
}

func looksLikeBcrypt(value string) bool {
	return len(value) > 4 && value[0:2] == "$2"
}
