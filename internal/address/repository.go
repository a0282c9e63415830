package address

import "errors"

var ErrNotFound = errors.New("address not found")

type Repository interface {
	GetAddresses(userID int) ([]Address, error)
	GetByID(userID, addressID int) (Address, error)
	AddAddress(a Address) (Address, error)
	UpdateAddress(a Address) (Address, error)
	DeleteAddress(userID, addressID int) error
}
