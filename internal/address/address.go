package address

type Address struct {
	AddressID  int    `json:"addressId"`
	UserID     int    `json:"userId"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	CreatedAt  string `json:"createdAt,omitempty"`
	UpdatedAt  string `json:"updatedAt,omitempty"`
}

// Complete reports whether the address carries the fields a shipment needs.
func (a Address) Complete() bool {
	return a.Line1 != "" && a.City != "" && a.PostalCode != "" && a.Phone != ""
}
