package application

// Transfer objects exchanged at the service boundary. Pointer fields
// distinguish "absent" from "zero value" so partial updates can merge
// only what the caller actually sent. A nil Addresses/Phones slice means
// the collection was not provided.

type UserDTO struct {
	Name      *string      `json:"name,omitempty"`
	Email     *string      `json:"email,omitempty"`
	Password  *string      `json:"password,omitempty"`
	Addresses []AddressDTO `json:"addresses,omitempty"`
	Phones    []PhoneDTO   `json:"phones,omitempty"`
}

type AddressDTO struct {
	ID         *int64  `json:"id,omitempty"`
	Street     *string `json:"street,omitempty"`
	Number     *int64  `json:"number,omitempty"`
	Complement *string `json:"complement,omitempty"`
	City       *string `json:"city,omitempty"`
	State      *string `json:"state,omitempty"`
	PostalCode *string `json:"postal_code,omitempty"`
}

type PhoneDTO struct {
	ID       *int64  `json:"id,omitempty"`
	AreaCode *string `json:"area_code,omitempty"`
	Number   *string `json:"number,omitempty"`
}
