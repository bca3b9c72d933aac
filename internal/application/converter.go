package application

import (
	"github.com/dmarques/accounts-api/internal/domain/entity"
)

// Conversion between transfer objects and entities, plus the merge logic
// used by partial updates. All functions are pure; identifier assignment
// belongs to the repositories.

func ptr[T any](v T) *T { return &v }

func coalesce[T any](v *T, fallback T) T {
	if v != nil {
		return *v
	}
	return fallback
}

// ToUser builds a new User entity without an identifier. A nil address or
// phone slice is treated as an empty collection.
func ToUser(d UserDTO) entity.User {
	return entity.User{
		Name:      coalesce(d.Name, ""),
		Email:     coalesce(d.Email, ""),
		Password:  coalesce(d.Password, ""),
		Addresses: ToAddressList(d.Addresses),
		Phones:    ToPhoneList(d.Phones),
	}
}

func ToUserDTO(u entity.User) UserDTO {
	return UserDTO{
		Name:      ptr(u.Name),
		Email:     ptr(u.Email),
		Password:  ptr(u.Password),
		Addresses: ToAddressDTOList(u.Addresses),
		Phones:    ToPhoneDTOList(u.Phones),
	}
}

func ToAddress(d AddressDTO) entity.Address {
	return entity.Address{
		Street:     coalesce(d.Street, ""),
		Number:     coalesce(d.Number, 0),
		Complement: coalesce(d.Complement, ""),
		City:       coalesce(d.City, ""),
		State:      coalesce(d.State, ""),
		PostalCode: coalesce(d.PostalCode, ""),
	}
}

func ToAddressDTO(a entity.Address) AddressDTO {
	return AddressDTO{
		ID:         ptr(a.ID),
		Street:     ptr(a.Street),
		Number:     ptr(a.Number),
		Complement: ptr(a.Complement),
		City:       ptr(a.City),
		State:      ptr(a.State),
		PostalCode: ptr(a.PostalCode),
	}
}

func ToAddressList(ds []AddressDTO) []entity.Address {
	out := make([]entity.Address, 0, len(ds))
	for _, d := range ds {
		out = append(out, ToAddress(d))
	}
	return out
}

func ToAddressDTOList(as []entity.Address) []AddressDTO {
	out := make([]AddressDTO, 0, len(as))
	for _, a := range as {
		out = append(out, ToAddressDTO(a))
	}
	return out
}

func ToPhone(d PhoneDTO) entity.Phone {
	return entity.Phone{
		AreaCode: coalesce(d.AreaCode, ""),
		Number:   coalesce(d.Number, ""),
	}
}

func ToPhoneDTO(p entity.Phone) PhoneDTO {
	return PhoneDTO{
		ID:       ptr(p.ID),
		AreaCode: ptr(p.AreaCode),
		Number:   ptr(p.Number),
	}
}

func ToPhoneList(ds []PhoneDTO) []entity.Phone {
	out := make([]entity.Phone, 0, len(ds))
	for _, d := range ds {
		out = append(out, ToPhone(d))
	}
	return out
}

func ToPhoneDTOList(ps []entity.Phone) []PhoneDTO {
	out := make([]PhoneDTO, 0, len(ps))
	for _, p := range ps {
		out = append(out, ToPhoneDTO(p))
	}
	return out
}

// MergeUser overlays the DTO's present scalar fields onto the stored user.
// Identifier, collections, and timestamps always come from the stored user.
func MergeUser(d UserDTO, u entity.User) entity.User {
	return entity.User{
		ID:        u.ID,
		Name:      coalesce(d.Name, u.Name),
		Email:     coalesce(d.Email, u.Email),
		Password:  coalesce(d.Password, u.Password),
		Addresses: u.Addresses,
		Phones:    u.Phones,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func MergeAddress(d AddressDTO, a entity.Address) entity.Address {
	return entity.Address{
		ID:         a.ID,
		UserID:     a.UserID,
		Street:     coalesce(d.Street, a.Street),
		Number:     coalesce(d.Number, a.Number),
		Complement: coalesce(d.Complement, a.Complement),
		City:       coalesce(d.City, a.City),
		State:      coalesce(d.State, a.State),
		PostalCode: coalesce(d.PostalCode, a.PostalCode),
	}
}

func MergePhone(d PhoneDTO, p entity.Phone) entity.Phone {
	return entity.Phone{
		ID:       p.ID,
		UserID:   p.UserID,
		AreaCode: coalesce(d.AreaCode, p.AreaCode),
		Number:   coalesce(d.Number, p.Number),
	}
}
