package application

import (
	"testing"

	"github.com/dmarques/accounts-api/internal/domain/entity"
)

func strPtr(s string) *string { return &s }
func intPtr(i int64) *int64   { return &i }

func sampleUserDTO() UserDTO {
	return UserDTO{
		Name:     strPtr("Ana"),
		Email:    strPtr("a@x.com"),
		Password: strPtr("secret"),
		Addresses: []AddressDTO{{
			Street:     strPtr("Main Street"),
			Number:     intPtr(100),
			Complement: strPtr("Apt 4"),
			City:       strPtr("Springfield"),
			State:      strPtr("SP"),
			PostalCode: strPtr("01000-000"),
		}},
		Phones: []PhoneDTO{{
			AreaCode: strPtr("11"),
			Number:   strPtr("99999-0000"),
		}},
	}
}

func TestToUserRoundTrip(t *testing.T) {
	dto := sampleUserDTO()
	u := ToUser(dto)

	if u.ID != 0 {
		t.Fatalf("ToUser must not assign an identifier, got %d", u.ID)
	}
	if u.Name != "Ana" || u.Email != "a@x.com" || u.Password != "secret" {
		t.Fatalf("unexpected scalar mapping: %+v", u)
	}

	back := ToUserDTO(u)
	if *back.Name != *dto.Name || *back.Email != *dto.Email || *back.Password != *dto.Password {
		t.Fatalf("round trip lost scalar fields: %+v", back)
	}
	if len(back.Addresses) != 1 || len(back.Phones) != 1 {
		t.Fatalf("round trip lost collections: %+v", back)
	}
	a := back.Addresses[0]
	if *a.Street != "Main Street" || *a.Number != 100 || *a.Complement != "Apt 4" ||
		*a.City != "Springfield" || *a.State != "SP" || *a.PostalCode != "01000-000" {
		t.Fatalf("round trip lost address fields: %+v", a)
	}
	p := back.Phones[0]
	if *p.AreaCode != "11" || *p.Number != "99999-0000" {
		t.Fatalf("round trip lost phone fields: %+v", p)
	}
}

func TestToUserAbsentCollectionsBecomeEmpty(t *testing.T) {
	u := ToUser(UserDTO{Name: strPtr("Ana"), Email: strPtr("a@x.com"), Password: strPtr("secret")})
	if u.Addresses == nil || len(u.Addresses) != 0 {
		t.Fatalf("absent addresses should convert to empty slice, got %#v", u.Addresses)
	}
	if u.Phones == nil || len(u.Phones) != 0 {
		t.Fatalf("absent phones should convert to empty slice, got %#v", u.Phones)
	}
}

func TestMergeUser(t *testing.T) {
	existing := entity.User{
		ID:       7,
		Name:     "Ana",
		Email:    "a@x.com",
		Password: "$hash",
		Addresses: []entity.Address{
			{ID: 1, UserID: 7, Street: "Main Street"},
		},
		Phones: []entity.Phone{
			{ID: 2, UserID: 7, AreaCode: "11"},
		},
	}

	merged := MergeUser(UserDTO{Name: strPtr("Ana Maria")}, existing)
	if merged.ID != 7 {
		t.Fatalf("merge must preserve id, got %d", merged.ID)
	}
	if merged.Name != "Ana Maria" {
		t.Fatalf("present field should win, got %q", merged.Name)
	}
	if merged.Email != "a@x.com" || merged.Password != "$hash" {
		t.Fatalf("absent fields should fall back: %+v", merged)
	}
	if len(merged.Addresses) != 1 || merged.Addresses[0].ID != 1 {
		t.Fatalf("merge must not touch addresses: %+v", merged.Addresses)
	}
	if len(merged.Phones) != 1 || merged.Phones[0].ID != 2 {
		t.Fatalf("merge must not touch phones: %+v", merged.Phones)
	}

	// All fields present
	full := MergeUser(UserDTO{Name: strPtr("B"), Email: strPtr("b@x.com"), Password: strPtr("$new")}, existing)
	if full.Name != "B" || full.Email != "b@x.com" || full.Password != "$new" {
		t.Fatalf("all present fields should win: %+v", full)
	}

	// No fields present
	empty := MergeUser(UserDTO{}, existing)
	if empty.Name != existing.Name || empty.Email != existing.Email || empty.Password != existing.Password {
		t.Fatalf("empty dto should preserve entity: %+v", empty)
	}
}

func TestMergeAddress(t *testing.T) {
	existing := entity.Address{
		ID:         3,
		UserID:     7,
		Street:     "Main Street",
		Number:     100,
		Complement: "Apt 4",
		City:       "Springfield",
		State:      "SP",
		PostalCode: "01000-000",
	}

	merged := MergeAddress(AddressDTO{City: strPtr("Shelbyville"), Number: intPtr(200)}, existing)
	if merged.ID != 3 || merged.UserID != 7 {
		t.Fatalf("merge must preserve id and owner: %+v", merged)
	}
	if merged.City != "Shelbyville" || merged.Number != 200 {
		t.Fatalf("present fields should win: %+v", merged)
	}
	if merged.Street != "Main Street" || merged.Complement != "Apt 4" || merged.State != "SP" || merged.PostalCode != "01000-000" {
		t.Fatalf("absent fields should fall back: %+v", merged)
	}

	// A present empty string is a value, not an absence.
	cleared := MergeAddress(AddressDTO{Complement: strPtr("")}, existing)
	if cleared.Complement != "" {
		t.Fatalf("present empty string should overwrite, got %q", cleared.Complement)
	}
}

func TestMergePhone(t *testing.T) {
	existing := entity.Phone{ID: 5, UserID: 7, AreaCode: "11", Number: "99999-0000"}

	merged := MergePhone(PhoneDTO{Number: strPtr("98888-1111")}, existing)
	if merged.ID != 5 || merged.UserID != 7 {
		t.Fatalf("merge must preserve id and owner: %+v", merged)
	}
	if merged.AreaCode != "11" {
		t.Fatalf("absent area code should fall back, got %q", merged.AreaCode)
	}
	if merged.Number != "98888-1111" {
		t.Fatalf("present number should win, got %q", merged.Number)
	}
}
