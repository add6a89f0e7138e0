package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// Address is a value object representing a delivery address.
// It is immutable - all operations return new Address instances.
// Governorate doubles as the region code used for zone-based shipping rates.
type Address struct {
	governorate string
	city        string
	street      string
	notes       string
}

// NewAddress creates a new Address. Governorate, city and street are required.
func NewAddress(governorate, city, street string) (Address, error) {
	governorate = normalizeRegion(governorate)
	city = strings.TrimSpace(city)
	street = strings.TrimSpace(street)

	if governorate == "" {
		return Address{}, fmt.Errorf("governorate cannot be empty")
	}
	if len(governorate) > 50 {
		return Address{}, fmt.Errorf("governorate cannot exceed 50 characters")
	}
	if city == "" {
		return Address{}, fmt.Errorf("city cannot be empty")
	}
	if len(city) > 100 {
		return Address{}, fmt.Errorf("city cannot exceed 100 characters")
	}
	if street == "" {
		return Address{}, fmt.Errorf("street address cannot be empty")
	}
	if len(street) > 300 {
		return Address{}, fmt.Errorf("street address cannot exceed 300 characters")
	}

	return Address{governorate: governorate, city: city, street: street}, nil
}

// MustNewAddress creates a new Address, panics on error
func MustNewAddress(governorate, city, street string) Address {
	addr, err := NewAddress(governorate, city, street)
	if err != nil {
		panic(err)
	}
	return addr
}

// WithNotes returns a copy of the address with delivery notes attached
func (a Address) WithNotes(notes string) Address {
	a.notes = strings.TrimSpace(notes)
	return a
}

// Governorate returns the governorate (region code)
func (a Address) Governorate() string {
	return a.governorate
}

// City returns the city
func (a Address) City() string {
	return a.city
}

// Street returns the street address
func (a Address) Street() string {
	return a.street
}

// Notes returns the optional delivery notes
func (a Address) Notes() string {
	return a.notes
}

// IsEmpty returns true if the address has no fields set
func (a Address) IsEmpty() bool {
	return a.governorate == "" && a.city == "" && a.street == ""
}

// String returns a single-line representation
func (a Address) String() string {
	parts := []string{a.street, a.city, a.governorate}
	nonEmpty := parts[:0]
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, ", ")
}

// normalizeRegion lowercases and trims a region code so that rate lookups
// are case-insensitive ("Cairo" and "cairo" hit the same zone rate)
func normalizeRegion(region string) string {
	return strings.ToLower(strings.TrimSpace(region))
}

// NormalizeRegion exposes region normalization for shipping rate lookups
func NormalizeRegion(region string) string {
	return normalizeRegion(region)
}

type addressJSON struct {
	Governorate string `json:"governorate"`
	City        string `json:"city"`
	Street      string `json:"street"`
	Notes       string `json:"notes,omitempty"`
}

// MarshalJSON implements json.Marshaler
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(addressJSON{
		Governorate: a.governorate,
		City:        a.city,
		Street:      a.street,
		Notes:       a.notes,
	})
}

// UnmarshalJSON implements json.Unmarshaler
func (a *Address) UnmarshalJSON(data []byte) error {
	var raw addressJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	a.governorate = normalizeRegion(raw.Governorate)
	a.city = strings.TrimSpace(raw.City)
	a.street = strings.TrimSpace(raw.Street)
	a.notes = strings.TrimSpace(raw.Notes)
	return nil
}

// Value implements driver.Valuer - stored as JSON
func (a Address) Value() (driver.Value, error) {
	return json.Marshal(addressJSON{
		Governorate: a.governorate,
		City:        a.city,
		Street:      a.street,
		Notes:       a.notes,
	})
}

// Scan implements sql.Scanner
func (a *Address) Scan(value interface{}) error {
	if value == nil {
		*a = Address{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Address", value)
	}
	return a.UnmarshalJSON(data)
}
