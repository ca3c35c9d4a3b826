package models

import "time"

// Address is a reusable postal address referenced by students and parents.
type Address struct {
	ID            int64     `json:"id" db:"id"`
	StreetAddress string    `json:"streetAddress" db:"street_address"`
	City          string    `json:"city" db:"city"`
	State         string    `json:"state" db:"state"`
	PostalCode    string    `json:"postalCode" db:"postal_code"`
	Country       string    `json:"country" db:"country"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}
