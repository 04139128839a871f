package entity

import "time"

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         string
	Cart         []CartLine
	CartVersion  int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser returns a customer with an empty cart.
func NewUser(email, name, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		Role:         RoleCustomer,
		Cart:         make([]CartLine, 0),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
