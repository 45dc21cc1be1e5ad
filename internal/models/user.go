package models

import "time"

// Account is a marketplace customer. The mode flags decide which dashboards the
// client unlocks; they travel in the access token.
type Account struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	Phone        string    `json:"phone,omitempty" db:"phone"`
	PasswordHash string    `json:"-" db:"password_hash"`
	IsVendor     bool      `json:"is_vendor" db:"is_vendor"`
	IsRider      bool      `json:"is_rider" db:"is_rider"`
	IsChef       bool      `json:"is_chef" db:"is_chef"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

type SignupRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=80"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"omitempty,min=9,max=15"`
	Password string `json:"password" validate:"required,min=8"`
	IsVendor bool   `json:"is_vendor"`
	IsRider  bool   `json:"is_rider"`
	IsChef   bool   `json:"is_chef"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	AccessToken string   `json:"access_token"`
	Account     *Account `json:"account"`
}
