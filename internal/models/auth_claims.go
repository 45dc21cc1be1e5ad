package models

import "github.com/golang-jwt/jwt/v5"

type JwtCustomClaims struct {
	UserID   string `json:"userID"`
	Email    string `json:"email"`
	IsVendor bool   `json:"isVendor,omitempty"`
	IsRider  bool   `json:"isRider,omitempty"`
	IsChef   bool   `json:"isChef,omitempty"`
	jwt.RegisteredClaims
}

// Session is the per-request identity placed on the echo context by the auth
// middleware. Carts and checkout sessions are keyed by CustomerID.
type Session struct {
	CustomerID string
	Email      string
	IsVendor   bool
	IsRider    bool
	IsChef     bool
}

// SessionFromClaims copies the identity out of a validated token.
func SessionFromClaims(c *JwtCustomClaims) Session {
	return Session{
		CustomerID: c.UserID,
		Email:      c.Email,
		IsVendor:   c.IsVendor,
		IsRider:    c.IsRider,
		IsChef:     c.IsChef,
	}
}
