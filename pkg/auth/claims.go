package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/angelmondragon/bookverse-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID string
	Name   string
	Email  string
	Role   enums.UserRole
	JTI    string
}

// AccessTokenClaims represents the typed JWT issued to storefront users.
// The user id travels in the registered subject claim.
type AccessTokenClaims struct {
	Name  string         `json:"name,omitempty"`
	Email string         `json:"email,omitempty"`
	Role  enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// UserID returns the subject claim.
func (c *AccessTokenClaims) UserID() string {
	if c == nil {
		return ""
	}
	return c.Subject
}
