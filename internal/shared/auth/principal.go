package auth

import (
	"context"
	"errors"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Principal is the authenticated caller
type Principal struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role"`
}

// HasRole reports whether p carries role.
func (p *Principal) HasRole(role string) bool {
	return p != nil && p.Role == role
}

// Verifier turns a bearer token into a Principal.
// Implemented by JWT (HS256) and FirebaseVerifier (Firebase ID tokens).
type Verifier interface {
	Verify(ctx context.Context, token string) (*Principal, error)
}
