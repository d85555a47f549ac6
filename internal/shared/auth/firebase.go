package auth

import (
	"context"
	"fmt"

	fbauth "firebase.google.com/go/v4/auth"
)

// RoleClaim is the custom claim carrying the user's role on Firebase ID tokens.
const RoleClaim = "role"

type idTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// FirebaseVerifier accepts Firebase Authentication ID tokens
type FirebaseVerifier struct {
	client idTokenVerifier
}

func NewFirebaseVerifier(client *fbauth.Client) *FirebaseVerifier {
	return &FirebaseVerifier{client: client}
}

func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (*Principal, error) {
	t, err := v.client.VerifyIDToken(ctx, token)
	if fbauth.IsIDTokenExpired(err) {
		return nil, ErrTokenExpired
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	p := &Principal{ID: t.UID}
	p.Name, _ = t.Claims["name"].(string)
	p.Email, _ = t.Claims["email"].(string)
	p.Role, _ = t.Claims[RoleClaim].(string)
	if p.Name == "" {
		p.Name = p.Email
	}

	return p, nil
}
