package auth

import (
	"context"
	"errors"
	"testing"

	fbauth "firebase.google.com/go/v4/auth"
)

type fakeIDTokenVerifier struct {
	token *fbauth.Token
	err   error
}

func (f fakeIDTokenVerifier) VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error) {
	return f.token, f.err
}

func TestFirebaseVerifier_Verify(t *testing.T) {
	v := &FirebaseVerifier{client: fakeIDTokenVerifier{token: &fbauth.Token{
		UID: "uid-42",
		Claims: map[string]interface{}{
			"email":   "ana@example.com",
			RoleClaim: "manager",
		},
	}}}

	p, err := v.Verify(context.Background(), "id-token")
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if p.ID != "uid-42" || p.Role != "manager" || p.Email != "ana@example.com" {
		t.Errorf("Verify() = %+v", p)
	}
	if p.Name != "ana@example.com" {
		t.Errorf("Name should fall back to email, got %q", p.Name)
	}
}

func TestFirebaseVerifier_Invalid(t *testing.T) {
	v := &FirebaseVerifier{client: fakeIDTokenVerifier{err: errors.New("signature mismatch")}}

	if _, err := v.Verify(context.Background(), "bad"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
	}
}
