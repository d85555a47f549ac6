package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestJWT_GenerateAndVerify(t *testing.T) {
	j := NewJWT("my-secret-key", time.Hour)
	want := Principal{ID: "user-1", Name: "Maria Silva", Email: "maria@example.com", Role: "manager"}

	token, err := j.Generate(want)
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}
	if token == "" {
		t.Fatal("Generate() returned empty token")
	}

	got, err := j.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify() failed: %v", err)
	}
	if *got != want {
		t.Errorf("Verify() = %+v, want %+v", *got, want)
	}

	// tampered signature
	parts := strings.Split(token, ".")
	_, err = j.Validate(parts[0] + "." + parts[1] + ".invalid-signature")
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate() tampered error = %v, want ErrInvalidToken", err)
	}

	// invalid format
	if _, err := j.Validate("invalid.token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate() format error = %v, want ErrInvalidToken", err)
	}
}

func TestJWT_WrongSecret(t *testing.T) {
	token, err := NewJWT("secret-a", time.Hour).Generate(Principal{ID: "u", Role: "manager"})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := NewJWT("secret-b", time.Hour).Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate() error = %v, want ErrInvalidToken", err)
	}
}

func TestJWT_ExpiredToken(t *testing.T) {
	j := NewJWT("my-secret-key", time.Hour)

	claims := Claims{
		Role: "manager",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   "user-1",
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-25 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-1 * time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		t.Fatal(err)
	}

	_, err = j.Validate(token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Validate() error = %v, want ErrTokenExpired", err)
	}
}

func TestJWT_RejectsOtherAlgorithms(t *testing.T) {
	j := NewJWT("my-secret-key", time.Hour)

	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer, Subject: "user-1"}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := j.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate() error = %v, want ErrInvalidToken", err)
	}
}

func TestJWT_MissingSubject(t *testing.T) {
	j := NewJWT("my-secret-key", time.Hour)
	token, err := j.Generate(Principal{Name: "nobody"})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := j.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate() error = %v, want ErrInvalidToken", err)
	}
}

func TestPrincipal_HasRole(t *testing.T) {
	var nilPrincipal *Principal
	if nilPrincipal.HasRole("manager") {
		t.Error("nil principal should have no role")
	}
	p := &Principal{Role: "manager"}
	if !p.HasRole("manager") || p.HasRole("admin") {
		t.Error("HasRole() mismatch")
	}
}
