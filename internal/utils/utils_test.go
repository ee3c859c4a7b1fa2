package utils

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func TestSignAndParseJWT(t *testing.T) {
	t.Parallel()

	token, err := SignJWT("secret", "user-1", "client", 5)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	claims, err := ParseJWT("secret", token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != "user-1" || claims.Role != "client" {
		t.Fatalf("claims = %+v", claims)
	}

	if _, err := ParseJWT("other", token); err == nil {
		t.Fatal("expected signature error with wrong secret")
	}

	expired, _ := SignJWT("secret", "user-1", "client", -1)
	if _, err := ParseJWT("secret", expired); err == nil {
		t.Fatal("expected expired token to fail")
	}
}

func TestParseJWTRejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "user-1"})
	raw, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := ParseJWT("secret", raw); err == nil {
		t.Fatal("expected unsigned token to fail")
	}
}

func TestPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword(hash, "hunter22") {
		t.Fatal("expected password to match")
	}
	if CheckPassword(hash, "hunter23") {
		t.Fatal("expected wrong password to fail")
	}
}
