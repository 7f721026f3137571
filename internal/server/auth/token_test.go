package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/enrollhub/admitd/internal/common"
)

func TestGenerateToken_RoundTrip(t *testing.T) {
	secret := []byte("test-secret")

	token, err := GenerateToken("5f0c0f57-2f4a-4f2e-9c1d-bf2f8b3f7a11", secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	sid, err := SessionIDFromToken(token, secret)
	if err != nil {
		t.Fatalf("SessionIDFromToken: %v", err)
	}
	if sid != "5f0c0f57-2f4a-4f2e-9c1d-bf2f8b3f7a11" {
		t.Errorf("unexpected session id %q", sid)
	}
}

func TestSessionIDFromToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken("sid", []byte("secret-a"), time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	_, err = SessionIDFromToken(token, []byte("secret-b"))
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestSessionIDFromToken_Expired(t *testing.T) {
	secret := []byte("test-secret")
	token, err := GenerateToken("sid", secret, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	_, err = SessionIDFromToken(token, secret)
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestSessionIDFromToken_Garbage(t *testing.T) {
	for _, tkn := range []string{"", "abc", "a.b.c"} {
		if _, err := SessionIDFromToken(tkn, []byte("s")); !errors.Is(err, common.ErrInvalidToken) {
			t.Errorf("token %q: expected ErrInvalidToken, got %v", tkn, err)
		}
	}
}
