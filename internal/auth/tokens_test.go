package auth

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)

	token, issued, err := m.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := m.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("UserID = %q, want user-1", claims.UserID)
	}
	if claims.TokenID != issued.TokenID {
		t.Errorf("TokenID = %q, want %q", claims.TokenID, issued.TokenID)
	}
	if !claims.ExpiresAt.Equal(issued.ExpiresAt) {
		t.Errorf("ExpiresAt = %v, want %v", claims.ExpiresAt, issued.ExpiresAt)
	}
}

func TestTokenRejected(t *testing.T) {
	m := NewTokenManager("secret", time.Minute)
	token, _, err := m.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	other := NewTokenManager("other-secret", time.Minute)
	if _, err := other.Parse(token); err != ErrInvalidToken {
		t.Errorf("wrong secret: err = %v, want ErrInvalidToken", err)
	}

	m.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if _, err := m.Parse(token); err != ErrInvalidToken {
		t.Errorf("expired: err = %v, want ErrInvalidToken", err)
	}

	if _, err := m.Parse("garbage"); err != ErrInvalidToken {
		t.Errorf("garbage: err = %v, want ErrInvalidToken", err)
	}
}
