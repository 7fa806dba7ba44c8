package token

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestCodec_IssueAndVerify(t *testing.T) {
	codec := NewCodec([]byte("test-secret"))

	tok, err := codec.Issue("event-1", "user-1", time.Hour)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	pair, err := codec.Verify(tok)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if pair.EventID != "event-1" {
		t.Errorf("Expected event-1, got %s", pair.EventID)
	}
	if pair.UserID != "user-1" {
		t.Errorf("Expected user-1, got %s", pair.UserID)
	}
}

func TestCodec_ExpiredToken(t *testing.T) {
	codec := NewCodec([]byte("test-secret"))

	tok, err := codec.Issue("event-1", "user-1", -time.Minute)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	_, err = codec.Verify(tok)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("Expected ErrTokenExpired, got %v", err)
	}
}

func TestCodec_TamperedToken(t *testing.T) {
	codec := NewCodec([]byte("test-secret"))

	tok, err := codec.Issue("event-1", "user-1", time.Hour)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// Flip a character in the signature segment
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		t.Fatalf("Expected 3 JWT segments, got %d", len(parts))
	}
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = codec.Verify(tampered)
	if !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("Expected ErrTokenInvalid, got %v", err)
	}
}

func TestCodec_WrongSecret(t *testing.T) {
	codec := NewCodec([]byte("test-secret"))
	other := NewCodec([]byte("other-secret"))

	tok, err := codec.Issue("event-1", "user-1", time.Hour)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	_, err = other.Verify(tok)
	if !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("Expected ErrTokenInvalid, got %v", err)
	}
}

func TestCodec_Garbage(t *testing.T) {
	codec := NewCodec([]byte("test-secret"))

	_, err := codec.Verify("not-a-token")
	if !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("Expected ErrTokenInvalid, got %v", err)
	}
}
