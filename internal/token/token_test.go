package token_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nbatyrov/contactbook/internal/domain"
	"github.com/nbatyrov/contactbook/internal/token"
)

const testSecret = "token-test-secret-at-least-32-ch!"

func TestIssueVerify_RoundTrip(t *testing.T) {
	issuer := token.NewIssuer([]byte(testSecret), time.Hour)

	raw, err := issuer.Issue("user-1", "a@x.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := issuer.Verify(raw)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Errorf("sub = %q, want %q", claims.Subject, "user-1")
	}
	if claims.Email != "a@x.com" {
		t.Errorf("email = %q, want %q", claims.Email, "a@x.com")
	}
}

func TestVerify_Expired_ErrTokenInvalid(t *testing.T) {
	issuer := token.NewIssuer([]byte(testSecret), -time.Minute)

	raw, err := issuer.Issue("user-1", "a@x.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := issuer.Verify(raw); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("want ErrTokenInvalid, got %v", err)
	}
}

func TestVerify_Tampered_ErrTokenInvalid(t *testing.T) {
	issuer := token.NewIssuer([]byte(testSecret), time.Hour)

	raw, err := issuer.Issue("user-1", "a@x.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	parts := strings.Split(raw, ".")
	tampered := parts[0] + "." + parts[1] + ".AAAA" + parts[2][4:]

	if _, err := issuer.Verify(tampered); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("want ErrTokenInvalid, got %v", err)
	}
}

func TestVerify_WrongKey_ErrTokenInvalid(t *testing.T) {
	raw, err := token.NewIssuer([]byte("another-secret-that-is-32-chars!"), time.Hour).Issue("user-1", "a@x.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	issuer := token.NewIssuer([]byte(testSecret), time.Hour)
	if _, err := issuer.Verify(raw); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("want ErrTokenInvalid, got %v", err)
	}
}

func TestVerify_Garbage_ErrTokenInvalid(t *testing.T) {
	issuer := token.NewIssuer([]byte(testSecret), time.Hour)
	if _, err := issuer.Verify("not.a.jwt"); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("want ErrTokenInvalid, got %v", err)
	}
}
