package hmactoken

import (
	"context"
	"testing"
	"time"

	"concierium/internal/ports/auth"
)

func TestNew_RequiresSecret(t *testing.T) {
	if _, err := New("  "); err != ErrSecretEmpty {
		t.Fatalf("got %v, want ErrSecretEmpty", err)
	}
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	tok, err := New("test-secret")
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	raw, err := tok.Issue(auth.Claims{UserID: "u1", Email: "ana@example.com", Role: auth.RoleAdmin})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := tok.Verify(context.Background(), raw)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != "u1" || claims.Email != "ana@example.com" || claims.Role != auth.RoleAdmin {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestIssue_RequiresUserID(t *testing.T) {
	tok, _ := New("test-secret")
	if _, err := tok.Issue(auth.Claims{Email: "x@y.com"}); err == nil {
		t.Fatal("expected error for empty user id")
	}
}

func TestVerify_RejectsWrongSecret(t *testing.T) {
	issuer, _ := New("secret-a")
	verifier, _ := New("secret-b")

	raw, err := issuer.Issue(auth.Claims{UserID: "u1"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := verifier.Verify(context.Background(), raw); err != ErrTokenInvalid {
		t.Fatalf("got %v, want ErrTokenInvalid", err)
	}
}

func TestVerify_RejectsExpired(t *testing.T) {
	tok, _ := New("test-secret")

	issuedAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tok.now = func() time.Time { return issuedAt }
	raw, err := tok.Issue(auth.Claims{UserID: "u1"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Dentro de la ventana de 7 días pasa.
	tok.now = func() time.Time { return issuedAt.Add(6 * 24 * time.Hour) }
	if _, err := tok.Verify(context.Background(), raw); err != nil {
		t.Fatalf("verify within ttl: %v", err)
	}

	// Pasada la ventana, no.
	tok.now = func() time.Time { return issuedAt.Add(8 * 24 * time.Hour) }
	if _, err := tok.Verify(context.Background(), raw); err != ErrTokenInvalid {
		t.Fatalf("got %v, want ErrTokenInvalid after expiry", err)
	}
}

func TestVerify_RejectsGarbage(t *testing.T) {
	tok, _ := New("test-secret")
	for _, raw := range []string{"", "   ", "not.a.token"} {
		if _, err := tok.Verify(context.Background(), raw); err == nil {
			t.Errorf("Verify(%q) should fail", raw)
		}
	}
}
