package auth

import (
	"context"
	"testing"
	"time"

	"bookLendingManagement/internal/testutil"
)

const testSecret = "test-secret"

func TestIssueAndParseRoundTrip(t *testing.T) {
	tok, err := IssueHS256(testSecret, "user-1", "alice@example.com", KindMember, time.Hour)
	if err != nil {
		t.Fatalf("IssueHS256: %v", err)
	}
	p, err := parseJWT(tok, testSecret)
	if err != nil {
		t.Fatalf("parseJWT: %v", err)
	}
	if p.UserID != "user-1" || p.Email != "alice@example.com" || p.Kind != KindMember {
		t.Fatalf("principal mismatch: %+v", p)
	}
}

func TestParseFromMD_ValidBearer(t *testing.T) {
	tok := testutil.GenerateJWTHS256(t, testSecret, "user-1", "alice@example.com", KindMember)
	ctx := testutil.CtxWithBearer(context.Background(), tok)
	p, err := ParseFromMD(ctx, testSecret)
	if err != nil {
		t.Fatalf("ParseFromMD: %v", err)
	}
	if p.UserID != "user-1" || p.Kind != KindMember {
		t.Fatalf("principal mismatch: %+v", p)
	}
}

func TestParseFromMD_MissingHeader(t *testing.T) {
	_, err := ParseFromMD(context.Background(), testSecret)
	if err == nil {
		t.Fatalf("expected error for missing metadata")
	}
}

func TestParseJWT_WrongSecret(t *testing.T) {
	tok := testutil.GenerateJWTHS256(t, testSecret, "user-1", "a@b.c", KindAdmin)
	if _, err := parseJWT(tok, "wrong"); err == nil {
		t.Fatalf("expected error for wrong secret")
	}
}

func TestParseJWT_ClaimsValidation(t *testing.T) {
	// Missing sub/kind -> invalid
	tok := testutil.GenerateJWTHS256(t, testSecret, "", "", "")
	if _, err := parseJWT(tok, testSecret); err == nil {
		t.Fatalf("expected invalid claims error")
	}
}

func TestIssueHS256_Expiry(t *testing.T) {
	tok, err := IssueHS256(testSecret, "user-1", "a@b.c", KindMember, -time.Minute)
	if err != nil {
		t.Fatalf("IssueHS256: %v", err)
	}
	if _, err := parseJWT(tok, testSecret); err == nil {
		t.Fatalf("expected error for expired token")
	}
}
