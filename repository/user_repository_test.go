package repository

import (
	"context"
	"errors"
	"testing"

	"bookLendingManagement/internal/testutil"
)

func TestUserRepository_FirstAccountBecomesAdmin(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "userboot")
	repo := NewUserRepository(d)
	ctx := context.Background()

	first, err := repo.Create(ctx, "Root@Example.com ", "Root", "hash1")
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	if !first.IsAdmin {
		t.Fatalf("first account should be administrator: %+v", first)
	}
	if first.Email != "root@example.com" {
		t.Fatalf("email should be normalized, got %q", first.Email)
	}

	second, err := repo.Create(ctx, "bob@example.com", "Bob", "hash2")
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if second.IsAdmin {
		t.Fatalf("second account must not be administrator: %+v", second)
	}
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "userdup")
	repo := NewUserRepository(d)
	ctx := context.Background()

	if _, err := repo.Create(ctx, "alice@example.com", "Alice", "h"); err != nil {
		t.Fatalf("create: %v", err)
	}
	// Same address in different case collides after normalization.
	_, err := repo.Create(ctx, "ALICE@example.com", "Alice 2", "h")
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestUserRepository_Queries(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "userq")
	repo := NewUserRepository(d)
	ctx := context.Background()

	u, err := repo.Create(ctx, "alice@example.com", "Alice", "h")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	g, err := repo.GetByID(ctx, u.ID)
	if err != nil || g == nil || g.Email != "alice@example.com" {
		t.Fatalf("get by id: %v %+v", err, g)
	}
	g2, err := repo.GetByEmail(ctx, " Alice@Example.COM")
	if err != nil || g2 == nil || g2.ID != u.ID {
		t.Fatalf("get by email: %v %+v", err, g2)
	}
	if g2.PasswordHash != "h" {
		t.Fatalf("password hash should round-trip for credential verification")
	}

	missing, err := repo.GetByID(ctx, "nope")
	if err != nil || missing != nil {
		t.Fatalf("expected (nil, nil) for missing user, got %+v err=%v", missing, err)
	}

	n, err := repo.Count(ctx)
	if err != nil || n != 1 {
		t.Fatalf("count: %v n=%d", err, n)
	}
	list, err := repo.List(ctx, 10, 0)
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %v len=%d", err, len(list))
	}
}
