//go:build grpcserver

package grpcserver

import (
	"context"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	identityv1 "bookLendingManagement/api/identity/v1"
	"bookLendingManagement/internal/testutil"
	"bookLendingManagement/repository"
)

const testSecret = "test-secret"

func newIdentityServer(t *testing.T, name string) (*IdentityServer, *repository.UserRepository) {
	t.Helper()
	d := testutil.OpenInMemoryDB(t, name)
	users := repository.NewUserRepository(d)
	return &IdentityServer{Users: users, Secret: testSecret}, users
}

func TestRegister_BootstrapAdmin(t *testing.T) {
	s, _ := newIdentityServer(t, "idreg")
	ctx := context.Background()

	first, err := s.Register(ctx, &identityv1.RegisterRequest{Email: "root@example.com", Name: "Root", Password: "pw"})
	if err != nil {
		t.Fatalf("register first: %v", err)
	}
	if !first.GetUser().GetIsAdmin() || first.GetToken() == "" {
		t.Fatalf("first account should be admin with token: %+v", first)
	}

	second, err := s.Register(ctx, &identityv1.RegisterRequest{Email: "bob@example.com", Name: "Bob", Password: "pw"})
	if err != nil {
		t.Fatalf("register second: %v", err)
	}
	if second.GetUser().GetIsAdmin() {
		t.Fatalf("second account must not be admin")
	}

	_, err = s.Register(ctx, &identityv1.RegisterRequest{Email: "bob@example.com", Name: "Bob 2", Password: "pw"})
	if status.Code(err) != codes.AlreadyExists {
		t.Fatalf("expected AlreadyExists for duplicate email, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	s, _ := newIdentityServer(t, "idlogin")
	ctx := context.Background()

	if _, err := s.Register(ctx, &identityv1.RegisterRequest{Email: "alice@example.com", Name: "Alice", Password: "pw"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	resp, err := s.Login(ctx, &identityv1.LoginRequest{Email: "Alice@Example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.GetToken() == "" || resp.GetUser().GetEmail() != "alice@example.com" {
		t.Fatalf("unexpected login response: %+v", resp)
	}

	if _, err := s.Login(ctx, &identityv1.LoginRequest{Email: "alice@example.com", Password: "wrong"}); status.Code(err) != codes.Unauthenticated {
		t.Fatalf("expected Unauthenticated for wrong password, got %v", err)
	}
	if _, err := s.Login(ctx, &identityv1.LoginRequest{Email: "ghost@example.com", Password: "pw"}); status.Code(err) != codes.Unauthenticated {
		t.Fatalf("expected Unauthenticated for unknown email, got %v", err)
	}
}
