//go:build grpcserver

package grpcserver

import (
	"context"
	"errors"
	"time"

	identityv1 "bookLendingManagement/api/identity/v1"
	"bookLendingManagement/internal/auth"
	"bookLendingManagement/models"
	"bookLendingManagement/repository"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const tokenTTL = 24 * time.Hour

// IdentityServer implements identity.v1.IdentityService.
type IdentityServer struct {
	identityv1.UnimplementedIdentityServiceServer
	Users  *repository.UserRepository
	Secret string
}

// Register creates an account and returns it with a fresh token. The first
// account ever created becomes the administrator; that decision is made
// inside the user store's transaction.
func (s *IdentityServer) Register(ctx context.Context, req *identityv1.RegisterRequest) (*identityv1.RegisterResponse, error) {
	if req.GetEmail() == "" || req.GetName() == "" || req.GetPassword() == "" {
		return nil, status.Error(codes.InvalidArgument, "email, name and password are required")
	}

	hash, err := auth.HashCredential(req.GetPassword())
	if err != nil {
		return nil, status.Errorf(codes.Internal, "hash credential: %v", err)
	}
	u, err := s.Users.Create(ctx, req.GetEmail(), req.GetName(), hash)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, status.Error(codes.AlreadyExists, "email already registered")
		}
		return nil, status.Errorf(codes.Internal, "create user: %v", err)
	}

	token, err := s.issueToken(u)
	if err != nil {
		return nil, err
	}
	return &identityv1.RegisterResponse{User: toProtoUser(u), Token: token}, nil
}

// Login verifies the credential and returns a fresh token. Unknown emails
// and wrong passwords get the same answer.
func (s *IdentityServer) Login(ctx context.Context, req *identityv1.LoginRequest) (*identityv1.LoginResponse, error) {
	if req.GetEmail() == "" || req.GetPassword() == "" {
		return nil, status.Error(codes.InvalidArgument, "email and password are required")
	}

	u, err := s.Users.GetByEmail(ctx, req.GetEmail())
	if err != nil {
		return nil, status.Errorf(codes.Internal, "get user: %v", err)
	}
	if u == nil || !auth.VerifyCredential(req.GetPassword(), u.PasswordHash) {
		return nil, status.Error(codes.Unauthenticated, "invalid email or password")
	}

	token, err := s.issueToken(u)
	if err != nil {
		return nil, err
	}
	return &identityv1.LoginResponse{User: toProtoUser(u), Token: token}, nil
}

func (s *IdentityServer) issueToken(u *models.User) (string, error) {
	kind := auth.KindMember
	if u.IsAdmin {
		kind = auth.KindAdmin
	}
	token, err := auth.IssueHS256(s.Secret, u.ID, u.Email, kind, tokenTTL)
	if err != nil {
		return "", status.Errorf(codes.Internal, "issue token: %v", err)
	}
	return token, nil
}

func toProtoUser(u *models.User) *identityv1.User {
	return &identityv1.User{
		Id:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}
