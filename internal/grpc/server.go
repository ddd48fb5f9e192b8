//go:build grpcserver

package grpcserver

import (
	"context"
	"errors"
	"net"

	"bookLendingManagement/internal/auth"
	"bookLendingManagement/internal/config"
	"bookLendingManagement/internal/lending"
	"bookLendingManagement/repository"

	catalogv1 "bookLendingManagement/api/catalog/v1"
	identityv1 "bookLendingManagement/api/identity/v1"
	lendingv1 "bookLendingManagement/api/lending/v1"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	healthCheckMethod = "/grpc.health.v1.Health/Check"
	registerMethod    = "/identity.v1.IdentityService/Register"
	loginMethod       = "/identity.v1.IdentityService/Login"
)

// Deps bundles everything the servers need.
type Deps struct {
	Cfg      *config.Config
	Users    *repository.UserRepository
	Books    *repository.BookRepository
	Requests *repository.RequestRepository
	Engine   *lending.Engine
}

// StartGRPC starts the gRPC server on the configured address and returns a
// shutdown function. It registers IdentityService, CatalogService and
// LendingService behind the auth interceptor; Register, Login and health
// checks bypass authentication.
func StartGRPC(deps Deps) (func(context.Context) error, error) {
	if deps.Cfg == nil {
		panic("config is required")
	}

	addr := deps.Cfg.GRPC.Address
	if addr == "" {
		addr = ":50051"
	}

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	srv := grpc.NewServer(grpc.UnaryInterceptor(auth.NewUnaryAuthInterceptor(
		deps.Cfg.Auth.JWTSecret, healthCheckMethod, registerMethod, loginMethod)))

	identityv1.RegisterIdentityServiceServer(srv, &IdentityServer{Users: deps.Users, Secret: deps.Cfg.Auth.JWTSecret})
	catalogv1.RegisterCatalogServiceServer(srv, &CatalogServer{Users: deps.Users, Books: deps.Books, Engine: deps.Engine})
	lendingv1.RegisterLendingServiceServer(srv, &LendingServer{Users: deps.Users, Requests: deps.Requests, Engine: deps.Engine})

	go func() { _ = srv.Serve(lis) }()

	return func(ctx context.Context) error {
		done := make(chan struct{})
		go func() { srv.GracefulStop(); close(done) }()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			srv.Stop()
			return ctx.Err()
		}
	}, nil
}

// mapEngineError translates the engine's failure kinds to gRPC status codes.
// Anything unrecognized is an infrastructure fault and surfaces as Internal.
func mapEngineError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, lending.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, lending.ErrForbidden):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, lending.ErrInvalidState):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, lending.ErrUnavailable):
		return status.Error(codes.ResourceExhausted, err.Error())
	case errors.Is(err, lending.ErrAlreadyActive):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, lending.ErrDuplicatePending):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, lending.ErrInvariantViolation):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, lending.ErrConflict):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Errorf(codes.Internal, "internal error: %v", err)
	}
}
