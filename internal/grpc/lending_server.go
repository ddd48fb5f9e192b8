//go:build grpcserver

package grpcserver

import (
	"context"
	"time"

	lendingv1 "bookLendingManagement/api/lending/v1"
	"bookLendingManagement/internal/auth"
	"bookLendingManagement/internal/lending"
	"bookLendingManagement/models"
	"bookLendingManagement/repository"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// LendingServer implements lending.v1.LendingService. All mutations run
// through the lending engine; the server only maps identities, arguments
// and errors.
type LendingServer struct {
	lendingv1.UnimplementedLendingServiceServer
	Users    *repository.UserRepository
	Requests *repository.RequestRepository
	Engine   *lending.Engine
}

func (s *LendingServer) RequestBorrow(ctx context.Context, req *lendingv1.RequestBorrowRequest) (*lendingv1.RequestBorrowResponse, error) {
	if req.GetBookId() == "" {
		return nil, status.Error(codes.InvalidArgument, "book_id is required")
	}
	p, err := auth.RequireMember(ctx)
	if err != nil {
		return nil, err
	}
	r, err := s.Engine.RequestBorrow(ctx, p.UserID, req.GetBookId())
	if err != nil {
		return nil, mapEngineError(err)
	}
	return &lendingv1.RequestBorrowResponse{Request: toProtoRequest(r)}, nil
}

func (s *LendingServer) ReturnBook(ctx context.Context, req *lendingv1.ReturnBookRequest) (*lendingv1.ReturnBookResponse, error) {
	if req.GetRequestId() == "" {
		return nil, status.Error(codes.InvalidArgument, "request_id is required")
	}
	// Owner or administrator; the engine decides which, so any
	// authenticated principal may ask.
	p, err := auth.RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	r, err := s.Engine.Return(ctx, p.UserID, req.GetRequestId())
	if err != nil {
		return nil, mapEngineError(err)
	}
	return &lendingv1.ReturnBookResponse{Request: toProtoRequest(r)}, nil
}

func (s *LendingServer) ListMyRequests(ctx context.Context, req *lendingv1.ListMyRequestsRequest) (*lendingv1.ListMyRequestsResponse, error) {
	p, err := auth.RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	list, err := s.Requests.ListForUser(ctx, p.UserID, pageSize(req.GetLimit()), int(req.GetOffset()))
	if err != nil {
		return nil, status.Errorf(codes.Internal, "list requests: %v", err)
	}
	resp := &lendingv1.ListMyRequestsResponse{Requests: make([]*lendingv1.BorrowRequest, 0, len(list))}
	for i := range list {
		resp.Requests = append(resp.Requests, toProtoRequest(&list[i]))
	}
	return resp, nil
}

func (s *LendingServer) ApproveRequest(ctx context.Context, req *lendingv1.ApproveRequestRequest) (*lendingv1.ApproveRequestResponse, error) {
	if req.GetRequestId() == "" {
		return nil, status.Error(codes.InvalidArgument, "request_id is required")
	}
	p, err := auth.RequireAdmin(ctx, s.Users)
	if err != nil {
		return nil, err
	}
	r, err := s.Engine.Approve(ctx, p.UserID, req.GetRequestId())
	if err != nil {
		return nil, mapEngineError(err)
	}
	return &lendingv1.ApproveRequestResponse{Request: toProtoRequest(r)}, nil
}

func (s *LendingServer) RejectRequest(ctx context.Context, req *lendingv1.RejectRequestRequest) (*lendingv1.RejectRequestResponse, error) {
	if req.GetRequestId() == "" {
		return nil, status.Error(codes.InvalidArgument, "request_id is required")
	}
	p, err := auth.RequireAdmin(ctx, s.Users)
	if err != nil {
		return nil, err
	}
	r, err := s.Engine.Reject(ctx, p.UserID, req.GetRequestId())
	if err != nil {
		return nil, mapEngineError(err)
	}
	return &lendingv1.RejectRequestResponse{Request: toProtoRequest(r)}, nil
}

func (s *LendingServer) ListRequests(ctx context.Context, req *lendingv1.ListRequestsRequest) (*lendingv1.ListRequestsResponse, error) {
	if _, err := auth.RequireAdmin(ctx, s.Users); err != nil {
		return nil, err
	}
	list, err := s.Requests.ListAll(ctx, pageSize(req.GetLimit()), int(req.GetOffset()))
	if err != nil {
		return nil, status.Errorf(codes.Internal, "list requests: %v", err)
	}
	resp := &lendingv1.ListRequestsResponse{Requests: make([]*lendingv1.BorrowRequest, 0, len(list))}
	for i := range list {
		resp.Requests = append(resp.Requests, toProtoRequest(&list[i]))
	}
	return resp, nil
}

func pageSize(limit int32) int {
	size := int(limit)
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return size
}

func toProtoStatus(s models.RequestStatus) lendingv1.Status {
	switch s {
	case models.RequestStatusPending:
		return lendingv1.Status_PENDING
	case models.RequestStatusApproved:
		return lendingv1.Status_APPROVED
	case models.RequestStatusRejected:
		return lendingv1.Status_REJECTED
	case models.RequestStatusReturned:
		return lendingv1.Status_RETURNED
	default:
		return lendingv1.Status_STATUS_UNSPECIFIED
	}
}

func toProtoRequest(r *models.BorrowRequest) *lendingv1.BorrowRequest {
	out := &lendingv1.BorrowRequest{
		Id:          r.ID,
		UserId:      r.UserID,
		BookId:      r.BookID,
		Status:      toProtoStatus(r.Status),
		RequestedAt: r.RequestedAt.Format(time.RFC3339),
	}
	if r.DecidedAt != nil {
		v := r.DecidedAt.Format(time.RFC3339)
		out.DecidedAt = &v
	}
	if r.DueDate != nil {
		v := r.DueDate.Format(time.RFC3339)
		out.DueDate = &v
	}
	return out
}
