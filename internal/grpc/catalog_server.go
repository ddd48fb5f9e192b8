//go:build grpcserver

package grpcserver

import (
	"context"
	"time"

	catalogv1 "bookLendingManagement/api/catalog/v1"
	"bookLendingManagement/internal/auth"
	"bookLendingManagement/internal/lending"
	"bookLendingManagement/models"
	"bookLendingManagement/repository"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	maxPageSize     = 100 // Maximum allowed page size for list operations.
	defaultPageSize = 20  // Default page size for list operations.
)

// CatalogServer implements catalog.v1.CatalogService. Reads go straight to
// the book repository; every write goes through the lending engine so the
// availability invariant holds.
type CatalogServer struct {
	catalogv1.UnimplementedCatalogServiceServer
	Users  *repository.UserRepository
	Books  *repository.BookRepository
	Engine *lending.Engine
}

func (s *CatalogServer) CreateBook(ctx context.Context, req *catalogv1.CreateBookRequest) (*catalogv1.CreateBookResponse, error) {
	p, err := auth.RequireAdmin(ctx, s.Users)
	if err != nil {
		return nil, err
	}
	b, err := s.Engine.CreateBook(ctx, p.UserID, req.GetTitle(), req.GetAuthor(), req.CoverUrl, int(req.GetTotal()))
	if err != nil {
		return nil, mapEngineError(err)
	}
	return &catalogv1.CreateBookResponse{Book: toProtoBook(b)}, nil
}

func (s *CatalogServer) UpdateBook(ctx context.Context, req *catalogv1.UpdateBookRequest) (*catalogv1.UpdateBookResponse, error) {
	if req.GetBookId() == "" {
		return nil, status.Error(codes.InvalidArgument, "book_id is required")
	}
	p, err := auth.RequireAdmin(ctx, s.Users)
	if err != nil {
		return nil, err
	}

	patch := lending.BookPatch{
		Title:    req.Title,
		Author:   req.Author,
		CoverURL: req.CoverUrl,
	}
	if req.Total != nil {
		total := int(req.GetTotal())
		patch.Total = &total
	}
	b, err := s.Engine.UpdateBook(ctx, p.UserID, req.GetBookId(), patch)
	if err != nil {
		return nil, mapEngineError(err)
	}
	return &catalogv1.UpdateBookResponse{Book: toProtoBook(b)}, nil
}

func (s *CatalogServer) DeleteBook(ctx context.Context, req *catalogv1.DeleteBookRequest) (*catalogv1.DeleteBookResponse, error) {
	if req.GetBookId() == "" {
		return nil, status.Error(codes.InvalidArgument, "book_id is required")
	}
	p, err := auth.RequireAdmin(ctx, s.Users)
	if err != nil {
		return nil, err
	}
	if err := s.Engine.DeleteBook(ctx, p.UserID, req.GetBookId()); err != nil {
		return nil, mapEngineError(err)
	}
	return &catalogv1.DeleteBookResponse{}, nil
}

func (s *CatalogServer) GetBook(ctx context.Context, req *catalogv1.GetBookRequest) (*catalogv1.GetBookResponse, error) {
	if req.GetBookId() == "" {
		return nil, status.Error(codes.InvalidArgument, "book_id is required")
	}
	if _, err := auth.RequirePrincipal(ctx); err != nil {
		return nil, err
	}
	b, err := s.Books.GetByID(ctx, req.GetBookId())
	if err != nil {
		return nil, status.Errorf(codes.Internal, "get book: %v", err)
	}
	if b == nil {
		return nil, status.Error(codes.NotFound, "book not found")
	}
	return &catalogv1.GetBookResponse{Book: toProtoBook(b)}, nil
}

func (s *CatalogServer) ListBooks(ctx context.Context, req *catalogv1.ListBooksRequest) (*catalogv1.ListBooksResponse, error) {
	if _, err := auth.RequirePrincipal(ctx); err != nil {
		return nil, err
	}
	limit := int(req.GetLimit())
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	list, err := s.Books.List(ctx, limit, int(req.GetOffset()))
	if err != nil {
		return nil, status.Errorf(codes.Internal, "list books: %v", err)
	}
	resp := &catalogv1.ListBooksResponse{Books: make([]*catalogv1.Book, 0, len(list))}
	for i := range list {
		resp.Books = append(resp.Books, toProtoBook(&list[i]))
	}
	return resp, nil
}

func toProtoBook(b *models.Book) *catalogv1.Book {
	return &catalogv1.Book{
		Id:        b.ID,
		Title:     b.Title,
		Author:    b.Author,
		CoverUrl:  b.CoverURL,
		Total:     int32(b.Total),
		Available: int32(b.Available),
		CreatedAt: b.CreatedAt.Format(time.RFC3339),
		UpdatedAt: b.UpdatedAt.Format(time.RFC3339),
	}
}
