package repository

import (
	"context"
	"database/sql"
	"time"

	"bookLendingManagement/models"
)

// Querier is the subset of database/sql used by the repositories. Both
// *sql.DB and *sql.Tx satisfy it, which lets the lending engine run a whole
// read-validate-write sequence against one transaction via WithTx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// UserRepositoryI defines operations on User entities.
type UserRepositoryI interface {
	Create(ctx context.Context, email, name, passwordHash string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context, limit, offset int) ([]models.User, error)
}

// BookRepositoryI defines operations on Book entities (the catalog).
type BookRepositoryI interface {
	Create(ctx context.Context, b *models.Book) (*models.Book, error)
	GetByID(ctx context.Context, id string) (*models.Book, error)
	Update(ctx context.Context, b *models.Book) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit, offset int) ([]models.Book, error)
	AdjustAvailability(ctx context.Context, id string, delta int, now time.Time) (int64, error)
}

// RequestRepositoryI defines operations on BorrowRequest entities (the
// ledger). SetStatus is a raw setter; transition legality is enforced by the
// lending engine, not here.
type RequestRepositoryI interface {
	Create(ctx context.Context, userID, bookID string) (*models.BorrowRequest, error)
	GetByID(ctx context.Context, id string) (*models.BorrowRequest, error)
	SetStatus(ctx context.Context, id string, status models.RequestStatus, decidedAt, dueDate *time.Time) error
	FindActiveForUser(ctx context.Context, userID string) ([]models.BorrowRequest, error)
	FindPendingForBookAndUser(ctx context.Context, bookID, userID string) ([]models.BorrowRequest, error)
	HasActiveForBook(ctx context.Context, bookID string) (bool, error)
	ListAll(ctx context.Context, limit, offset int) ([]models.BorrowRequest, error)
	ListForUser(ctx context.Context, userID string, limit, offset int) ([]models.BorrowRequest, error)
}
