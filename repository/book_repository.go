package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"bookLendingManagement/models"
)

// BookRepository is the store for Book entities.
// Availability is never written directly; AdjustAvailability is the single
// mutation path for the counter and it is called only by the lending engine
// inside a transaction.
type BookRepository struct {
	q Querier
}

// NewBookRepository creates a new BookRepository on the given DB handle.
func NewBookRepository(db *sql.DB) *BookRepository {
	return &BookRepository{q: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *BookRepository) WithTx(tx *sql.Tx) *BookRepository {
	return &BookRepository{q: tx}
}

// Create inserts a new book. A fresh book starts with every copy on the
// shelf: available is seeded from total.
func (r *BookRepository) Create(ctx context.Context, b *models.Book) (*models.Book, error) {
	if b == nil {
		return nil, errors.New("book is nil")
	}
	if b.Title == "" || b.Author == "" {
		return nil, errors.New("title and author are required")
	}
	if b.Total < 0 {
		return nil, errors.New("total must be >= 0")
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	now := time.Now().UTC()
	created := *b
	created.ID = uuid.NewString()
	created.Available = created.Total
	created.CreatedAt = now
	created.UpdatedAt = now

	var cover sql.NullString
	if created.CoverURL != nil {
		cover = sql.NullString{String: *created.CoverURL, Valid: true}
	}
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO books (id, title, author, cover_url, total, available, created_at, updated_at) VALUES (?,?,?,?,?,?,?,?)`,
		created.ID, created.Title, created.Author, cover, created.Total, created.Available, created.CreatedAt, created.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// GetByID fetches a book by its ID. Returns (nil, nil) when absent.
func (r *BookRepository) GetByID(ctx context.Context, id string) (*models.Book, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	row := r.q.QueryRowContext(ctx,
		`SELECT id, title, author, cover_url, total, available, created_at, updated_at FROM books WHERE id = ?`, id)
	b, err := scanBook(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return b, nil
}

// Update persists the metadata and counter fields of the given book.
// Callers are expected to have loaded the book in the same transaction and
// adjusted the counters under the 0 <= available <= total invariant.
func (r *BookRepository) Update(ctx context.Context, b *models.Book) error {
	if b == nil {
		return errors.New("book is nil")
	}
	if b.Title == "" || b.Author == "" {
		return errors.New("title and author are required")
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var cover sql.NullString
	if b.CoverURL != nil {
		cover = sql.NullString{String: *b.CoverURL, Valid: true}
	}
	res, err := r.q.ExecContext(ctx,
		`UPDATE books SET title = ?, author = ?, cover_url = ?, total = ?, available = ?, updated_at = ? WHERE id = ?`,
		b.Title, b.Author, cover, b.Total, b.Available, b.UpdatedAt, b.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a book by ID. Reference checks (active requests) belong to
// the lending engine; this is the raw row removal.
func (r *BookRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.q.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
	return err
}

// List returns books newest-first. Ties on created_at break on id so the
// order is stable and restartable across pages.
func (r *BookRepository) List(ctx context.Context, limit, offset int) ([]models.Book, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.q.QueryContext(ctx,
		`SELECT id, title, author, cover_url, total, available, created_at, updated_at FROM books ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// AdjustAvailability applies available += delta with the bound
// 0 <= available <= total enforced in the UPDATE itself. It returns the
// number of affected rows: 0 means the book is missing or the adjustment
// would violate the bound, which the caller distinguishes by looking the
// book up in the same transaction.
func (r *BookRepository) AdjustAvailability(ctx context.Context, id string, delta int, now time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.q.ExecContext(ctx,
		`UPDATE books SET available = available + ?, updated_at = ? WHERE id = ? AND available + ? >= 0 AND available + ? <= total`,
		delta, now, id, delta, delta)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(s rowScanner) (*models.Book, error) {
	var b models.Book
	var cover sql.NullString
	if err := s.Scan(&b.ID, &b.Title, &b.Author, &cover, &b.Total, &b.Available, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	if cover.Valid {
		v := cover.String
		b.CoverURL = &v
	}
	return &b, nil
}
