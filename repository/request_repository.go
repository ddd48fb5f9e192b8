package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"bookLendingManagement/models"
)

// RequestRepository is the store for BorrowRequest rows. Rows are never
// deleted; terminal requests remain as an audit trail. Transition legality
// lives in the lending engine, so SetStatus is a raw setter.
type RequestRepository struct {
	q Querier
}

// NewRequestRepository creates a new RequestRepository on the given DB handle.
func NewRequestRepository(db *sql.DB) *RequestRepository {
	return &RequestRepository{q: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *RequestRepository) WithTx(tx *sql.Tx) *RequestRepository {
	return &RequestRepository{q: tx}
}

// Create inserts a pending request for (userID, bookID) stamped with the
// current time.
func (r *RequestRepository) Create(ctx context.Context, userID, bookID string) (*models.BorrowRequest, error) {
	if userID == "" || bookID == "" {
		return nil, errors.New("user id and book id are required")
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	req := models.BorrowRequest{
		ID:          uuid.NewString(),
		UserID:      userID,
		BookID:      bookID,
		Status:      models.RequestStatusPending,
		RequestedAt: time.Now().UTC(),
	}
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO borrow_requests (id, user_id, book_id, status, requested_at) VALUES (?,?,?,?,?)`,
		req.ID, req.UserID, req.BookID, string(req.Status), req.RequestedAt)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// GetByID fetches a request by ID. Returns (nil, nil) when absent.
func (r *RequestRepository) GetByID(ctx context.Context, id string) (*models.BorrowRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	row := r.q.QueryRowContext(ctx,
		`SELECT id, user_id, book_id, status, requested_at, decided_at, due_date FROM borrow_requests WHERE id = ?`, id)
	req, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return req, nil
}

// SetStatus overwrites status, decided_at and due_date for the given row.
func (r *RequestRepository) SetStatus(ctx context.Context, id string, status models.RequestStatus, decidedAt, dueDate *time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var dec, due sql.NullTime
	if decidedAt != nil {
		dec = sql.NullTime{Time: *decidedAt, Valid: true}
	}
	if dueDate != nil {
		due = sql.NullTime{Time: *dueDate, Valid: true}
	}
	res, err := r.q.ExecContext(ctx,
		`UPDATE borrow_requests SET status = ?, decided_at = ?, due_date = ? WHERE id = ?`,
		string(status), dec, due, id)
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

// FindActiveForUser returns the user's requests with status pending or
// approved, oldest first.
func (r *RequestRepository) FindActiveForUser(ctx context.Context, userID string) ([]models.BorrowRequest, error) {
	return r.query(ctx,
		`SELECT id, user_id, book_id, status, requested_at, decided_at, due_date FROM borrow_requests
		 WHERE user_id = ? AND status IN ('pending','approved') ORDER BY requested_at, id`, userID)
}

// FindPendingForBookAndUser returns pending requests for (bookID, userID).
func (r *RequestRepository) FindPendingForBookAndUser(ctx context.Context, bookID, userID string) ([]models.BorrowRequest, error) {
	return r.query(ctx,
		`SELECT id, user_id, book_id, status, requested_at, decided_at, due_date FROM borrow_requests
		 WHERE book_id = ? AND user_id = ? AND status = 'pending' ORDER BY requested_at, id`, bookID, userID)
}

// HasActiveForBook reports whether any pending or approved request still
// references the book. Used to refuse catalog deletions.
func (r *RequestRepository) HasActiveForBook(ctx context.Context, bookID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var exists bool
	err := r.q.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM borrow_requests WHERE book_id = ? AND status IN ('pending','approved'))`, bookID).
		Scan(&exists)
	return exists, err
}

// ListAll returns all requests newest-first for administrator review.
func (r *RequestRepository) ListAll(ctx context.Context, limit, offset int) ([]models.BorrowRequest, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return r.query(ctx,
		`SELECT id, user_id, book_id, status, requested_at, decided_at, due_date FROM borrow_requests
		 ORDER BY requested_at DESC, id DESC LIMIT ? OFFSET ?`, limit, offset)
}

// ListForUser returns one user's requests newest-first (any status).
func (r *RequestRepository) ListForUser(ctx context.Context, userID string, limit, offset int) ([]models.BorrowRequest, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return r.query(ctx,
		`SELECT id, user_id, book_id, status, requested_at, decided_at, due_date FROM borrow_requests
		 WHERE user_id = ? ORDER BY requested_at DESC, id DESC LIMIT ? OFFSET ?`, userID, limit, offset)
}

func (r *RequestRepository) query(ctx context.Context, q string, args ...any) ([]models.BorrowRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.q.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.BorrowRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanRequest(s rowScanner) (*models.BorrowRequest, error) {
	var req models.BorrowRequest
	var status string
	var dec, due sql.NullTime
	if err := s.Scan(&req.ID, &req.UserID, &req.BookID, &status, &req.RequestedAt, &dec, &due); err != nil {
		return nil, err
	}
	req.Status = models.RequestStatus(status)
	if dec.Valid {
		v := dec.Time
		req.DecidedAt = &v
	}
	if due.Valid {
		v := due.Time
		req.DueDate = &v
	}
	return &req, nil
}
