package lending

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"bookLendingManagement/internal/access"
	"bookLendingManagement/models"
	"bookLendingManagement/repository"
)

// Engine is the single mutation path for book availability and request
// status. Every operation is one read-validate-write unit executed inside a
// single SQLite transaction; validation reads observe the same snapshot the
// writes commit against. Observers are notified only after commit.
type Engine struct {
	db       *sql.DB
	users    *repository.UserRepository
	books    *repository.BookRepository
	requests *repository.RequestRepository
	notifier *Notifier

	loanPeriod time.Duration
}

// NewEngine wires the engine to its stores. A nil notifier gets replaced
// with an empty one so publishing is always safe.
func NewEngine(db *sql.DB, users *repository.UserRepository, books *repository.BookRepository,
	requests *repository.RequestRepository, notifier *Notifier, loanPeriodDays int) *Engine {
	if notifier == nil {
		notifier = NewNotifier()
	}
	if loanPeriodDays <= 0 {
		loanPeriodDays = 14
	}
	return &Engine{
		db:         db,
		users:      users,
		books:      books,
		requests:   requests,
		notifier:   notifier,
		loanPeriod: time.Duration(loanPeriodDays) * 24 * time.Hour,
	}
}

// Notifier exposes the engine's notifier for observer registration.
func (e *Engine) Notifier() *Notifier { return e.notifier }

// caller loads the calling user's identity snapshot. Missing callers map to
// ErrNotFound.
func (e *Engine) caller(ctx context.Context, callerID string) (*models.User, error) {
	u, err := e.users.GetByID(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("get caller: %w", err)
	}
	if u == nil {
		return nil, fmt.Errorf("caller %s: %w", callerID, ErrNotFound)
	}
	return u, nil
}

// RequestBorrow files a pending request by the caller for the given book.
// Availability is not decremented here; the copy is reserved at approval
// time (first approval wins).
func (e *Engine) RequestBorrow(ctx context.Context, callerID, bookID string) (*models.BorrowRequest, error) {
	u, err := e.caller(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !access.CanRequestBorrow(u) {
		return nil, fmt.Errorf("request borrow: %w", ErrForbidden)
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()
	books := e.books.WithTx(tx)
	requests := e.requests.WithTx(tx)

	b, err := books.GetByID(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}
	if b == nil {
		return nil, fmt.Errorf("book %s: %w", bookID, ErrNotFound)
	}
	if b.Available <= 0 {
		return nil, fmt.Errorf("book %s: %w", bookID, ErrUnavailable)
	}

	active, err := requests.FindActiveForUser(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("find active: %w", err)
	}
	if len(active) > 0 {
		return nil, ErrAlreadyActive
	}
	dup, err := requests.FindPendingForBookAndUser(ctx, bookID, callerID)
	if err != nil {
		return nil, fmt.Errorf("find pending: %w", err)
	}
	if len(dup) > 0 {
		return nil, ErrDuplicatePending
	}

	req, err := requests.Create(ctx, callerID, bookID)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	e.notifier.Publish(Change{Events: []Event{{Collection: CollectionRequests, EntityID: req.ID}}})
	return req, nil
}

// Approve moves a pending request to approved and reserves one copy.
// Availability is re-checked here because time has passed since the request
// was filed; when several pending requests compete for the last copy, the
// first committed approval wins and the rest observe ErrUnavailable.
func (e *Engine) Approve(ctx context.Context, callerID, requestID string) (*models.BorrowRequest, error) {
	u, err := e.caller(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !access.CanDecideRequest(u) {
		return nil, fmt.Errorf("approve: %w", ErrForbidden)
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()
	books := e.books.WithTx(tx)
	requests := e.requests.WithTx(tx)

	req, err := requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}
	if req == nil {
		return nil, fmt.Errorf("request %s: %w", requestID, ErrNotFound)
	}
	if req.Status != models.RequestStatusPending {
		return nil, fmt.Errorf("request is %s: %w", req.Status, ErrInvalidState)
	}

	b, err := books.GetByID(ctx, req.BookID)
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}
	if b == nil {
		return nil, fmt.Errorf("book %s: %w", req.BookID, ErrNotFound)
	}
	if b.Available <= 0 {
		return nil, fmt.Errorf("book %s: %w", req.BookID, ErrUnavailable)
	}

	now := time.Now().UTC()
	n, err := books.AdjustAvailability(ctx, req.BookID, -1, now)
	if err != nil {
		return nil, fmt.Errorf("adjust availability: %w", err)
	}
	if n == 0 {
		// The book row was read in this very transaction, so a zero update
		// means the guarded bound refused the write.
		return nil, ErrInvariantViolation
	}

	due := now.Add(e.loanPeriod)
	if err := requests.SetStatus(ctx, req.ID, models.RequestStatusApproved, &now, &due); err != nil {
		return nil, fmt.Errorf("set status: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	req.Status = models.RequestStatusApproved
	req.DecidedAt = &now
	req.DueDate = &due
	e.notifier.Publish(Change{Events: []Event{
		{Collection: CollectionRequests, EntityID: req.ID},
		{Collection: CollectionBooks, EntityID: req.BookID},
	}})
	return req, nil
}

// Reject moves a pending request to rejected. No catalog mutation.
func (e *Engine) Reject(ctx context.Context, callerID, requestID string) (*models.BorrowRequest, error) {
	u, err := e.caller(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !access.CanDecideRequest(u) {
		return nil, fmt.Errorf("reject: %w", ErrForbidden)
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()
	requests := e.requests.WithTx(tx)

	req, err := requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}
	if req == nil {
		return nil, fmt.Errorf("request %s: %w", requestID, ErrNotFound)
	}
	if req.Status != models.RequestStatusPending {
		return nil, fmt.Errorf("request is %s: %w", req.Status, ErrInvalidState)
	}

	now := time.Now().UTC()
	if err := requests.SetStatus(ctx, req.ID, models.RequestStatusRejected, &now, nil); err != nil {
		return nil, fmt.Errorf("set status: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	req.Status = models.RequestStatusRejected
	req.DecidedAt = &now
	e.notifier.Publish(Change{Events: []Event{{Collection: CollectionRequests, EntityID: req.ID}}})
	return req, nil
}

// Return moves an approved request to returned and puts the copy back on
// the shelf. The request's owner or an administrator may return it. Calling
// it twice succeeds once; the second call sees returned and fails with
// ErrInvalidState, so availability is incremented exactly once.
func (e *Engine) Return(ctx context.Context, callerID, requestID string) (*models.BorrowRequest, error) {
	u, err := e.caller(ctx, callerID)
	if err != nil {
		return nil, err
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()
	books := e.books.WithTx(tx)
	requests := e.requests.WithTx(tx)

	req, err := requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}
	if req == nil {
		return nil, fmt.Errorf("request %s: %w", requestID, ErrNotFound)
	}
	if req.Status != models.RequestStatusApproved {
		return nil, fmt.Errorf("request is %s: %w", req.Status, ErrInvalidState)
	}
	if req.UserID != callerID && !access.IsAdministrator(u) {
		return nil, fmt.Errorf("return: %w", ErrForbidden)
	}

	now := time.Now().UTC()
	n, err := books.AdjustAvailability(ctx, req.BookID, +1, now)
	if err != nil {
		return nil, fmt.Errorf("adjust availability: %w", err)
	}
	if n == 0 {
		return nil, ErrInvariantViolation
	}
	if err := requests.SetStatus(ctx, req.ID, models.RequestStatusReturned, &now, req.DueDate); err != nil {
		return nil, fmt.Errorf("set status: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	req.Status = models.RequestStatusReturned
	req.DecidedAt = &now
	e.notifier.Publish(Change{Events: []Event{
		{Collection: CollectionRequests, EntityID: req.ID},
		{Collection: CollectionBooks, EntityID: req.BookID},
	}})
	return req, nil
}

// BookPatch carries the optional fields of a catalog edit. Nil fields are
// left unchanged.
type BookPatch struct {
	Title    *string
	Author   *string
	CoverURL *string
	Total    *int
}

// CreateBook adds a catalog entry. Administrator only.
func (e *Engine) CreateBook(ctx context.Context, callerID, title, author string, coverURL *string, total int) (*models.Book, error) {
	u, err := e.caller(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !access.CanManageCatalog(u) {
		return nil, fmt.Errorf("create book: %w", ErrForbidden)
	}
	if total < 0 {
		return nil, fmt.Errorf("total %d: %w", total, ErrInvariantViolation)
	}

	b, err := e.books.Create(ctx, &models.Book{Title: title, Author: author, CoverURL: coverURL, Total: total})
	if err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}
	e.notifier.Publish(Change{Events: []Event{{Collection: CollectionBooks, EntityID: b.ID}}})
	return b, nil
}

// UpdateBook edits a catalog entry. Administrator only. A capacity change
// keeps the outstanding loan count intact when growing (available rises by
// the same delta) and clamps available to the new total when shrinking, so
// the counter never goes negative.
func (e *Engine) UpdateBook(ctx context.Context, callerID, bookID string, patch BookPatch) (*models.Book, error) {
	u, err := e.caller(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !access.CanManageCatalog(u) {
		return nil, fmt.Errorf("update book: %w", ErrForbidden)
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()
	books := e.books.WithTx(tx)

	b, err := books.GetByID(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}
	if b == nil {
		return nil, fmt.Errorf("book %s: %w", bookID, ErrNotFound)
	}

	if patch.Title != nil {
		b.Title = *patch.Title
	}
	if patch.Author != nil {
		b.Author = *patch.Author
	}
	if patch.CoverURL != nil {
		b.CoverURL = patch.CoverURL
	}
	if patch.Total != nil {
		newTotal := *patch.Total
		if newTotal < 0 {
			return nil, fmt.Errorf("total %d: %w", newTotal, ErrInvariantViolation)
		}
		if delta := newTotal - b.Total; delta > 0 {
			b.Available += delta
		} else if b.Available > newTotal {
			b.Available = newTotal
		}
		b.Total = newTotal
	}
	b.UpdatedAt = time.Now().UTC()

	if err := books.Update(ctx, b); err != nil {
		return nil, fmt.Errorf("update book: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	e.notifier.Publish(Change{Events: []Event{{Collection: CollectionBooks, EntityID: b.ID}}})
	return b, nil
}

// AdminDirectAdjust sets a book's capacity directly. Administrator only.
func (e *Engine) AdminDirectAdjust(ctx context.Context, callerID, bookID string, newTotal int) (*models.Book, error) {
	return e.UpdateBook(ctx, callerID, bookID, BookPatch{Total: &newTotal})
}

// DeleteBook removes a catalog entry. Administrator only, and refused with
// ErrConflict while any pending or approved request references the book.
// Terminal requests keep their dangling book_id as audit history.
func (e *Engine) DeleteBook(ctx context.Context, callerID, bookID string) error {
	u, err := e.caller(ctx, callerID)
	if err != nil {
		return err
	}
	if !access.CanManageCatalog(u) {
		return fmt.Errorf("delete book: %w", ErrForbidden)
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()
	books := e.books.WithTx(tx)
	requests := e.requests.WithTx(tx)

	b, err := books.GetByID(ctx, bookID)
	if err != nil {
		return fmt.Errorf("get book: %w", err)
	}
	if b == nil {
		return fmt.Errorf("book %s: %w", bookID, ErrNotFound)
	}
	active, err := requests.HasActiveForBook(ctx, bookID)
	if err != nil {
		return fmt.Errorf("check active requests: %w", err)
	}
	if active {
		return fmt.Errorf("book %s: %w", bookID, ErrConflict)
	}
	if err := books.Delete(ctx, bookID); err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	e.notifier.Publish(Change{Events: []Event{{Collection: CollectionBooks, EntityID: bookID}}})
	return nil
}
