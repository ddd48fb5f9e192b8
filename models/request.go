package models

import "time"

// RequestStatus represents the lifecycle stage of a borrow request.
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
	RequestStatusReturned RequestStatus = "returned"
)

// IsActive reports whether the status still counts against the caller's
// single active loan (pending or approved).
func (s RequestStatus) IsActive() bool {
	return s == RequestStatusPending || s == RequestStatusApproved
}

// IsTerminal reports whether no further transition is permitted.
func (s RequestStatus) IsTerminal() bool {
	return s == RequestStatusRejected || s == RequestStatusReturned
}

// BorrowRequest represents one user's request for one book.
// Requests are never deleted; rejected and returned rows remain as an
// audit trail. DecidedAt is set exactly when status leaves pending.
// DueDate is set on approval (nullable in DB; use pointers to distinguish
// null vs zero).
type BorrowRequest struct {
	ID          string        `db:"id" json:"id"`
	UserID      string        `db:"user_id" json:"user_id"`
	BookID      string        `db:"book_id" json:"book_id"`
	Status      RequestStatus `db:"status" json:"status"`
	RequestedAt time.Time     `db:"requested_at" json:"requested_at"`
	DecidedAt   *time.Time    `db:"decided_at" json:"decided_at,omitempty"`
	DueDate     *time.Time    `db:"due_date" json:"due_date,omitempty"`
}
