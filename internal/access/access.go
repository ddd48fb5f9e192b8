// Package access holds the pure capability predicates used by the lending
// engine. The predicates take a snapshot of the caller's account and no
// other state; all enforcement happens in the engine.
package access

import "bookLendingManagement/models"

// IsAdministrator reports whether the user holds the administrator flag.
func IsAdministrator(u *models.User) bool {
	return u != nil && u.IsAdmin
}

// CanManageCatalog reports whether the user may create, edit or delete books.
func CanManageCatalog(u *models.User) bool {
	return IsAdministrator(u)
}

// CanDecideRequest reports whether the user may approve or reject borrow
// requests.
func CanDecideRequest(u *models.User) bool {
	return IsAdministrator(u)
}

// CanRequestBorrow reports whether the user may file a borrow request.
// Administrators do not borrow in this model.
func CanRequestBorrow(u *models.User) bool {
	return u != nil && !u.IsAdmin
}
