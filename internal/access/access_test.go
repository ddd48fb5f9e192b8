package access

import (
	"testing"

	"bookLendingManagement/models"
)

func TestPredicates(t *testing.T) {
	admin := &models.User{ID: "a", IsAdmin: true}
	member := &models.User{ID: "m", IsAdmin: false}

	if !IsAdministrator(admin) || IsAdministrator(member) || IsAdministrator(nil) {
		t.Fatalf("IsAdministrator misclassified")
	}
	if !CanManageCatalog(admin) || CanManageCatalog(member) {
		t.Fatalf("CanManageCatalog misclassified")
	}
	if !CanDecideRequest(admin) || CanDecideRequest(member) {
		t.Fatalf("CanDecideRequest misclassified")
	}
	if CanRequestBorrow(admin) || !CanRequestBorrow(member) || CanRequestBorrow(nil) {
		t.Fatalf("CanRequestBorrow misclassified")
	}
}
