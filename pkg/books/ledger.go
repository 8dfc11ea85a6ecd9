package books

import (
	"gorm.io/gorm"

	"github.com/librakeep/librakeep/pkg/errors"
)

// The availability ledger owns the available/total copy counters. All
// counter movement goes through conditional updates so that concurrent
// callers serialize on the store and the 0 <= available <= total invariant
// can never be violated, not even transiently.

// IsAvailable reports whether the book has a free copy
func IsAvailable(b *Book) bool {
	return b.AvailableCopies > 0
}

// BorrowedCopies returns the number of copies currently on loan
func BorrowedCopies(b *Book) int {
	return b.TotalCopies - b.AvailableCopies
}

// Checkout decrements the book's available copies by one. The decrement is
// conditional on a free copy existing, so two concurrent borrowers cannot
// both take the last copy.
func Checkout(tx *gorm.DB, bookID string) error {
	result := tx.Model(&Book{}).
		Where("id = ? AND available_copies > 0", bookID).
		UpdateColumn("available_copies", gorm.Expr("available_copies - 1"))
	if result.Error != nil {
		return errors.NewStoreFailureError("failed to checkout book", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewUnavailableError(bookID)
	}
	return nil
}

// Checkin increments the book's available copies by one. The increment is
// conditional on a copy actually being out, guarding against double-return bugs.
func Checkin(tx *gorm.DB, bookID string) error {
	result := tx.Model(&Book{}).
		Where("id = ? AND available_copies < total_copies", bookID).
		UpdateColumn("available_copies", gorm.Expr("available_copies + 1"))
	if result.Error != nil {
		return errors.NewStoreFailureError("failed to checkin book", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewOverReturnError(bookID)
	}
	return nil
}

// ValidateCapacity checks an administrative capacity change against the
// ledger invariants: available cannot exceed total, and total cannot drop
// below the copies currently on loan.
func ValidateCapacity(b *Book, newTotal, newAvailable int) error {
	if newTotal < 1 {
		return errors.NewInvalidCapacityError("total copies must be at least 1")
	}
	if newAvailable < 0 {
		return errors.NewInvalidCapacityError("available copies cannot be negative")
	}
	if newAvailable > newTotal {
		return errors.NewInvalidCapacityError("available copies cannot exceed total copies")
	}
	if borrowed := BorrowedCopies(b); newTotal < borrowed {
		return errors.NewInvalidCapacityError("cannot reduce total copies below currently borrowed count").
			WithDetail("borrowed_copies", borrowed)
	}
	return nil
}
