package borrows

import (
	"time"

	"github.com/librakeep/librakeep/pkg/errors"
)

// ObserveStatus derives the effective status of a borrow at the given time
// without mutating anything. A returned borrow stays RETURNED; anything past
// its due date is OVERDUE regardless of what the stored status says. Reads
// built on this stay correct even if no sweep has ever run.
func ObserveStatus(b *Borrow, now time.Time) Status {
	if b.Status == StatusReturned {
		return StatusReturned
	}
	if now.After(b.DueDate) {
		return StatusOverdue
	}
	return StatusActive
}

// ObserveFine derives the fine owed at the given time. Returned borrows keep
// their frozen fine; non-terminal borrows accrue per day overdue.
func ObserveFine(b *Borrow, now time.Time, finePerDay int64) int64 {
	if b.Status == StatusReturned {
		return b.Fine
	}
	return ComputeFine(b.DueDate, now, finePerDay)
}

// Refresh folds the observed status and fine back into the record. Returns
// true when anything changed. Refresh never performs the RETURNED
// transition; that is MarkReturned's job alone.
func Refresh(b *Borrow, now time.Time, finePerDay int64) bool {
	if b.Status.IsTerminal() {
		return false
	}

	status := ObserveStatus(b, now)
	fine := ObserveFine(b, now, finePerDay)
	if status == b.Status && fine == b.Fine {
		return false
	}

	b.Status = status
	b.Fine = fine
	return true
}

// MarkReturned finalizes a borrow: sets the return date, freezes the fine as
// of now, and moves the record to its terminal state. The only path that
// sets RETURNED.
func MarkReturned(b *Borrow, now time.Time, finePerDay int64) error {
	if b.Status.IsTerminal() {
		return errors.NewAlreadyReturnedError(b.ID)
	}

	returnDate := now
	b.ReturnDate = &returnDate
	b.Fine = ComputeFine(b.DueDate, now, finePerDay)
	b.Status = StatusReturned
	return nil
}
