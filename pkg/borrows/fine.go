package borrows

import "time"

const day = 24 * time.Hour

// ComputeFine returns the fine owed for a loan due at dueDate, observed at
// asOf, charging finePerDay per started day. Any partial day counts as a
// full day late; on or before the due date the fine is zero.
func ComputeFine(dueDate, asOf time.Time, finePerDay int64) int64 {
	if !asOf.After(dueDate) {
		return 0
	}

	overdue := asOf.Sub(dueDate)
	days := int64(overdue / day)
	if overdue%day != 0 {
		days++
	}
	return days * finePerDay
}
