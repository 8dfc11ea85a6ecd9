package borrows

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librakeep/librakeep/pkg/errors"
)

func borrowDueAt(due time.Time) *Borrow {
	return &Borrow{
		ID:         "b-1",
		MemberID:   "m-1",
		BookID:     "bk-1",
		BorrowDate: due.AddDate(0, 0, -14),
		DueDate:    due,
		Status:     StatusActive,
	}
}

func TestObserveStatus(t *testing.T) {
	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	b := borrowDueAt(due)
	assert.Equal(t, StatusActive, ObserveStatus(b, due.Add(-time.Hour)))
	assert.Equal(t, StatusActive, ObserveStatus(b, due))
	assert.Equal(t, StatusOverdue, ObserveStatus(b, due.Add(time.Hour)))

	// Stale stored status never hides lateness.
	b.Status = StatusActive
	assert.Equal(t, StatusOverdue, ObserveStatus(b, due.AddDate(0, 0, 30)))

	// Terminal state is sticky even past the due date.
	require.NoError(t, MarkReturned(b, due.Add(time.Hour), 5))
	assert.Equal(t, StatusReturned, ObserveStatus(b, due.AddDate(0, 0, 30)))
}

func TestMarkReturned_OnTime(t *testing.T) {
	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	b := borrowDueAt(due)

	returnedAt := due.Add(-48 * time.Hour)
	require.NoError(t, MarkReturned(b, returnedAt, 5))

	assert.Equal(t, StatusReturned, b.Status)
	require.NotNil(t, b.ReturnDate)
	assert.Equal(t, returnedAt, *b.ReturnDate)
	assert.Equal(t, int64(0), b.Fine)
}

func TestMarkReturned_Late(t *testing.T) {
	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	b := borrowDueAt(due)

	require.NoError(t, MarkReturned(b, due.Add(6*24*time.Hour), 5))
	assert.Equal(t, int64(30), b.Fine)
}

func TestMarkReturned_Twice(t *testing.T) {
	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	b := borrowDueAt(due)
	require.NoError(t, MarkReturned(b, due, 5))

	err := MarkReturned(b, due.Add(time.Hour), 5)
	assert.True(t, errors.HasCode(err, errors.ErrCodeAlreadyReturned))
	// The frozen fine is untouched by the failed attempt.
	assert.Equal(t, int64(0), b.Fine)
}

func TestRefresh(t *testing.T) {
	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	b := borrowDueAt(due)

	// Nothing to fold in before the due date.
	assert.False(t, Refresh(b, due.Add(-time.Hour), 5))
	assert.Equal(t, StatusActive, b.Status)

	// Past due: status flips and the fine accrues.
	assert.True(t, Refresh(b, due.Add(36*time.Hour), 5))
	assert.Equal(t, StatusOverdue, b.Status)
	assert.Equal(t, int64(10), b.Fine)

	// Same observation time is a no-op.
	assert.False(t, Refresh(b, due.Add(36*time.Hour), 5))

	// Refresh never resurrects a returned borrow.
	require.NoError(t, MarkReturned(b, due.Add(48*time.Hour), 5))
	fine := b.Fine
	assert.False(t, Refresh(b, due.AddDate(0, 0, 10), 5))
	assert.Equal(t, fine, b.Fine)
}
