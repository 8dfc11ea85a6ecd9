// Package borrows implements the borrow lifecycle: the state machine that
// moves a loan from ACTIVE through OVERDUE to RETURNED, fine computation,
// and the orchestrator that keeps Borrow records and Book copy counters
// consistent with each other.
package borrows

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Status represents the lifecycle state of a borrow.
// ACTIVE -> OVERDUE -> RETURNED; RETURNED is terminal and may also be
// reached directly from ACTIVE.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusOverdue  Status = "OVERDUE"
	StatusReturned Status = "RETURNED"
)

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsValid checks if the Status is a known status
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusOverdue, StatusReturned:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the status admits no further transitions
func (s Status) IsTerminal() bool {
	return s == StatusReturned
}

// Borrow represents one loan of one book copy to one member. Records are
// never deleted; a returned borrow stays as history with its fine frozen.
type Borrow struct {
	ID         string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	MemberID   string     `gorm:"not null;type:varchar(36);index:idx_borrows_member_status" json:"member_id"`
	BookID     string     `gorm:"not null;type:varchar(36);index:idx_borrows_book_status" json:"book_id"`
	BorrowDate time.Time  `gorm:"not null" json:"borrow_date"`
	DueDate    time.Time  `gorm:"not null;index:idx_borrows_due_status" json:"due_date"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
	Status     Status     `gorm:"not null;default:'ACTIVE';index:idx_borrows_member_status;index:idx_borrows_book_status;index:idx_borrows_due_status" json:"status"`
	Fine       int64      `gorm:"not null;default:0" json:"fine"`
	CreatedAt  time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"not null" json:"updated_at"`
}

// BeforeCreate hook for Borrow model
func (b *Borrow) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return nil
}
