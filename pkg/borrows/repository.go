package borrows

import (
	stderrors "errors"
	"time"

	"gorm.io/gorm"

	"github.com/librakeep/librakeep/pkg/errors"
	"github.com/librakeep/librakeep/pkg/types"
)

// ListOptions filters a borrow listing
type ListOptions struct {
	MemberID string
	BookID   string
	Status   Status
	Page     types.PageParams
}

// Get retrieves a borrow by ID against the given handle (plain or
// transactional); returns nil when absent
func Get(db *gorm.DB, id string) (*Borrow, error) {
	var borrow Borrow
	if err := db.First(&borrow, "id = ?", id).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.NewStoreFailureError("failed to get borrow", err)
	}
	return &borrow, nil
}

// FindActive returns the member's non-terminal borrow of the given book, or
// nil. Runs against the caller's handle so the duplicate check can share the
// borrow transaction.
func FindActive(db *gorm.DB, memberID, bookID string) (*Borrow, error) {
	var borrow Borrow
	err := db.Where("member_id = ? AND book_id = ? AND status IN ?",
		memberID, bookID, []Status{StatusActive, StatusOverdue}).
		First(&borrow).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.NewStoreFailureError("failed to query active borrow", err)
	}
	return &borrow, nil
}

// Repository provides data access for borrow records
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new borrow repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetByID retrieves a borrow by ID; returns nil when absent
func (r *Repository) GetByID(id string) (*Borrow, error) {
	return Get(r.db, id)
}

// List returns borrows matching the options, newest first, with the total
// count. The Status filter matches the stored status only; callers that need
// due-date-accurate results use ListOverdue or refresh what they read.
func (r *Repository) List(opts ListOptions) ([]Borrow, int64, error) {
	query := r.db.Model(&Borrow{})

	if opts.MemberID != "" {
		query = query.Where("member_id = ?", opts.MemberID)
	}
	if opts.BookID != "" {
		query = query.Where("book_id = ?", opts.BookID)
	}
	if opts.Status != "" {
		query = query.Where("status = ?", opts.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errors.NewStoreFailureError("failed to count borrows", err)
	}

	var borrows []Borrow
	err := query.Order("borrow_date DESC").
		Limit(opts.Page.Limit).Offset(opts.Page.Offset()).
		Find(&borrows).Error
	if err != nil {
		return nil, 0, errors.NewStoreFailureError("failed to list borrows", err)
	}

	return borrows, total, nil
}

// ListOverdue returns every non-terminal borrow past its due date at the
// given time, most overdue first, with the total count. Selection is by due
// date, not stored status, so results are correct even before any sweep has
// touched the records.
func (r *Repository) ListOverdue(now time.Time, page types.PageParams) ([]Borrow, int64, error) {
	query := r.db.Model(&Borrow{}).
		Where("due_date < ? AND status IN ?", now, []Status{StatusActive, StatusOverdue})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errors.NewStoreFailureError("failed to count overdue borrows", err)
	}

	var borrows []Borrow
	err := query.Order("due_date ASC").
		Limit(page.Limit).Offset(page.Offset()).
		Find(&borrows).Error
	if err != nil {
		return nil, 0, errors.NewStoreFailureError("failed to list overdue borrows", err)
	}

	return borrows, total, nil
}

// SweepUpdate persists a refreshed status and fine, but only while the
// record is still non-terminal. A concurrent return wins: once RETURNED the
// update matches zero rows and the sweep moves on.
func (r *Repository) SweepUpdate(b *Borrow) (bool, error) {
	result := r.db.Model(&Borrow{}).
		Where("id = ? AND status IN ?", b.ID, []Status{StatusActive, StatusOverdue}).
		Updates(map[string]interface{}{
			"status": b.Status,
			"fine":   b.Fine,
		})
	if result.Error != nil {
		return false, errors.NewStoreFailureError("failed to sweep borrow", result.Error)
	}
	return result.RowsAffected > 0, nil
}
