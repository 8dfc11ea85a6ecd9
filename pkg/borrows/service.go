package borrows

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/librakeep/librakeep/pkg/books"
	"github.com/librakeep/librakeep/pkg/config"
	"github.com/librakeep/librakeep/pkg/errors"
	"github.com/librakeep/librakeep/pkg/interfaces"
	"github.com/librakeep/librakeep/pkg/members"
	"github.com/librakeep/librakeep/pkg/store"
	"github.com/librakeep/librakeep/pkg/types"
)

// Service orchestrates the borrow lifecycle. Borrowing and returning each
// run as one transaction over the Borrow record and the Book copy counters,
// so either both move or neither does.
type Service struct {
	store   *store.Store
	repo    *Repository
	members *members.Repository
	policy  config.LendingConfig
	logger  interfaces.Logger

	// now is swapped out by tests to control observed time
	now func() time.Time
}

// NewService creates a new borrow service
func NewService(s *store.Store, repo *Repository, memberRepo *members.Repository,
	policy config.LendingConfig, logger interfaces.Logger) *Service {
	return &Service{
		store:   s,
		repo:    repo,
		members: memberRepo,
		policy:  policy,
		logger:  logger,
		now:     time.Now,
	}
}

// Borrow lends one copy of a book to a member. Inside a single transaction
// it rejects a second active borrow of the same book by the same member,
// creates the ACTIVE record, and decrements the book's available copies;
// the conditional decrement also closes the race where two borrowers
// compete for the last copy.
func (s *Service) Borrow(ctx context.Context, memberID, bookID string) (*Borrow, error) {
	member, err := s.members.GetByID(memberID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, errors.NewNotFoundError("member")
	}

	now := s.now()
	borrow := &Borrow{
		MemberID:   memberID,
		BookID:     bookID,
		BorrowDate: now,
		DueDate:    now.AddDate(0, 0, s.policy.MaxBorrowDays),
		Status:     StatusActive,
	}

	err = s.store.WithTx(ctx, func(tx *gorm.DB) error {
		book, err := books.Get(tx, bookID)
		if err != nil {
			return err
		}
		if book == nil {
			return errors.NewNotFoundError("book")
		}
		if !books.IsAvailable(book) {
			return errors.NewUnavailableError(bookID)
		}

		existing, err := FindActive(tx, memberID, bookID)
		if err != nil {
			return err
		}
		if existing != nil {
			return errors.NewDuplicateActiveBorrowError(memberID, bookID)
		}

		if err := tx.Create(borrow).Error; err != nil {
			return errors.NewStoreFailureError("failed to create borrow", err)
		}
		return books.Checkout(tx, bookID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("book borrowed", map[string]interface{}{
		"borrow_id": borrow.ID,
		"member_id": memberID,
		"book_id":   bookID,
		"due_date":  borrow.DueDate,
	})
	return borrow, nil
}

// Return closes a borrow: freezes the fine as of now, moves the record to
// RETURNED, and hands the copy back to the book, all in one transaction.
// Returning twice fails without touching the counters.
func (s *Service) Return(ctx context.Context, borrowID string) (*Borrow, error) {
	now := s.now()
	var returned *Borrow

	err := s.store.WithTx(ctx, func(tx *gorm.DB) error {
		borrow, err := Get(tx, borrowID)
		if err != nil {
			return err
		}
		if borrow == nil {
			return errors.NewNotFoundError("borrow")
		}

		if err := MarkReturned(borrow, now, s.policy.FinePerDay); err != nil {
			return err
		}

		// Guard the terminal transition at write time too, in case a
		// concurrent return committed since the read.
		result := tx.Model(&Borrow{}).
			Where("id = ? AND status IN ?", borrowID, []Status{StatusActive, StatusOverdue}).
			Updates(map[string]interface{}{
				"status":      borrow.Status,
				"fine":        borrow.Fine,
				"return_date": borrow.ReturnDate,
			})
		if result.Error != nil {
			return errors.NewStoreFailureError("failed to update borrow", result.Error)
		}
		if result.RowsAffected == 0 {
			return errors.NewAlreadyReturnedError(borrowID)
		}

		returned = borrow
		return books.Checkin(tx, borrow.BookID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("book returned", map[string]interface{}{
		"borrow_id": returned.ID,
		"book_id":   returned.BookID,
		"fine":      returned.Fine,
	})
	return returned, nil
}

// GetBorrow retrieves a borrow with its status and fine observed at now
func (s *Service) GetBorrow(id string) (*Borrow, error) {
	borrow, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if borrow == nil {
		return nil, errors.NewNotFoundError("borrow")
	}
	Refresh(borrow, s.now(), s.policy.FinePerDay)
	return borrow, nil
}

// List returns a page of borrows matching the options. Results carry the
// status and fine observed at now rather than whatever the last sweep
// stored.
func (s *Service) List(opts ListOptions) ([]Borrow, types.PageInfo, error) {
	if opts.Status != "" && !opts.Status.IsValid() {
		return nil, types.PageInfo{}, errors.NewValidationError("invalid status: " + opts.Status.String())
	}
	opts.Page = opts.Page.Normalize()

	borrows, total, err := s.repo.List(opts)
	if err != nil {
		return nil, types.PageInfo{}, err
	}

	now := s.now()
	for i := range borrows {
		Refresh(&borrows[i], now, s.policy.FinePerDay)
	}
	return borrows, types.NewPageInfo(opts.Page, total), nil
}

// ListForMember returns a page of the member's own borrow history
func (s *Service) ListForMember(memberID string, status Status, page types.PageParams) ([]Borrow, types.PageInfo, error) {
	return s.List(ListOptions{MemberID: memberID, Status: status, Page: page})
}

// ListOverdue returns a page of every loan past its due date, most overdue
// first. Selection is by due date, so the result is accurate even if the
// background sweep has never run.
func (s *Service) ListOverdue(page types.PageParams) ([]Borrow, types.PageInfo, error) {
	page = page.Normalize()
	now := s.now()

	borrows, total, err := s.repo.ListOverdue(now, page)
	if err != nil {
		return nil, types.PageInfo{}, err
	}

	for i := range borrows {
		Refresh(&borrows[i], now, s.policy.FinePerDay)
	}
	return borrows, types.NewPageInfo(page, total), nil
}

// RunOverdueSweep persists OVERDUE status and the accrued fine for every
// loan past its due date. Idempotent: a second run over the same state
// changes nothing. Records returned concurrently are skipped by the
// conditional update, never reopened.
func (s *Service) RunOverdueSweep(ctx context.Context) (int, error) {
	now := s.now()
	swept := 0

	page := types.PageParams{Page: 1, Limit: 100}
	for {
		if err := ctx.Err(); err != nil {
			return swept, errors.NewInternalError("sweep cancelled", err)
		}

		borrows, total, err := s.repo.ListOverdue(now, page)
		if err != nil {
			return swept, err
		}

		for i := range borrows {
			b := &borrows[i]
			if !Refresh(b, now, s.policy.FinePerDay) {
				continue
			}
			updated, err := s.repo.SweepUpdate(b)
			if err != nil {
				return swept, err
			}
			if updated {
				swept++
			}
		}

		if int64(page.Page*page.Limit) >= total {
			break
		}
		page.Page++
	}

	if swept > 0 {
		s.logger.Info("overdue sweep completed", map[string]interface{}{"updated": swept})
	}
	return swept, nil
}
