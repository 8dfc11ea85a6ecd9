package books

import (
	"context"

	"gorm.io/gorm"

	"github.com/librakeep/librakeep/pkg/errors"
	"github.com/librakeep/librakeep/pkg/interfaces"
	"github.com/librakeep/librakeep/pkg/store"
	"github.com/librakeep/librakeep/pkg/types"
)

// Service implements catalog management. Mutations that touch the copy
// counters run inside a store transaction so ledger invariants are checked
// against current state, never a stale read.
type Service struct {
	store  *store.Store
	repo   *Repository
	logger interfaces.Logger
}

// NewService creates a new catalog service
func NewService(s *store.Store, repo *Repository, logger interfaces.Logger) *Service {
	return &Service{store: s, repo: repo, logger: logger}
}

// CreateParams holds the fields needed to add a book
type CreateParams struct {
	Title           string
	Author          string
	ISBN            string
	Category        Category
	TotalCopies     int
	AvailableCopies *int // defaults to TotalCopies when nil
	Description     string
	PublishedYear   int
}

// UpdateParams holds an administrative patch; nil fields are left unchanged
type UpdateParams struct {
	Title           *string
	Author          *string
	Category        *Category
	TotalCopies     *int
	AvailableCopies *int
	Description     *string
	PublishedYear   *int
}

// AddBook adds a title to the catalog
func (s *Service) AddBook(params CreateParams) (*Book, error) {
	if params.Title == "" || params.Author == "" || params.ISBN == "" {
		return nil, errors.NewValidationError("title, author and isbn are required")
	}
	if !params.Category.IsValid() {
		return nil, errors.NewValidationError("invalid category: " + params.Category.String())
	}
	if params.TotalCopies < 1 {
		return nil, errors.NewInvalidCapacityError("total copies must be at least 1")
	}

	available := params.TotalCopies
	if params.AvailableCopies != nil {
		available = *params.AvailableCopies
	}
	if available < 0 || available > params.TotalCopies {
		return nil, errors.NewInvalidCapacityError("available copies cannot exceed total copies")
	}

	book := &Book{
		Title:           params.Title,
		Author:          params.Author,
		ISBN:            params.ISBN,
		Category:        params.Category,
		TotalCopies:     params.TotalCopies,
		AvailableCopies: available,
		Description:     params.Description,
		PublishedYear:   params.PublishedYear,
	}
	if err := s.repo.Create(book); err != nil {
		return nil, err
	}

	s.logger.Info("book added", map[string]interface{}{"book_id": book.ID, "isbn": book.ISBN})
	return book, nil
}

// GetBook retrieves a book by ID
func (s *Service) GetBook(id string) (*Book, error) {
	book, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, errors.NewNotFoundError("book")
	}
	return book, nil
}

// ListBooks returns a page of the catalog
func (s *Service) ListBooks(opts SearchOptions) ([]Book, types.PageInfo, error) {
	opts.Page = opts.Page.Normalize()

	books, total, err := s.repo.List(opts)
	if err != nil {
		return nil, types.PageInfo{}, err
	}
	return books, types.NewPageInfo(opts.Page, total), nil
}

// UpdateBook applies an administrative patch. Capacity changes are validated
// against the ledger invariants inside a transaction.
func (s *Service) UpdateBook(ctx context.Context, id string, params UpdateParams) (*Book, error) {
	var updated *Book

	err := s.store.WithTx(ctx, func(tx *gorm.DB) error {
		book, err := Get(tx, id)
		if err != nil {
			return err
		}
		if book == nil {
			return errors.NewNotFoundError("book")
		}

		if params.TotalCopies != nil || params.AvailableCopies != nil {
			newTotal := book.TotalCopies
			if params.TotalCopies != nil {
				newTotal = *params.TotalCopies
			}
			newAvailable := book.AvailableCopies
			if params.AvailableCopies != nil {
				newAvailable = *params.AvailableCopies
			}
			if err := ValidateCapacity(book, newTotal, newAvailable); err != nil {
				return err
			}
			book.TotalCopies = newTotal
			book.AvailableCopies = newAvailable
		}

		if params.Title != nil {
			book.Title = *params.Title
		}
		if params.Author != nil {
			book.Author = *params.Author
		}
		if params.Category != nil {
			if !params.Category.IsValid() {
				return errors.NewValidationError("invalid category: " + params.Category.String())
			}
			book.Category = *params.Category
		}
		if params.Description != nil {
			book.Description = *params.Description
		}
		if params.PublishedYear != nil {
			book.PublishedYear = *params.PublishedYear
		}

		if err := tx.Save(book).Error; err != nil {
			return errors.NewStoreFailureError("failed to update book", err)
		}
		updated = book
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteBook removes a book that has no copies on loan
func (s *Service) DeleteBook(ctx context.Context, id string) error {
	return s.store.WithTx(ctx, func(tx *gorm.DB) error {
		book, err := Get(tx, id)
		if err != nil {
			return err
		}
		if book == nil {
			return errors.NewNotFoundError("book")
		}
		if borrowed := BorrowedCopies(book); borrowed > 0 {
			return errors.NewHasActiveLoansError(id, borrowed)
		}

		// Conditional delete: the no-loans check re-applies at write time
		// in case a borrow committed since the read.
		result := tx.Where("id = ? AND available_copies = total_copies", id).Delete(&Book{})
		if result.Error != nil {
			return errors.NewStoreFailureError("failed to delete book", result.Error)
		}
		if result.RowsAffected == 0 {
			return errors.NewHasActiveLoansError(id, BorrowedCopies(book))
		}

		s.logger.Info("book deleted", map[string]interface{}{"book_id": id})
		return nil
	})
}
