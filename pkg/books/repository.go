package books

import (
	stderrors "errors"
	"strings"

	"gorm.io/gorm"

	"github.com/librakeep/librakeep/pkg/errors"
	"github.com/librakeep/librakeep/pkg/types"
)

// SearchOptions filters a catalog listing
type SearchOptions struct {
	Search   string // substring match on title or author
	Category Category
	Author   string
	Page     types.PageParams
}

// Get retrieves a book by ID against the given handle (plain or transactional);
// returns nil when absent
func Get(db *gorm.DB, id string) (*Book, error) {
	var book Book
	if err := db.First(&book, "id = ?", id).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.NewStoreFailureError("failed to get book", err)
	}
	return &book, nil
}

// Repository provides data access for the book catalog
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new book repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new book
func (r *Repository) Create(book *Book) error {
	if err := r.db.Create(book).Error; err != nil {
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return errors.NewAlreadyExistsError("isbn")
		}
		return errors.NewStoreFailureError("failed to create book", err)
	}
	return nil
}

// GetByID retrieves a book by ID; returns nil when absent
func (r *Repository) GetByID(id string) (*Book, error) {
	return Get(r.db, id)
}

// List returns books matching the options, newest first, with the total count
func (r *Repository) List(opts SearchOptions) ([]Book, int64, error) {
	query := r.db.Model(&Book{})

	if opts.Search != "" {
		pattern := "%" + strings.ToLower(opts.Search) + "%"
		query = query.Where("lower(title) LIKE ? OR lower(author) LIKE ?", pattern, pattern)
	}
	if opts.Category != "" {
		query = query.Where("category = ?", opts.Category)
	}
	if opts.Author != "" {
		query = query.Where("lower(author) LIKE ?", "%"+strings.ToLower(opts.Author)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errors.NewStoreFailureError("failed to count books", err)
	}

	var books []Book
	err := query.Order("created_at DESC").
		Limit(opts.Page.Limit).Offset(opts.Page.Offset()).
		Find(&books).Error
	if err != nil {
		return nil, 0, errors.NewStoreFailureError("failed to list books", err)
	}

	return books, total, nil
}
