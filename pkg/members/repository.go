package members

import (
	stderrors "errors"

	"gorm.io/gorm"

	"github.com/librakeep/librakeep/pkg/errors"
	"github.com/librakeep/librakeep/pkg/types"
)

// Repository provides data access for members
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new member repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new member
func (r *Repository) Create(member *Member) error {
	if err := r.db.Create(member).Error; err != nil {
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return errors.NewAlreadyExistsError("email")
		}
		return errors.NewStoreFailureError("failed to create member", err)
	}
	return nil
}

// GetByID retrieves a member by ID; returns nil when absent
func (r *Repository) GetByID(id string) (*Member, error) {
	var member Member
	if err := r.db.First(&member, "id = ?", id).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.NewStoreFailureError("failed to get member", err)
	}
	return &member, nil
}

// GetByEmail retrieves a member by email; returns nil when absent
func (r *Repository) GetByEmail(email string) (*Member, error) {
	var member Member
	if err := r.db.First(&member, "email = ?", email).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.NewStoreFailureError("failed to get member by email", err)
	}
	return &member, nil
}

// Update saves changes to a member
func (r *Repository) Update(member *Member) error {
	if err := r.db.Save(member).Error; err != nil {
		return errors.NewStoreFailureError("failed to update member", err)
	}
	return nil
}

// Delete removes a member
func (r *Repository) Delete(id string) error {
	result := r.db.Delete(&Member{}, "id = ?", id)
	if result.Error != nil {
		return errors.NewStoreFailureError("failed to delete member", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("member")
	}
	return nil
}

// List returns members with pagination, newest first
func (r *Repository) List(params types.PageParams) ([]Member, int64, error) {
	var members []Member
	var total int64

	if err := r.db.Model(&Member{}).Count(&total).Error; err != nil {
		return nil, 0, errors.NewStoreFailureError("failed to count members", err)
	}

	err := r.db.Order("created_at DESC").
		Limit(params.Limit).Offset(params.Offset()).
		Find(&members).Error
	if err != nil {
		return nil, 0, errors.NewStoreFailureError("failed to list members", err)
	}

	return members, total, nil
}
