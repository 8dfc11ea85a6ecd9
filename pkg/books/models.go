// Package books provides the catalog and the copy-availability ledger for librakeep.
package books

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category represents a book category
type Category string

const (
	CategoryFiction    Category = "FICTION"
	CategoryNonFiction Category = "NON_FICTION"
	CategoryScience    Category = "SCIENCE"
	CategoryTechnology Category = "TECHNOLOGY"
	CategoryHistory    Category = "HISTORY"
	CategoryBiography  Category = "BIOGRAPHY"
	CategoryChildren   Category = "CHILDREN"
	CategoryOther      Category = "OTHER"
)

// String returns the string representation of Category
func (c Category) String() string {
	return string(c)
}

// IsValid checks if the Category is a known category
func (c Category) IsValid() bool {
	switch c {
	case CategoryFiction, CategoryNonFiction, CategoryScience, CategoryTechnology,
		CategoryHistory, CategoryBiography, CategoryChildren, CategoryOther:
		return true
	default:
		return false
	}
}

// Book represents a title in the catalog. AvailableCopies moves only through
// the ledger operations (Checkout/Checkin) or an administrative capacity
// adjustment; 0 <= AvailableCopies <= TotalCopies holds at all times.
type Book struct {
	ID              string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Title           string    `gorm:"not null" json:"title"`
	Author          string    `gorm:"not null;index" json:"author"`
	ISBN            string    `gorm:"uniqueIndex;not null" json:"isbn"`
	Category        Category  `gorm:"not null" json:"category"`
	TotalCopies     int       `gorm:"not null" json:"total_copies"`
	AvailableCopies int       `gorm:"not null" json:"available_copies"`
	Description     string    `json:"description,omitempty"`
	PublishedYear   int       `json:"published_year,omitempty"`
	CreatedAt       time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null" json:"updated_at"`
}

// BeforeCreate hook for Book model
func (b *Book) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return nil
}
