package api

import (
	"github.com/librakeep/librakeep/pkg/books"
	"github.com/librakeep/librakeep/pkg/borrows"
	"github.com/librakeep/librakeep/pkg/members"
	"github.com/librakeep/librakeep/pkg/types"
)

// Response is the envelope for single-object results
type Response[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    *T     `json:"data,omitempty"`
}

// ListResponse is the envelope for paginated results
type ListResponse[T any] struct {
	Code       int            `json:"code"`
	Message    string         `json:"message"`
	Data       []T            `json:"data"`
	Pagination types.PageInfo `json:"pagination"`
}

// ErrorResponse is the envelope for failures. Code mirrors the HTTP status;
// ErrorCode is the stable machine-readable code clients branch on.
type ErrorResponse struct {
	Code      int                    `json:"code"`
	Message   string                 `json:"message"`
	ErrorCode string                 `json:"error_code,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// HealthResponse represents the health check result
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Version   string            `json:"version"`
	Uptime    string            `json:"uptime"`
	Checks    map[string]string `json:"checks"`
}

// RegisterRequest creates a member account
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role,omitempty"`
}

// LoginRequest authenticates a member
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// BookCreateRequest adds a title to the catalog
type BookCreateRequest struct {
	Title           string `json:"title" binding:"required"`
	Author          string `json:"author" binding:"required"`
	ISBN            string `json:"isbn" binding:"required"`
	Category        string `json:"category" binding:"required"`
	TotalCopies     int    `json:"total_copies" binding:"required,min=1"`
	AvailableCopies *int   `json:"available_copies,omitempty"`
	Description     string `json:"description,omitempty"`
	PublishedYear   int    `json:"published_year,omitempty"`
}

// BookUpdateRequest patches a book; absent fields are left unchanged
type BookUpdateRequest struct {
	Title           *string `json:"title,omitempty"`
	Author          *string `json:"author,omitempty"`
	Category        *string `json:"category,omitempty"`
	TotalCopies     *int    `json:"total_copies,omitempty"`
	AvailableCopies *int    `json:"available_copies,omitempty"`
	Description     *string `json:"description,omitempty"`
	PublishedYear   *int    `json:"published_year,omitempty"`
}

// BookListQuery filters a catalog listing
type BookListQuery struct {
	Search   string `form:"search"`
	Category string `form:"category"`
	Author   string `form:"author"`
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
}

// MemberUpdateRequest patches a member's name and/or role
type MemberUpdateRequest struct {
	Name *string `json:"name,omitempty"`
	Role *string `json:"role,omitempty"`
}

// BorrowRequest lends a book. MemberID is honored for librarians only;
// regular members always borrow for themselves.
type BorrowRequest struct {
	BookID   string `json:"book_id" binding:"required"`
	MemberID string `json:"member_id,omitempty"`
}

// BorrowListQuery filters a borrow listing
type BorrowListQuery struct {
	Status   string `form:"status"`
	MemberID string `form:"member_id"`
	BookID   string `form:"book_id"`
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
}

// PageQuery carries bare pagination for endpoints with no other filters
type PageQuery struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

// SweepResponse reports the outcome of an overdue sweep
type SweepResponse struct {
	Updated int `json:"updated"`
}

// Response type aliases
type AuthResponse = Response[members.AuthResult]
type MemberResponse = Response[members.Member]
type MemberListResponse = ListResponse[members.Member]
type BookResponse = Response[books.Book]
type BookListResponse = ListResponse[books.Book]
type BorrowResponse = Response[borrows.Borrow]
type BorrowListResponse = ListResponse[borrows.Borrow]
