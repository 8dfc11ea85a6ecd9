package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/librakeep/librakeep/pkg/books"
	"github.com/librakeep/librakeep/pkg/types"
)

// listBooks returns a page of the catalog, optionally filtered
func (s *Server) listBooks(c *gin.Context) {
	var query BookListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		s.bindError(c, err)
		return
	}

	results, info, err := s.books.ListBooks(books.SearchOptions{
		Search:   query.Search,
		Category: books.Category(query.Category),
		Author:   query.Author,
		Page:     types.PageParams{Page: query.Page, Limit: query.Limit},
	})
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, BookListResponse{
		Code:       http.StatusOK,
		Message:    "ok",
		Data:       results,
		Pagination: info,
	})
}

// getBook returns a single book by ID
func (s *Server) getBook(c *gin.Context) {
	book, err := s.books.GetBook(c.Param("id"))
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, BookResponse{
		Code:    http.StatusOK,
		Message: "ok",
		Data:    book,
	})
}

// createBook adds a title to the catalog
func (s *Server) createBook(c *gin.Context) {
	var req BookCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.bindError(c, err)
		return
	}

	book, err := s.books.AddBook(books.CreateParams{
		Title:           req.Title,
		Author:          req.Author,
		ISBN:            req.ISBN,
		Category:        books.Category(req.Category),
		TotalCopies:     req.TotalCopies,
		AvailableCopies: req.AvailableCopies,
		Description:     req.Description,
		PublishedYear:   req.PublishedYear,
	})
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, BookResponse{
		Code:    http.StatusCreated,
		Message: "book created",
		Data:    book,
	})
}

// updateBook applies an administrative patch to a book
func (s *Server) updateBook(c *gin.Context) {
	var req BookUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.bindError(c, err)
		return
	}

	params := books.UpdateParams{
		Title:           req.Title,
		Author:          req.Author,
		TotalCopies:     req.TotalCopies,
		AvailableCopies: req.AvailableCopies,
		Description:     req.Description,
		PublishedYear:   req.PublishedYear,
	}
	if req.Category != nil {
		category := books.Category(*req.Category)
		params.Category = &category
	}

	book, err := s.books.UpdateBook(c.Request.Context(), c.Param("id"), params)
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, BookResponse{
		Code:    http.StatusOK,
		Message: "book updated",
		Data:    book,
	})
}

// deleteBook removes a book that has no copies on loan
func (s *Server) deleteBook(c *gin.Context) {
	if err := s.books.DeleteBook(c.Request.Context(), c.Param("id")); err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response[struct{}]{
		Code:    http.StatusOK,
		Message: "book deleted",
	})
}
