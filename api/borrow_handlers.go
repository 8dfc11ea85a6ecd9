package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/librakeep/librakeep/pkg/borrows"
	"github.com/librakeep/librakeep/pkg/errors"
	"github.com/librakeep/librakeep/pkg/members"
	"github.com/librakeep/librakeep/pkg/types"
)

// createBorrow lends a book. Members borrow for themselves; a librarian may
// name another member in the request.
func (s *Server) createBorrow(c *gin.Context) {
	var req BorrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.bindError(c, err)
		return
	}

	caller := memberFrom(c)
	memberID := caller.ID
	if req.MemberID != "" && req.MemberID != caller.ID {
		if caller.Role != members.RoleAdmin {
			s.handleError(c, errors.NewForbiddenError("cannot borrow on behalf of another member"))
			return
		}
		memberID = req.MemberID
	}

	borrow, err := s.borrows.Borrow(c.Request.Context(), memberID, req.BookID)
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, BorrowResponse{
		Code:    http.StatusCreated,
		Message: "book borrowed",
		Data:    borrow,
	})
}

// returnBorrow closes a borrow. A member may only return their own loans;
// librarians may return any.
func (s *Server) returnBorrow(c *gin.Context) {
	id := c.Param("id")
	caller := memberFrom(c)

	if caller.Role != members.RoleAdmin {
		borrow, err := s.borrows.GetBorrow(id)
		if err != nil {
			s.handleError(c, err)
			return
		}
		if borrow.MemberID != caller.ID {
			s.handleError(c, errors.NewForbiddenError("cannot return another member's loan"))
			return
		}
	}

	borrow, err := s.borrows.Return(c.Request.Context(), id)
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, BorrowResponse{
		Code:    http.StatusOK,
		Message: "book returned",
		Data:    borrow,
	})
}

// listMyBorrows returns the caller's own borrow history
func (s *Server) listMyBorrows(c *gin.Context) {
	var query BorrowListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		s.bindError(c, err)
		return
	}

	caller := memberFrom(c)
	results, info, err := s.borrows.ListForMember(caller.ID, borrows.Status(query.Status),
		types.PageParams{Page: query.Page, Limit: query.Limit})
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, BorrowListResponse{
		Code:       http.StatusOK,
		Message:    "ok",
		Data:       results,
		Pagination: info,
	})
}

// listBorrows returns a page of all borrows, optionally filtered
func (s *Server) listBorrows(c *gin.Context) {
	var query BorrowListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		s.bindError(c, err)
		return
	}

	results, info, err := s.borrows.List(borrows.ListOptions{
		MemberID: query.MemberID,
		BookID:   query.BookID,
		Status:   borrows.Status(query.Status),
		Page:     types.PageParams{Page: query.Page, Limit: query.Limit},
	})
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, BorrowListResponse{
		Code:       http.StatusOK,
		Message:    "ok",
		Data:       results,
		Pagination: info,
	})
}

// getBorrow returns a single borrow by ID
func (s *Server) getBorrow(c *gin.Context) {
	borrow, err := s.borrows.GetBorrow(c.Param("id"))
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, BorrowResponse{
		Code:    http.StatusOK,
		Message: "ok",
		Data:    borrow,
	})
}

// listOverdueBorrows returns every loan past its due date, most overdue first
func (s *Server) listOverdueBorrows(c *gin.Context) {
	var query PageQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		s.bindError(c, err)
		return
	}

	results, info, err := s.borrows.ListOverdue(types.PageParams{Page: query.Page, Limit: query.Limit})
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, BorrowListResponse{
		Code:       http.StatusOK,
		Message:    "ok",
		Data:       results,
		Pagination: info,
	})
}

// sweepOverdue runs the overdue sweep on demand
func (s *Server) sweepOverdue(c *gin.Context) {
	updated, err := s.borrows.RunOverdueSweep(c.Request.Context())
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response[SweepResponse]{
		Code:    http.StatusOK,
		Message: "sweep completed",
		Data:    &SweepResponse{Updated: updated},
	})
}
