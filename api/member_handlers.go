package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/librakeep/librakeep/pkg/errors"
	"github.com/librakeep/librakeep/pkg/members"
	"github.com/librakeep/librakeep/pkg/types"
)

// listMembers returns a page of members, newest first
func (s *Server) listMembers(c *gin.Context) {
	var query PageQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		s.bindError(c, err)
		return
	}

	results, info, err := s.members.ListMembers(types.PageParams{Page: query.Page, Limit: query.Limit})
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, MemberListResponse{
		Code:       http.StatusOK,
		Message:    "ok",
		Data:       results,
		Pagination: info,
	})
}

// getMember returns a single member by ID
func (s *Server) getMember(c *gin.Context) {
	member, err := s.members.GetMember(c.Param("id"))
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, MemberResponse{
		Code:    http.StatusOK,
		Message: "ok",
		Data:    member,
	})
}

// updateMember changes a member's name and/or role
func (s *Server) updateMember(c *gin.Context) {
	var req MemberUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.bindError(c, err)
		return
	}
	if req.Name == nil && req.Role == nil {
		s.handleError(c, errors.NewValidationError("no valid fields to update"))
		return
	}

	id := c.Param("id")
	var member *members.Member
	var err error

	if req.Name != nil {
		member, err = s.members.UpdateName(id, *req.Name)
		if err != nil {
			s.handleError(c, err)
			return
		}
	}
	if req.Role != nil {
		member, err = s.members.UpdateRole(id, members.Role(*req.Role))
		if err != nil {
			s.handleError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, MemberResponse{
		Code:    http.StatusOK,
		Message: "member updated",
		Data:    member,
	})
}

// deleteMember removes a member account
func (s *Server) deleteMember(c *gin.Context) {
	if err := s.members.DeleteMember(c.Param("id")); err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response[struct{}]{
		Code:    http.StatusOK,
		Message: "member deleted",
	})
}
