package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/librakeep/librakeep/pkg/members"
)

// register creates a new member account and returns it with a token.
// Role requests are honored so a first librarian can be bootstrapped; an
// empty role registers a regular member.
func (s *Server) register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.bindError(c, err)
		return
	}

	result, err := s.auth.Register(members.RegisterParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     members.Role(req.Role),
	})
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{
		Code:    http.StatusCreated,
		Message: "member registered",
		Data:    result,
	})
}

// login authenticates a member and returns a fresh token
func (s *Server) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.bindError(c, err)
		return
	}

	result, err := s.auth.Login(req.Email, req.Password)
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		Code:    http.StatusOK,
		Message: "login successful",
		Data:    result,
	})
}

// currentMember returns the member resolved from the bearer token
func (s *Server) currentMember(c *gin.Context) {
	member := memberFrom(c)

	c.JSON(http.StatusOK, MemberResponse{
		Code:    http.StatusOK,
		Message: "ok",
		Data:    member,
	})
}
