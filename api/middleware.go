package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/librakeep/librakeep/pkg/errors"
	"github.com/librakeep/librakeep/pkg/members"
)

const (
	ctxMember    = "member"
	ctxRequestID = "request_id"
)

// requestIDMiddleware tags each request with a unique ID, honoring one the
// client already supplied
func (s *Server) requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(ctxRequestID, requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// loggingMiddleware logs each request through the structured logger
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.Info("http request", map[string]interface{}{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  c.ClientIP(),
			"request_id": c.GetString(ctxRequestID),
		})
	}
}

// authenticate resolves the Bearer token to a member and stores it on the
// context. Requests without a valid token are rejected.
func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			s.abortWithError(c, errors.NewUnauthorizedError("missing bearer token"))
			return
		}

		member, err := s.auth.ValidateToken(token)
		if err != nil {
			s.abortWithError(c, err)
			return
		}

		c.Set(ctxMember, member)
		c.Next()
	}
}

// requireAdmin rejects requests from non-librarian members. Must run after
// authenticate.
func (s *Server) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		member := memberFrom(c)
		if member == nil || member.Role != members.RoleAdmin {
			s.abortWithError(c, errors.NewForbiddenError("admin access required"))
			return
		}
		c.Next()
	}
}

// memberFrom returns the authenticated member from the context, or nil
func memberFrom(c *gin.Context) *members.Member {
	value, exists := c.Get(ctxMember)
	if !exists {
		return nil
	}
	member, ok := value.(*members.Member)
	if !ok {
		return nil
	}
	return member
}

func (s *Server) abortWithError(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	resp := ErrorResponse{Code: status, Message: http.StatusText(status)}
	if e := errors.Get(err); e != nil {
		resp.Message = e.Message
		resp.ErrorCode = string(e.Code)
	}
	c.AbortWithStatusJSON(status, resp)
}
