// Package api provides the HTTP REST interface for librakeep
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/librakeep/librakeep/pkg/books"
	"github.com/librakeep/librakeep/pkg/borrows"
	"github.com/librakeep/librakeep/pkg/config"
	"github.com/librakeep/librakeep/pkg/errors"
	"github.com/librakeep/librakeep/pkg/interfaces"
	"github.com/librakeep/librakeep/pkg/members"
	"github.com/librakeep/librakeep/pkg/store"
)

// Version is set at build time via -ldflags
var Version = "dev"

// Server represents the API server instance
type Server struct {
	cfg     *config.Config
	logger  interfaces.Logger
	store   *store.Store
	auth    *members.AuthService
	members *members.Manager
	books   *books.Service
	borrows *borrows.Service
	router  *gin.Engine
	server  *http.Server
	started time.Time
}

// NewServer creates a new API server instance
func NewServer(cfg *config.Config, logger interfaces.Logger, s *store.Store,
	auth *members.AuthService, memberMgr *members.Manager,
	bookSvc *books.Service, borrowSvc *borrows.Service) *Server {

	if cfg.LogLevel == "error" || cfg.LogLevel == "warn" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &Server{
		cfg:     cfg,
		logger:  logger,
		store:   s,
		auth:    auth,
		members: memberMgr,
		books:   bookSvc,
		borrows: borrowSvc,
		router:  gin.New(),
		started: time.Now(),
	}

	srv.setupMiddleware()
	srv.setupRoutes()
	return srv
}

// Router exposes the gin engine, mainly for tests
func (s *Server) Router() http.Handler {
	return s.router
}

// setupMiddleware configures middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.requestIDMiddleware())
	s.router.Use(s.loggingMiddleware())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = s.cfg.Server.AllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	s.router.Use(cors.New(corsConfig))
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthCheck)

	auth := s.router.Group("/api/auth")
	{
		auth.POST("/register", s.register)
		auth.POST("/login", s.login)
		auth.GET("/me", s.authenticate(), s.currentMember)
	}

	booksGroup := s.router.Group("/api/books")
	{
		booksGroup.GET("", s.listBooks)
		booksGroup.GET("/:id", s.getBook)

		admin := booksGroup.Group("", s.authenticate(), s.requireAdmin())
		admin.POST("", s.createBook)
		admin.PUT("/:id", s.updateBook)
		admin.DELETE("/:id", s.deleteBook)
	}

	membersGroup := s.router.Group("/api/members", s.authenticate(), s.requireAdmin())
	{
		membersGroup.GET("", s.listMembers)
		membersGroup.GET("/:id", s.getMember)
		membersGroup.PUT("/:id", s.updateMember)
		membersGroup.DELETE("/:id", s.deleteMember)
	}

	borrowsGroup := s.router.Group("/api/borrows", s.authenticate())
	{
		borrowsGroup.POST("", s.createBorrow)
		borrowsGroup.POST("/:id/return", s.returnBorrow)
		borrowsGroup.GET("/my", s.listMyBorrows)

		admin := borrowsGroup.Group("", s.requireAdmin())
		admin.GET("", s.listBorrows)
		admin.GET("/overdue", s.listOverdueBorrows)
		admin.GET("/:id", s.getBorrow)
		admin.POST("/sweep", s.sweepOverdue)
	}
}

// Start runs the server until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting API server", map[string]interface{}{
		"port": s.cfg.Server.Port,
		"mode": gin.Mode(),
	})

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return errors.NewInternalError("server failed", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}

// healthCheck reports liveness and the state of the dependencies
func (s *Server) healthCheck(c *gin.Context) {
	checks := map[string]string{"database": "ok"}
	status := "healthy"
	code := http.StatusOK

	if err := s.store.HealthCheck(); err != nil {
		checks["database"] = err.Error()
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   Version,
		Uptime:    time.Since(s.started).String(),
		Checks:    checks,
	})
}

// handleError translates a structured error into the JSON error envelope
func (s *Server) handleError(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	resp := ErrorResponse{Code: status, Message: "internal server error"}

	if e := errors.Get(err); e != nil {
		resp.Message = e.Message
		resp.ErrorCode = string(e.Code)
		resp.Details = e.Details
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", err, map[string]interface{}{
			"path":       c.Request.URL.Path,
			"request_id": c.GetString("request_id"),
		})
		// Internal details never reach the client.
		resp.Message = "internal server error"
		resp.Details = nil
	}

	c.JSON(status, resp)
}

// bindError reports a request body or query that failed binding
func (s *Server) bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Code:      http.StatusBadRequest,
		Message:   "invalid request: " + err.Error(),
		ErrorCode: string(errors.ErrCodeInvalidInput),
	})
}
