// Package main provides the main entry point for the librakeep server
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/librakeep/librakeep/api"
	"github.com/librakeep/librakeep/pkg/books"
	"github.com/librakeep/librakeep/pkg/borrows"
	"github.com/librakeep/librakeep/pkg/config"
	"github.com/librakeep/librakeep/pkg/logger"
	"github.com/librakeep/librakeep/pkg/members"
	"github.com/librakeep/librakeep/pkg/store"
)

// Version information (set by build process)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Command line flags
var (
	configFile  = flag.String("config", "", "Path to configuration file")
	logLevel    = flag.String("log-level", "", "Log level (debug, info, warn, error)")
	showVersion = flag.Bool("version", false, "Show version information")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("librakeep %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)
		os.Exit(0)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("received shutdown signal, gracefully shutting down...")
		cancel()
	}()

	if err := run(ctx); err != nil {
		log.Fatalf("librakeep failed: %v", err)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	logr := logger.NewConsoleLogger(cfg.LogLevel)
	logr.Info("starting librakeep", map[string]interface{}{
		"version":    Version,
		"build_time": BuildTime,
		"git_commit": GitCommit,
	})

	s, err := store.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() {
		if closeErr := s.Close(); closeErr != nil {
			logr.Error("failed to close store", closeErr)
		}
	}()

	if err := s.Migrate(&members.Member{}, &books.Book{}, &borrows.Borrow{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	memberRepo := members.NewRepository(s.DB())
	auth := members.NewAuthService(memberRepo, cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry)
	memberMgr := members.NewManager(memberRepo)
	bookSvc := books.NewService(s, books.NewRepository(s.DB()), logr)
	borrowSvc := borrows.NewService(s, borrows.NewRepository(s.DB()), memberRepo, cfg.Lending, logr)

	var wg sync.WaitGroup
	if cfg.Lending.SweepInterval > 0 {
		sweeper := borrows.NewSweeper(borrowSvc, cfg.Lending.SweepInterval, logr)
		wg.Add(1)
		go func() {
			defer wg.Done()
			sweeper.Run(ctx)
		}()
	}

	api.Version = Version
	server := api.NewServer(cfg, logr, s, auth, memberMgr, bookSvc, borrowSvc)
	err = server.Start(ctx)

	wg.Wait()
	return err
}
