// Package main provides the entry point for the cross-chain verification daemon.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crosschain-verification/internal/config"
	"crosschain-verification/internal/evm"
	"crosschain-verification/internal/handler"
	"crosschain-verification/internal/heights"
	"crosschain-verification/internal/logger"
	"crosschain-verification/internal/processor"
	"crosschain-verification/internal/tui"

	dbpkg "crosschain-verification/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	// Try to load .env from CWD if present; otherwise use environment as-is
	if _, statErr := os.Stat(".env"); statErr == nil {
		_ = godotenv.Load(".env")
	}

	cfg := config.Load()

	// If debug logs are enabled, write them to file to avoid interfering with TUI
	var logWriter io.Writer = os.Stderr
	if cfg.Debug {
		logFile, err := os.OpenFile("verifier.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err == nil {
			logWriter = logFile
			fmt.Fprintf(os.Stderr, "Debug logs written to verifier.log\n")
		} else {
			fmt.Fprintf(os.Stderr, "Warning: failed to open log file, logs will go to stderr (may interfere with TUI): %v\n", err)
		}
	}

	log := logger.NewWithWriter(cfg.Debug, logWriter)

	fmt.Printf("Cross-chain verifier starting...\n")
	fmt.Printf("Config loaded: %s\n", cfg.DebugString())

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	gormDB, err := dbpkg.Open(cfg)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	if gormDB != nil {
		log.Printf("DB connected")

		if err := dbpkg.AutoMigrate(gormDB); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
		log.Printf("Migrations applied")
	} else {
		log.Printf("DATABASE_URL not provided - vote journal persistence disabled")
	}

	evidence, err := evm.Dial(cfg.EVMRPCURL)
	if err != nil {
		log.Fatalf("failed to connect source chain: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Create channel for TUI updates (TUI is always enabled)
	tuiUpdateCh := make(chan interface{}, processor.UpdateChannelBufferSize)
	// Start TUI in a goroutine
	go func() {
		if err := tui.Run(tuiUpdateCh); err != nil {
			log.Printf("TUI error: %v", err)
		}
		// TUI exited, cancel context to trigger shutdown
		cancel()
	}()

	cell := heights.NewCell(0)
	verifyHandler := handler.New(cfg.VerifierAddress, cfg.VotingVerifierContract, evidence, cell, log)
	journal := dbpkg.NewJournal(gormDB, log)

	proc, err := processor.New(cfg, []processor.EventHandler{verifyHandler}, journal, cell, tuiUpdateCh, log)
	if err != nil {
		log.Printf("failed to init processor: %v", err)
		return
	}

	go func() {
		if err := proc.Run(ctx); err != nil {
			log.Printf("processor stopped: %v", err)
			cancel()
		}
	}()

	<-ctx.Done()
	log.Println("shutting down...")

	// Close processor first (this will stop all goroutines and connections)
	if err := proc.Close(); err != nil {
		log.Printf("close error: %v", err)
	}

	// Close TUI update channel to stop sending updates
	close(tuiUpdateCh)
	// Give TUI a moment to process the close and quit
	time.Sleep(processor.TUICloseDelay)

	// Ensure logs flushed in some environments
	_ = os.Stderr.Sync()
	_ = os.Stdout.Sync()
}
