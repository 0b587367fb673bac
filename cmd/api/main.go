package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/panjf2000/ants/v2"

	"github.com/microfin-loan-engine/internal/api_gateway"
	"github.com/microfin-loan-engine/internal/config"
	"github.com/microfin-loan-engine/internal/data/mongo"
	"github.com/microfin-loan-engine/internal/data/postgres"
	"github.com/microfin-loan-engine/internal/engine/service"
	"github.com/microfin-loan-engine/internal/logger"
	"github.com/microfin-loan-engine/internal/platform/messaging/producers"
	"github.com/microfin-loan-engine/internal/platform/persistence"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("api")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	// Initialize databases with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Initialize Kafka producer for receipt events
	receiptProducer, err := producers.NewReceiptEventProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize receipt event producer", "error", err)
		os.Exit(1)
	}

	// Worker pool shared by the ledger source fetches
	fetchPool, err := ants.NewPool(cfg.Engine.FetchPoolSize)
	if err != nil {
		log.Error("Failed to initialize worker pool", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	loanRepo := mongo.NewLoanRepository(log, mongoDB.Database())
	receiptRepo := mongo.NewReceiptRepository(log, mongoDB.Database())
	partnerRepo := postgres.NewPartnerRepository(log, postgresDB)
	expenseRepo := postgres.NewExpenseRepository(log, postgresDB)

	// Initialize engine services
	svcs := api_gateway.Services{
		Loans:       service.NewLoanService(log, loanRepo),
		Collections: service.NewCollectionService(log, mongoDB, loanRepo, receiptRepo, receiptProducer),
		Ledger:      service.NewLedgerService(log, fetchPool, loanRepo, receiptRepo, partnerRepo, expenseRepo),
		Profit:      service.NewProfitService(log, loanRepo, receiptRepo, partnerRepo),
		Partners:    service.NewPartnerService(log, partnerRepo),
		Expenses:    service.NewExpenseService(log, expenseRepo),
	}

	// Initialize REST server
	server := api_gateway.NewServer(log, cfg, svcs)
	log.Info("REST server initialized")

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Shutdown HTTP server first so no new work arrives
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	fetchPool.Release()

	if err = receiptProducer.Close(); err != nil {
		log.Error("Error closing Kafka producer", "error", err)
	}

	postgresDB.Close()

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Server shutdown completed with errors")
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
