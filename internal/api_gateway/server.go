package api_gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/microfin-loan-engine/internal/api_gateway/handler"
	"github.com/microfin-loan-engine/internal/config"
	"github.com/microfin-loan-engine/internal/engine/service"
)

// Server handles HTTP requests and manages the application's lifecycle
type Server struct {
	logger     *slog.Logger
	httpServer *http.Server
	httpRouter *gin.Engine
}

// Services bundles the engine services the gateway exposes.
type Services struct {
	Loans       service.LoanService
	Collections service.CollectionService
	Ledger      service.LedgerService
	Profit      service.ProfitService
	Partners    service.PartnerService
	Expenses    service.ExpenseService
}

// NewServer creates and configures a new HTTP server over the engine services
func NewServer(log *slog.Logger, cfg *config.Config, svcs Services) *Server {
	if cfg.Application.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	httpRouter := gin.New()

	loanHandler := handler.NewLoanHandler(log, svcs.Loans)
	paymentHandler := handler.NewPaymentHandler(log, svcs.Collections)
	ledgerHandler := handler.NewLedgerHandler(log, svcs.Ledger, svcs.Profit)
	partnerHandler := handler.NewPartnerHandler(log, svcs.Partners)
	expenseHandler := handler.NewExpenseHandler(log, svcs.Expenses)

	setupRouter(log, httpRouter, loanHandler, paymentHandler, ledgerHandler, partnerHandler, expenseHandler)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Server{
		logger:     log,
		httpServer: httpServer,
		httpRouter: httpRouter,
	}
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the HTTP server with a timeout
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.httpServer.WriteTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop HTTP server: %w", err)
	}

	return nil
}
