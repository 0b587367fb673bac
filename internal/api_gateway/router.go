package api_gateway

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/microfin-loan-engine/internal/api_gateway/handler"
	"github.com/microfin-loan-engine/internal/api_gateway/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	loanHandler *handler.LoanHandler,
	paymentHandler *handler.PaymentHandler,
	ledgerHandler *handler.LedgerHandler,
	partnerHandler *handler.PartnerHandler,
	expenseHandler *handler.ExpenseHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// Loan lifecycle
		loans := v1.Group("/loans")
		{
			loans.POST("", loanHandler.Create)
			loans.GET("/:id", loanHandler.GetByID)
			loans.POST("/:id/payments", paymentHandler.Collect)
			loans.POST("/:id/topups", loanHandler.TopUp)
			loans.POST("/:id/foreclosure", loanHandler.Foreclose)
		}

		// Derived company views
		companies := v1.Group("/companies")
		{
			companies.GET("/:id/ledger", ledgerHandler.GetLedger)
			companies.GET("/:id/profit-split", ledgerHandler.GetProfitSplit)
		}

		// Partner capital
		partners := v1.Group("/partners")
		{
			partners.POST("", partnerHandler.Create)
			partners.POST("/:id/transactions", partnerHandler.AddTransaction)
		}

		// Expenses
		v1.POST("/expenses", expenseHandler.Create)
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})

	// Prometheus scrape endpoint
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
