// Package server exposes the receipt pipeline and ledger over HTTP.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jiwoo-hwang/receipt-budget/internal/auth"
	"github.com/jiwoo-hwang/receipt-budget/internal/export"
	"github.com/jiwoo-hwang/receipt-budget/internal/learning"
	"github.com/jiwoo-hwang/receipt-budget/internal/ocr"
	"github.com/jiwoo-hwang/receipt-budget/internal/parser"
	"github.com/jiwoo-hwang/receipt-budget/internal/repository"
)

// ReceiptScanner is the OCR boundary, satisfied by *ocr.Extractor and
// stubbed in tests.
type ReceiptScanner interface {
	Scan(ctx context.Context, imageBytes []byte) (ocr.Result, error)
}

type Server struct {
	logger       *slog.Logger
	scanner      ReceiptScanner
	parser       *parser.Parser
	learning     *learning.Store
	transactions repository.TransactionRepository
	budget       repository.BudgetRepository
	exporter     *export.Service
	tokens       auth.TokenService
}

func New(
	logger *slog.Logger,
	scanner ReceiptScanner,
	p *parser.Parser,
	store *learning.Store,
	transactions repository.TransactionRepository,
	budget repository.BudgetRepository,
	exporter *export.Service,
	tokens auth.TokenService,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		logger:       logger,
		scanner:      scanner,
		parser:       p,
		learning:     store,
		transactions: transactions,
		budget:       budget,
		exporter:     exporter,
		tokens:       tokens,
	}
}

func (s *Server) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth.NewHandler(s.tokens).RegisterRoutes(router.Group("/auth"))

	api := router.Group("/api")
	api.Use(auth.Middleware(s.tokens))

	api.POST("/scan", s.scan)
	api.GET("/transactions", s.listTransactions)
	api.PATCH("/transactions/:id", s.correctTransaction)
	api.DELETE("/transactions/:id", s.deleteTransaction)
	api.GET("/budget", s.getBudget)
	api.POST("/budget", s.setBudget)
	api.GET("/stats", s.stats)
	api.GET("/export", s.exportXLSX)
	api.GET("/learning", s.learningDump)
}

func userID(c *gin.Context) string {
	if claims := auth.MustGetClaims(c); claims != nil {
		return claims.UserID
	}
	return ""
}
