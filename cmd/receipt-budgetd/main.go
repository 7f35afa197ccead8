package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/jiwoo-hwang/receipt-budget/internal/auth"
	"github.com/jiwoo-hwang/receipt-budget/internal/common"
	"github.com/jiwoo-hwang/receipt-budget/internal/export"
	"github.com/jiwoo-hwang/receipt-budget/internal/learning"
	"github.com/jiwoo-hwang/receipt-budget/internal/ocr"
	"github.com/jiwoo-hwang/receipt-budget/internal/parser"
	"github.com/jiwoo-hwang/receipt-budget/internal/repository"
	"github.com/jiwoo-hwang/receipt-budget/internal/server"
)

func main() {
	_ = godotenv.Load()

	// Logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()
	log := logger.Sugar()

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(slogger)

	// Config
	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	// Ledger
	db, err := repository.Open(repository.Config{Path: cfg.Database.Path}, slogger)
	if err != nil {
		log.Fatalf("opening ledger: %v", err)
	}
	defer db.Close()
	if err := repository.Migrate(db); err != nil {
		log.Fatalf("migrating ledger: %v", err)
	}

	// Learned-correction store
	store, err := learning.Open(cfg.Learning.Path, slogger)
	if err != nil {
		log.Fatalf("opening learning store: %v", err)
	}
	defer store.Close()

	// Pipeline
	extractor := ocr.NewExtractor(ocr.Config{
		Tesseract:   cfg.OCR.Tesseract,
		TessdataDir: cfg.OCR.TessdataDir,
		Lang:        cfg.OCR.Lang,
	}, slogger)
	receiptParser := parser.New(store, parser.Config{
		FuzzyThreshold:     cfg.Parser.FuzzyThreshold,
		MaxPlausibleAmount: cfg.Parser.MaxPlausibleAmount,
	})

	// Repositories and services
	budgetRepo := repository.NewBudgetRepository(db)
	txRepo := repository.NewTransactionRepository(db, budgetRepo, slogger)
	exporter := export.NewService(txRepo, slogger)

	tokens := auth.TokenService{
		Secret:   []byte(cfg.Auth.JWTSecret),
		Issuer:   cfg.Auth.JWTIssuer,
		Duration: cfg.Auth.TokenTTL,
	}

	// HTTP server
	router := gin.Default()
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	srv := server.New(slogger, extractor, receiptParser, store, txRepo, budgetRepo, exporter, tokens)
	srv.RegisterRoutes(router)

	httpSrv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("HTTP serving on %s", cfg.Server.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Infof("shutdown signal received: %s", sig)
	case err := <-errCh:
		log.Errorf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("http shutdown error: %v", err)
	}
	log.Info("stopped")
}
