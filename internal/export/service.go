package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jiwoo-hwang/receipt-budget/internal/repository"
)

// Service is a tiny façade over the transaction repository that produces
// XLSX bytes for exports.
type Service struct {
	transactions repository.TransactionRepository
	logger       *slog.Logger
}

func NewService(transactions repository.TransactionRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{transactions: transactions, logger: logger}
}

// ExportTransactionsXLSX returns an XLSX workbook (as bytes) with all of
// the user's non-deleted transactions, newest first.
func (s *Service) ExportTransactionsXLSX(ctx context.Context, userID string) ([]byte, error) {
	start := time.Now()

	txs, err := s.transactions.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Transactions"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	if index, _ := f.GetSheetIndex("Sheet1"); index != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	headers := []string{"날짜", "가맹점", "금액", "카테고리", "OCR 원본"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, tx := range txs {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, tx.Date)
		write(2, tx.Store)
		if tx.Amount != nil {
			write(3, *tx.Amount)
		} else {
			write(3, "")
		}
		write(4, tx.Category)
		write(5, tx.OCRStore)

		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 18) // date
	_ = f.SetColWidth(sheet, "B", "B", 28) // merchant
	_ = f.SetColWidth(sheet, "C", "C", 12) // amount
	_ = f.SetColWidth(sheet, "D", "D", 14) // category
	_ = f.SetColWidth(sheet, "E", "E", 28) // ocr original

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"user_id", userID,
		"rows", len(txs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
