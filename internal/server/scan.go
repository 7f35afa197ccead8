package server

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jiwoo-hwang/receipt-budget/internal/entity"
)

// scan ingests a photographed receipt: OCR, field extraction, and a new
// ledger row. Extraction never fails outright; missing fields degrade to
// their fallbacks before the row is written.
func (s *Server) scan(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no image uploaded"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable upload"})
		return
	}
	defer file.Close()
	imageBytes, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable upload"})
		return
	}

	res, err := s.scanner.Scan(c.Request.Context(), imageBytes)
	if err != nil {
		s.logger.Error("scan failed", "error", err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "ocr failed"})
		return
	}

	fields := s.parser.Parse(res.Lines, res.ROIBrand)

	// The bottom-strip pass backs up the line extractor.
	if fields.TotalAmount == nil && res.ROIAmount > 0 {
		amount := res.ROIAmount
		fields.TotalAmount = &amount
	}

	date := fields.Date
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	// Remember what OCR actually saw so a later user edit can teach the
	// normalizer.
	ocrStore := res.ROIBrand
	if ocrStore == "" {
		ocrStore = fields.Merchant
	}

	tx := &entity.Transaction{
		ID:        uuid.New(),
		UserID:    userID(c),
		Store:     fields.Merchant,
		Amount:    fields.TotalAmount,
		Date:      date,
		Category:  fields.Category,
		OCRStore:  ocrStore,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.transactions.Insert(c.Request.Context(), tx); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "success",
		"receipt":     fields,
		"transaction": tx,
		"roi_brand":   res.ROIBrand,
	})
}
