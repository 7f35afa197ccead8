package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jiwoo-hwang/receipt-budget/internal/common"
)

func (s *Server) listTransactions(c *gin.Context) {
	txs, err := s.transactions.ListByUser(c.Request.Context(), userID(c))
	if err != nil {
		s.logger.Error("list transactions failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, txs)
}

type correctionRequest struct {
	Field string `json:"field" binding:"required"`
	Value any    `json:"value" binding:"required"`
	// OCROriginal is the merchant string as OCR produced it, supplied when
	// the user edits the store field of a scanned transaction.
	OCROriginal string `json:"ocr_original"`
}

// correctTransaction applies an inline field edit. A store correction also
// feeds the learned-correction store so the same OCR misread resolves
// correctly next time.
func (s *Server) correctTransaction(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction id"})
		return
	}

	var req correctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	value, err := coerceFieldValue(req.Field, req.Value)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.transactions.UpdateField(c.Request.Context(), userID(c), id, req.Field, value); err != nil {
		switch {
		case errors.Is(err, common.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
		case errors.Is(err, common.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		default:
			s.logger.Error("update transaction failed", "id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		}
		return
	}

	if req.Field == "store" {
		corrected, _ := value.(string)
		raw := req.OCROriginal
		if raw == "" {
			raw = corrected
		}
		// Record ignores no-op and implausible corrections itself.
		if err := s.learning.Record(raw, corrected); err != nil {
			s.logger.Error("record correction failed", "raw", raw, "error", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "updated": gin.H{req.Field: value}})
}

func (s *Server) deleteTransaction(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction id"})
		return
	}

	if err := s.transactions.SoftDelete(c.Request.Context(), userID(c), id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
			return
		}
		s.logger.Error("delete transaction failed", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// coerceFieldValue maps the loosely-typed JSON value onto the column type.
func coerceFieldValue(field string, value any) (any, error) {
	switch field {
	case "store", "date", "category":
		str, ok := value.(string)
		if !ok || str == "" {
			return nil, fmt.Errorf("%s must be a non-empty string", field)
		}
		return str, nil
	case "amount":
		num, ok := value.(float64) // JSON numbers decode as float64
		if !ok || num != float64(int64(num)) || num < 0 {
			return nil, fmt.Errorf("amount must be a non-negative integer")
		}
		return int64(num), nil
	default:
		return nil, fmt.Errorf("field %q is not updatable", field)
	}
}
