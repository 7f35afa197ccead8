package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func (s *Server) getBudget(c *gin.Context) {
	budget, ok, err := s.budget.Get(c.Request.Context(), userID(c))
	if err != nil {
		s.logger.Error("get budget failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "budget lookup failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusOK, gin.H{"budget": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

type budgetRequest struct {
	Budget int64 `json:"budget"`
}

func (s *Server) setBudget(c *gin.Context) {
	var req budgetRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Budget <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "budget must be a positive integer"})
		return
	}

	if err := s.budget.Set(c.Request.Context(), userID(c), req.Budget); err != nil {
		s.logger.Error("set budget failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "budget save failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "budget": req.Budget})
}

func (s *Server) stats(c *gin.Context) {
	stats, err := s.transactions.Stats(c.Request.Context(), userID(c), c.Query("month"))
	if err != nil {
		s.logger.Error("stats failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats failed"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) exportXLSX(c *gin.Context) {
	data, err := s.exporter.ExportTransactionsXLSX(c.Request.Context(), userID(c))
	if err != nil {
		s.logger.Error("export failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}

	filename := fmt.Sprintf("transactions-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// learningDump exposes the correction dictionary, mainly for debugging how
// well the normalizer is being taught.
func (s *Server) learningDump(c *gin.Context) {
	corrections, err := s.learning.All()
	if err != nil {
		s.logger.Error("learning dump failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "learning dump failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(corrections), "corrections": corrections})
}
