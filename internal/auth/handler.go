package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handler issues session tokens. The identity provider integration lives
// outside this service; callers exchange an already-verified identity for
// a bearer token here.
type Handler struct {
	Tokens TokenService
}

func NewHandler(tokens TokenService) *Handler {
	return &Handler{Tokens: tokens}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/token", h.issueToken)
}

type tokenRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

func (h *Handler) issueToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	token, exp, err := h.Tokens.Sign(req.UserID, req.Name, req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sign failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "expires_at": exp})
}
