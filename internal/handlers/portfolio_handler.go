package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"portfolio-tracker/internal/services"
)

type PortfolioHandler struct {
	portfolioService *services.PortfolioService
}

func NewPortfolioHandler(portfolioService *services.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{portfolioService: portfolioService}
}

type CreatePortfolioRequest struct {
	Name string `json:"name" binding:"required,min=1,max=60"`
}

type TransactionRequest struct {
	Symbol   string  `json:"symbol" binding:"required"`
	Quantity float64 `json:"quantity" binding:"required,gt=0"`
	Type     string  `json:"type" binding:"required,oneof=BUY SELL"`
}

func (h *PortfolioHandler) Create(c *gin.Context) {
	userID := currentUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreatePortfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	portfolio, err := h.portfolioService.Create(userID, req.Name)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, portfolio)
}

func (h *PortfolioHandler) List(c *gin.Context) {
	userID := currentUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	portfolios, err := h.portfolioService.List(userID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"portfolios": portfolios})
}

func (h *PortfolioHandler) Get(c *gin.Context) {
	userID := currentUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	portfolioID, ok := pathID(c)
	if !ok {
		return
	}

	portfolio, err := h.portfolioService.Get(userID, portfolioID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	holdings, err := h.portfolioService.Holdings(userID, portfolioID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"portfolio": portfolio,
		"holdings":  holdings,
	})
}

func (h *PortfolioHandler) Delete(c *gin.Context) {
	userID := currentUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	portfolioID, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.portfolioService.Delete(userID, portfolioID); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Portfolio deleted"})
}

func (h *PortfolioHandler) AddTransaction(c *gin.Context) {
	userID := currentUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	portfolioID, ok := pathID(c)
	if !ok {
		return
	}

	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	transaction, err := h.portfolioService.ApplyTransaction(userID, portfolioID, services.TransactionRequest{
		Symbol:   strings.ToUpper(strings.TrimSpace(req.Symbol)),
		Quantity: req.Quantity,
		Kind:     req.Type,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, transaction)
}

func (h *PortfolioHandler) ListTransactions(c *gin.Context) {
	userID := currentUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	portfolioID, ok := pathID(c)
	if !ok {
		return
	}

	transactions, err := h.portfolioService.ListTransactions(userID, portfolioID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": transactions})
}

func (h *PortfolioHandler) GetSummary(c *gin.Context) {
	userID := currentUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	portfolioID, ok := pathID(c)
	if !ok {
		return
	}

	summary, err := h.portfolioService.Summary(userID, portfolioID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *PortfolioHandler) GetPerformance(c *gin.Context) {
	userID := currentUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	performance, err := h.portfolioService.Performance(userID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, performance)
}

func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid portfolio id"})
		return 0, false
	}
	return uint(id), true
}
