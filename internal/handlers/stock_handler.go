package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"portfolio-tracker/internal/services"
)

// StockHandler exposes the market gateway passthroughs.
type StockHandler struct {
	marketService *services.MarketDataService
}

func NewStockHandler(marketService *services.MarketDataService) *StockHandler {
	return &StockHandler{marketService: marketService}
}

func (h *StockHandler) GetQuote(c *gin.Context) {
	quote, err := h.marketService.GetQuote(c.Param("symbol"))
	if err != nil {
		// An unknown symbol on the lookup endpoint is a missing resource,
		// not a bad request.
		if errors.Is(err, services.ErrInvalidSymbol) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Stock not found"})
			return
		}
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

func (h *StockHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'q' is required"})
		return
	}

	result, err := h.marketService.SearchSymbols(query)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *StockHandler) GetCompanyProfile(c *gin.Context) {
	profile, err := h.marketService.GetCompanyProfile(c.Param("symbol"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *StockHandler) GetPriceTarget(c *gin.Context) {
	target, err := h.marketService.GetPriceTarget(c.Param("symbol"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, target)
}

func (h *StockHandler) GetRecommendations(c *gin.Context) {
	trends, err := h.marketService.GetRecommendationTrends(c.Param("symbol"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, trends)
}

func (h *StockHandler) GetMarketNews(c *gin.Context) {
	news, err := h.marketService.GetMarketNews(c.Query("category"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, news)
}
