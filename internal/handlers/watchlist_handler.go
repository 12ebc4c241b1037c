package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"portfolio-tracker/internal/services"
)

type WatchlistHandler struct {
	watchlistService *services.WatchlistService
}

func NewWatchlistHandler(watchlistService *services.WatchlistService) *WatchlistHandler {
	return &WatchlistHandler{watchlistService: watchlistService}
}

type AddWatchlistRequest struct {
	Symbol string `json:"symbol" binding:"required"`
}

func (h *WatchlistHandler) Add(c *gin.Context) {
	userID := currentUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req AddWatchlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.watchlistService.Add(userID, req.Symbol)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

func (h *WatchlistHandler) List(c *gin.Context) {
	userID := currentUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	items, err := h.watchlistService.List(userID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"watchlist": items})
}

func (h *WatchlistHandler) Remove(c *gin.Context) {
	userID := currentUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if err := h.watchlistService.Remove(userID, c.Param("symbol")); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Stock removed from watchlist"})
}
