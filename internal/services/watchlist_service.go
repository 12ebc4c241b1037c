package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"portfolio-tracker/internal/models"
)

type WatchlistService struct {
	db     *gorm.DB
	quotes QuoteProvider
}

func NewWatchlistService(db *gorm.DB, quotes QuoteProvider) *WatchlistService {
	return &WatchlistService{db: db, quotes: quotes}
}

// Add puts a symbol on the user's watchlist. The symbol is validated with a
// live quote before it is stored.
func (s *WatchlistService) Add(userID uint, symbol string) (*models.WatchlistItem, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}

	if _, err := s.quotes.GetQuote(symbol); err != nil {
		return nil, err
	}

	var existing models.WatchlistItem
	err := s.db.Where("user_id = ? AND symbol = ?", userID, symbol).First(&existing).Error
	if err == nil {
		return nil, fmt.Errorf("%w: %s already in watchlist", ErrConflict, symbol)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	item := models.WatchlistItem{UserID: userID, Symbol: symbol}
	if err := s.db.Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *WatchlistService) List(userID uint) ([]models.WatchlistItem, error) {
	var items []models.WatchlistItem
	err := s.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&items).Error
	return items, err
}

func (s *WatchlistService) Remove(userID uint, symbol string) error {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	result := s.db.Where("user_id = ? AND symbol = ?", userID, symbol).
		Delete(&models.WatchlistItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s not in watchlist", ErrNotFound, symbol)
	}
	return nil
}
