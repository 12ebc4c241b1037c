package services

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"portfolio-tracker/internal/models"
)

// PortfolioService owns portfolio CRUD and the holdings ledger. The quote
// provider is injected so trade application and summaries can be tested with
// a stub instead of live calls.
type PortfolioService struct {
	db     *gorm.DB
	quotes QuoteProvider
}

func NewPortfolioService(db *gorm.DB, quotes QuoteProvider) *PortfolioService {
	return &PortfolioService{db: db, quotes: quotes}
}

type TransactionRequest struct {
	Symbol   string
	Quantity float64
	Kind     string
}

type StockValue struct {
	Symbol       string  `json:"symbol"`
	Quantity     float64 `json:"quantity"`
	CurrentPrice float64 `json:"current_price"`
	Value        float64 `json:"value"`
	Percentage   float64 `json:"percentage"`
}

type Summary struct {
	TotalValue float64      `json:"total_value"`
	Stocks     []StockValue `json:"stocks"`
}

type PortfolioValue struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

type Performance struct {
	TotalValue float64          `json:"total_value"`
	Portfolios []PortfolioValue `json:"portfolios"`
}

func (s *PortfolioService) Create(userID uint, name string) (*models.Portfolio, error) {
	portfolio := models.Portfolio{Name: name, UserID: userID}
	if err := s.db.Create(&portfolio).Error; err != nil {
		return nil, err
	}
	return &portfolio, nil
}

func (s *PortfolioService) List(userID uint) ([]models.Portfolio, error) {
	var portfolios []models.Portfolio
	err := s.db.Where("user_id = ?", userID).Find(&portfolios).Error
	return portfolios, err
}

// Get returns a portfolio owned by userID. A portfolio belonging to another
// user is reported as not found, not as forbidden.
func (s *PortfolioService) Get(userID, portfolioID uint) (*models.Portfolio, error) {
	return ownedPortfolio(s.db, userID, portfolioID)
}

// Delete removes a portfolio and cascades to its transactions and cached
// positions.
func (s *PortfolioService) Delete(userID, portfolioID uint) error {
	if _, err := ownedPortfolio(s.db, userID, portfolioID); err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("portfolio_id = ?", portfolioID).Delete(&models.Transaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("portfolio_id = ?", portfolioID).Delete(&models.Position{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Portfolio{}, portfolioID).Error
	})
}

// ListTransactions returns the portfolio's ledger in timestamp order for
// audit display.
func (s *PortfolioService) ListTransactions(userID, portfolioID uint) ([]models.Transaction, error) {
	if _, err := ownedPortfolio(s.db, userID, portfolioID); err != nil {
		return nil, err
	}
	var transactions []models.Transaction
	err := s.db.Where("portfolio_id = ?", portfolioID).
		Order("timestamp ASC").Find(&transactions).Error
	return transactions, err
}

// Holdings derives the current positions from the transaction log.
func (s *PortfolioService) Holdings(userID, portfolioID uint) (map[string]float64, error) {
	if _, err := ownedPortfolio(s.db, userID, portfolioID); err != nil {
		return nil, err
	}
	var transactions []models.Transaction
	if err := s.db.Where("portfolio_id = ?", portfolioID).Find(&transactions).Error; err != nil {
		return nil, err
	}
	return models.ComputeHoldings(transactions), nil
}

// ApplyTransaction validates and records a trade. The fill price is pinned
// from a live quote at apply time, never supplied by the caller. The holding
// read, the sufficiency check, the ledger append and the position upsert run
// inside one database transaction so concurrent sells cannot both pass the
// check against a stale quantity.
func (s *PortfolioService) ApplyTransaction(userID, portfolioID uint, req TransactionRequest) (*models.Transaction, error) {
	if req.Kind != models.KindBuy && req.Kind != models.KindSell {
		return nil, fmt.Errorf("invalid transaction type: %s", req.Kind)
	}
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}

	if _, err := ownedPortfolio(s.db, userID, portfolioID); err != nil {
		return nil, err
	}

	quote, err := s.quotes.GetQuote(req.Symbol)
	if err != nil {
		return nil, err
	}

	transaction := models.Transaction{
		PortfolioID: portfolioID,
		Symbol:      req.Symbol,
		Price:       quote.CurrentPrice,
		Kind:        req.Kind,
		Timestamp:   time.Now(),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var position models.Position
		err := tx.Where("portfolio_id = ? AND symbol = ?", portfolioID, req.Symbol).
			First(&position).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		held := err == nil

		if req.Kind == models.KindSell {
			if position.Quantity < req.Quantity {
				return fmt.Errorf("%w: have %g, requested %g",
					ErrInsufficientHoldings, position.Quantity, req.Quantity)
			}
			transaction.Quantity = -req.Quantity
			remaining := position.Quantity - req.Quantity
			if remaining <= 0 {
				if err := tx.Delete(&position).Error; err != nil {
					return err
				}
			} else {
				position.Quantity = remaining
				if err := tx.Save(&position).Error; err != nil {
					return err
				}
			}
		} else {
			transaction.Quantity = req.Quantity
			if held {
				position.Quantity += req.Quantity
				if err := tx.Save(&position).Error; err != nil {
					return err
				}
			} else {
				position = models.Position{
					PortfolioID: portfolioID,
					Symbol:      req.Symbol,
					Quantity:    req.Quantity,
				}
				if err := tx.Create(&position).Error; err != nil {
					return err
				}
			}
		}

		return tx.Create(&transaction).Error
	})
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}

// Summary values the portfolio at live prices: one quote per held symbol,
// fetched concurrently. Values are computed first and percentages in a second
// pass, so the result does not depend on iteration order. Any failed quote
// fails the whole summary.
func (s *PortfolioService) Summary(userID, portfolioID uint) (*Summary, error) {
	holdings, err := s.Holdings(userID, portfolioID)
	if err != nil {
		return nil, err
	}

	symbols := make([]string, 0, len(holdings))
	for symbol := range holdings {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	stocks := make([]StockValue, len(symbols))
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		fetchErr error
	)
	for i, symbol := range symbols {
		wg.Add(1)
		go func(i int, symbol string, quantity float64) {
			defer wg.Done()
			quote, err := s.quotes.GetQuote(symbol)
			if err != nil {
				mu.Lock()
				if fetchErr == nil {
					fetchErr = err
				}
				mu.Unlock()
				return
			}
			stocks[i] = StockValue{
				Symbol:       symbol,
				Quantity:     quantity,
				CurrentPrice: quote.CurrentPrice,
				Value:        quote.CurrentPrice * quantity,
			}
		}(i, symbol, holdings[symbol])
	}
	wg.Wait()
	if fetchErr != nil {
		return nil, fetchErr
	}

	summary := &Summary{Stocks: stocks}
	for _, stock := range stocks {
		summary.TotalValue += stock.Value
	}
	if summary.TotalValue > 0 {
		for i := range summary.Stocks {
			summary.Stocks[i].Percentage = summary.Stocks[i].Value / summary.TotalValue * 100
		}
	}
	return summary, nil
}

// Performance values each of the user's portfolios at live prices.
func (s *PortfolioService) Performance(userID uint) (*Performance, error) {
	portfolios, err := s.List(userID)
	if err != nil {
		return nil, err
	}

	perf := &Performance{Portfolios: make([]PortfolioValue, 0, len(portfolios))}
	for _, portfolio := range portfolios {
		holdings, err := s.Holdings(userID, portfolio.ID)
		if err != nil {
			return nil, err
		}
		value := 0.0
		for symbol, quantity := range holdings {
			quote, err := s.quotes.GetQuote(symbol)
			if err != nil {
				return nil, err
			}
			value += quote.CurrentPrice * quantity
		}
		perf.TotalValue += value
		perf.Portfolios = append(perf.Portfolios, PortfolioValue{Name: portfolio.Name, Value: value})
	}
	return perf, nil
}

func ownedPortfolio(db *gorm.DB, userID, portfolioID uint) (*models.Portfolio, error) {
	var portfolio models.Portfolio
	err := db.Where("id = ? AND user_id = ?", portfolioID, userID).First(&portfolio).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: portfolio %d", ErrNotFound, portfolioID)
	}
	if err != nil {
		return nil, err
	}
	return &portfolio, nil
}
