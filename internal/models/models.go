package models

import "time"

const (
	KindBuy  = "BUY"
	KindSell = "SELL"
)

type Portfolio struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Name   string `gorm:"index;not null" json:"name"`
	UserID uint   `gorm:"index;not null" json:"user_id"`
}

// Transaction is an immutable ledger entry. Quantity is signed: positive for
// BUY, negative for SELL. Rows are never updated; they are removed only when
// the owning portfolio is deleted.
type Transaction struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	PortfolioID uint      `gorm:"index;not null" json:"portfolio_id"`
	Symbol      string    `gorm:"index;not null" json:"symbol"`
	Quantity    float64   `gorm:"not null" json:"quantity"`
	Price       float64   `gorm:"not null" json:"price"`
	Kind        string    `gorm:"not null" json:"type"`
	Timestamp   time.Time `json:"timestamp"`
}

// Position caches the net holding for one symbol in one portfolio. The
// transaction log is authoritative; positions are updated in the same database
// transaction that records a trade and must always equal ComputeHoldings over
// the portfolio's transactions.
type Position struct {
	ID          uint    `gorm:"primarykey" json:"id"`
	PortfolioID uint    `gorm:"index;not null" json:"portfolio_id"`
	Symbol      string  `gorm:"index;not null" json:"symbol"`
	Quantity    float64 `gorm:"not null" json:"quantity"`
}

type WatchlistItem struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	UserID uint   `gorm:"index;not null" json:"user_id"`
	Symbol string `gorm:"index;not null" json:"symbol"`
}

// ComputeHoldings derives net open positions from a transaction log: signed
// quantities are summed per symbol and symbols with net quantity <= 0 are
// dropped. The result does not depend on transaction order.
func ComputeHoldings(transactions []Transaction) map[string]float64 {
	net := make(map[string]float64)
	for _, tx := range transactions {
		net[tx.Symbol] += tx.Quantity
	}
	for symbol, quantity := range net {
		if quantity <= 0 {
			delete(net, symbol)
		}
	}
	return net
}
