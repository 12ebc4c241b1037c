package services

import (
	"errors"
	"testing"

	"portfolio-tracker/internal/models"
)

func TestWatchlist_AddListRemove(t *testing.T) {
	db := testDB(t)
	user := models.User{Username: "alice", Email: "alice@example.com", Password: "hash"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	svc := NewWatchlistService(db, &stubQuotes{prices: map[string]float64{"AAPL": 150, "MSFT": 300}})

	item, err := svc.Add(user.ID, "aapl")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if item.Symbol != "AAPL" {
		t.Errorf("symbol = %s, want normalized AAPL", item.Symbol)
	}

	if _, err := svc.Add(user.ID, "MSFT"); err != nil {
		t.Fatalf("add second: %v", err)
	}

	items, err := svc.List(user.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}

	if err := svc.Remove(user.ID, "AAPL"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	items, _ = svc.List(user.ID)
	if len(items) != 1 || items[0].Symbol != "MSFT" {
		t.Errorf("items after remove = %+v, want only MSFT", items)
	}
}

func TestWatchlist_DuplicateIsConflict(t *testing.T) {
	db := testDB(t)
	user := models.User{Username: "alice", Email: "alice@example.com", Password: "hash"}
	db.Create(&user)
	svc := NewWatchlistService(db, &stubQuotes{prices: map[string]float64{"AAPL": 150}})

	if _, err := svc.Add(user.ID, "AAPL"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.Add(user.ID, "AAPL"); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate add = %v, want ErrConflict", err)
	}
}

func TestWatchlist_InvalidSymbolRejected(t *testing.T) {
	db := testDB(t)
	user := models.User{Username: "alice", Email: "alice@example.com", Password: "hash"}
	db.Create(&user)
	svc := NewWatchlistService(db, &stubQuotes{prices: map[string]float64{}})

	if _, err := svc.Add(user.ID, "NOPE"); !errors.Is(err, ErrInvalidSymbol) {
		t.Errorf("invalid symbol = %v, want ErrInvalidSymbol", err)
	}
}

func TestWatchlist_RemoveMissingIsNotFound(t *testing.T) {
	db := testDB(t)
	user := models.User{Username: "alice", Email: "alice@example.com", Password: "hash"}
	db.Create(&user)
	svc := NewWatchlistService(db, &stubQuotes{prices: map[string]float64{}})

	if err := svc.Remove(user.ID, "AAPL"); !errors.Is(err, ErrNotFound) {
		t.Errorf("remove missing = %v, want ErrNotFound", err)
	}
}
