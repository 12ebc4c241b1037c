package services

import "errors"

// Failure kinds surfaced to handlers. There is no retry logic anywhere: a
// failed upstream call fails the whole request.
var (
	ErrNotFound             = errors.New("not found")
	ErrInvalidSymbol        = errors.New("invalid stock symbol")
	ErrInsufficientHoldings = errors.New("insufficient holdings")
	ErrRateLimited          = errors.New("rate limit exceeded")
	ErrUpstream             = errors.New("market data provider unavailable")
	ErrUnauthorized         = errors.New("invalid username or password")
	ErrConflict             = errors.New("already exists")
)
