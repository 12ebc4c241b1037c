package services

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"portfolio-tracker/internal/logger"
	"portfolio-tracker/internal/models"
)

const finnhubBaseURL = "https://finnhub.io/api/v1"

// QuoteProvider is the capability the ledger and watchlist need from the
// market gateway. Tests substitute a stub so trades can be applied without
// live network calls.
type QuoteProvider interface {
	GetQuote(symbol string) (*models.Quote, error)
}

// MarketDataService is the single point of contact to the market data
// provider. Every call passes the shared rate limiter before the request goes
// out; responses are never cached.
type MarketDataService struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *RateLimiter
	log        *logger.Logger
}

func NewMarketDataService(apiKey string, limiter *RateLimiter, log *logger.Logger) *MarketDataService {
	return &MarketDataService{
		apiKey:     apiKey,
		baseURL:    finnhubBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    limiter,
		log:        log,
	}
}

func (s *MarketDataService) GetQuote(symbol string) (*models.Quote, error) {
	var quote models.Quote
	err := s.get("/quote", url.Values{"symbol": {strings.ToUpper(symbol)}}, &quote)
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

func (s *MarketDataService) SearchSymbols(query string) (*models.SearchResult, error) {
	var result models.SearchResult
	if err := s.get("/search", url.Values{"q": {query}}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *MarketDataService) GetCompanyProfile(symbol string) (*models.CompanyProfile, error) {
	var profile models.CompanyProfile
	err := s.get("/stock/profile2", url.Values{"symbol": {strings.ToUpper(symbol)}}, &profile)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *MarketDataService) GetPriceTarget(symbol string) (*models.PriceTarget, error) {
	var target models.PriceTarget
	err := s.get("/stock/price-target", url.Values{"symbol": {strings.ToUpper(symbol)}}, &target)
	if err != nil {
		return nil, err
	}
	return &target, nil
}

func (s *MarketDataService) GetRecommendationTrends(symbol string) ([]models.RecommendationTrend, error) {
	var trends []models.RecommendationTrend
	err := s.get("/stock/recommendation", url.Values{"symbol": {strings.ToUpper(symbol)}}, &trends)
	if err != nil {
		return nil, err
	}
	return trends, nil
}

func (s *MarketDataService) GetMarketNews(category string) ([]models.NewsItem, error) {
	if category == "" {
		category = "general"
	}
	var news []models.NewsItem
	if err := s.get("/news", url.Values{"category": {category}}, &news); err != nil {
		return nil, err
	}
	return news, nil
}

// get performs one rate-limited round trip against the provider and decodes
// the response into out. The provider signals an unknown symbol with an
// "error" field inside an HTTP 200 payload, so the body is checked for it
// before decoding.
func (s *MarketDataService) get(path string, params url.Values, out any) error {
	if err := s.limiter.Allow(); err != nil {
		return err
	}

	params.Set("token", s.apiKey)
	reqURL := s.baseURL + path + "?" + params.Encode()

	resp, err := s.httpClient.Get(reqURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrUpstream, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.log.Warn("market data request failed", "path", path, "status", resp.StatusCode)
		return fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var domainErr struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &domainErr); err == nil && domainErr.Error != "" {
		return fmt.Errorf("%w: %s", ErrInvalidSymbol, domainErr.Error)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrUpstream, err)
	}
	return nil
}
