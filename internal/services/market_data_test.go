package services

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"portfolio-tracker/internal/logger"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc, limit int) *MarketDataService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc := NewMarketDataService("test-key", NewRateLimiter(limit, time.Second), logger.New("error"))
	svc.baseURL = server.URL
	return svc
}

func TestGetQuote_ParsesPayload(t *testing.T) {
	svc := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/quote" {
			t.Errorf("path = %s, want /quote", r.URL.Path)
		}
		if r.URL.Query().Get("symbol") != "AAPL" {
			t.Errorf("symbol = %s, want AAPL", r.URL.Query().Get("symbol"))
		}
		if r.URL.Query().Get("token") != "test-key" {
			t.Errorf("token = %s, want test-key", r.URL.Query().Get("token"))
		}
		w.Write([]byte(`{"c":150.25,"d":1.5,"dp":1.01,"h":151,"l":148,"o":149,"pc":148.75}`))
	}, 30)

	quote, err := svc.GetQuote("aapl")
	if err != nil {
		t.Fatalf("GetQuote: %v", err)
	}
	if quote.CurrentPrice != 150.25 {
		t.Errorf("CurrentPrice = %g, want 150.25", quote.CurrentPrice)
	}
	if quote.PreviousClose != 148.75 {
		t.Errorf("PreviousClose = %g, want 148.75", quote.PreviousClose)
	}
}

func TestGetQuote_ErrorFieldIn200IsInvalidSymbol(t *testing.T) {
	svc := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"Symbol not supported"}`))
	}, 30)

	_, err := svc.GetQuote("NOPE")
	if !errors.Is(err, ErrInvalidSymbol) {
		t.Fatalf("err = %v, want ErrInvalidSymbol", err)
	}
}

func TestGetQuote_Non2xxIsUpstreamError(t *testing.T) {
	svc := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}, 30)

	_, err := svc.GetQuote("AAPL")
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("err = %v, want ErrUpstream", err)
	}
}

func TestGetQuote_MalformedBodyIsUpstreamError(t *testing.T) {
	svc := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}, 30)

	_, err := svc.GetQuote("AAPL")
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("err = %v, want ErrUpstream", err)
	}
}

func TestGateway_RateLimitRejectsBeforeRequest(t *testing.T) {
	requests := 0
	svc := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte(`{"c":1}`))
	}, 1)

	if _, err := svc.GetQuote("AAPL"); err != nil {
		t.Fatalf("first call: %v", err)
	}
	_, err := svc.GetQuote("AAPL")
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("second call = %v, want ErrRateLimited", err)
	}
	if requests != 1 {
		t.Errorf("upstream requests = %d, want 1 (rejected call must not go out)", requests)
	}
}

func TestSearchSymbols(t *testing.T) {
	svc := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("path = %s, want /search", r.URL.Path)
		}
		w.Write([]byte(`{"count":1,"result":[{"description":"APPLE INC","displaySymbol":"AAPL","symbol":"AAPL","type":"Common Stock"}]}`))
	}, 30)

	result, err := svc.SearchSymbols("apple")
	if err != nil {
		t.Fatalf("SearchSymbols: %v", err)
	}
	if result.Count != 1 || len(result.Result) != 1 {
		t.Fatalf("result = %+v, want one match", result)
	}
	if result.Result[0].Symbol != "AAPL" {
		t.Errorf("symbol = %s, want AAPL", result.Result[0].Symbol)
	}
}

func TestGetMarketNews_DefaultsCategory(t *testing.T) {
	svc := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("category"); got != "general" {
			t.Errorf("category = %s, want general", got)
		}
		w.Write([]byte(`[{"id":1,"headline":"markets up","source":"wire"}]`))
	}, 30)

	news, err := svc.GetMarketNews("")
	if err != nil {
		t.Fatalf("GetMarketNews: %v", err)
	}
	if len(news) != 1 || news[0].Headline != "markets up" {
		t.Fatalf("news = %+v, want one item", news)
	}
}

func TestGetRecommendationTrends(t *testing.T) {
	svc := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/stock/recommendation" {
			t.Errorf("path = %s, want /stock/recommendation", r.URL.Path)
		}
		w.Write([]byte(`[{"symbol":"AAPL","period":"2024-01-01","strongBuy":10,"buy":20,"hold":5,"sell":1,"strongSell":0}]`))
	}, 30)

	trends, err := svc.GetRecommendationTrends("AAPL")
	if err != nil {
		t.Fatalf("GetRecommendationTrends: %v", err)
	}
	if len(trends) != 1 || trends[0].StrongBuy != 10 {
		t.Fatalf("trends = %+v", trends)
	}
}
