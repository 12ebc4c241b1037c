package models

// Market data payloads as returned by the Finnhub API. Field tags follow the
// provider's wire names (quote fields are single letters upstream).

type Quote struct {
	CurrentPrice  float64 `json:"c"`
	Change        float64 `json:"d"`
	PercentChange float64 `json:"dp"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Open          float64 `json:"o"`
	PreviousClose float64 `json:"pc"`
}

type SymbolMatch struct {
	Description   string `json:"description"`
	DisplaySymbol string `json:"displaySymbol"`
	Symbol        string `json:"symbol"`
	Type          string `json:"type"`
}

type SearchResult struct {
	Count  int           `json:"count"`
	Result []SymbolMatch `json:"result"`
}

type CompanyProfile struct {
	Country           string  `json:"country"`
	Currency          string  `json:"currency"`
	Exchange          string  `json:"exchange"`
	IPO               string  `json:"ipo"`
	MarketCap         float64 `json:"marketCapitalization"`
	Name              string  `json:"name"`
	Ticker            string  `json:"ticker"`
	WebURL            string  `json:"weburl"`
	Logo              string  `json:"logo"`
	Industry          string  `json:"finnhubIndustry"`
	SharesOutstanding float64 `json:"shareOutstanding"`
	Phone             string  `json:"phone"`
}

type PriceTarget struct {
	Symbol       string  `json:"symbol"`
	TargetHigh   float64 `json:"targetHigh"`
	TargetLow    float64 `json:"targetLow"`
	TargetMean   float64 `json:"targetMean"`
	TargetMedian float64 `json:"targetMedian"`
	LastUpdated  string  `json:"lastUpdated"`
}

type RecommendationTrend struct {
	Symbol     string `json:"symbol"`
	Period     string `json:"period"`
	StrongBuy  int    `json:"strongBuy"`
	Buy        int    `json:"buy"`
	Hold       int    `json:"hold"`
	Sell       int    `json:"sell"`
	StrongSell int    `json:"strongSell"`
}

type NewsItem struct {
	ID       int64  `json:"id"`
	Category string `json:"category"`
	Datetime int64  `json:"datetime"`
	Headline string `json:"headline"`
	Image    string `json:"image"`
	Related  string `json:"related"`
	Source   string `json:"source"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
}
