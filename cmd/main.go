package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"

	"portfolio-tracker/config"
	"portfolio-tracker/internal/handlers"
	"portfolio-tracker/internal/logger"
	"portfolio-tracker/internal/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
}

func main() {
	// .env is optional; environment variables win either way
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.New("info").Fatalf("load config: %v", err)
	}

	log := logger.New(cfg.LogLevel)

	db, err := config.ConnectDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	log.Info("database ready", "path", cfg.DatabasePath)

	// Services
	limiter := services.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)
	marketService := services.NewMarketDataService(cfg.FinnhubAPIKey, limiter, log)
	authService := services.NewAuthService(db)
	portfolioService := services.NewPortfolioService(db, marketService)
	watchlistService := services.NewWatchlistService(db, marketService)
	quoteHub := services.NewQuoteHub(log)

	go quoteHub.Run()
	go quoteHub.Poll(marketService, cfg.StreamSymbols, cfg.StreamInterval)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, cfg.JWTSecret)
	portfolioHandler := handlers.NewPortfolioHandler(portfolioService)
	stockHandler := handlers.NewStockHandler(marketService)
	watchlistHandler := handlers.NewWatchlistHandler(watchlistService)

	router := gin.Default()
	router.Use(handlers.RequestID())
	router.Use(handlers.CORS())

	authMiddleware := authHandler.AuthMiddleware()

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "OK",
			"message": "Portfolio Tracker API is running",
		})
	})

	// Auth
	router.POST("/api/auth/register", authHandler.Register)
	router.POST("/api/auth/login", authHandler.Login)
	router.GET("/api/auth/me", authMiddleware, authHandler.GetCurrentUser)

	// Portfolios and the holdings ledger
	router.POST("/api/portfolios", authMiddleware, portfolioHandler.Create)
	router.GET("/api/portfolios", authMiddleware, portfolioHandler.List)
	router.GET("/api/portfolios/:id", authMiddleware, portfolioHandler.Get)
	router.DELETE("/api/portfolios/:id", authMiddleware, portfolioHandler.Delete)
	router.POST("/api/portfolios/:id/transaction", authMiddleware, portfolioHandler.AddTransaction)
	router.GET("/api/portfolios/:id/transactions", authMiddleware, portfolioHandler.ListTransactions)
	router.GET("/api/portfolios/:id/summary", authMiddleware, portfolioHandler.GetSummary)

	// Analytics
	router.GET("/api/analytics/portfolio-performance", authMiddleware, portfolioHandler.GetPerformance)

	// Market data passthroughs
	router.GET("/api/stocks/quote/:symbol", stockHandler.GetQuote)
	router.GET("/api/stocks/search", stockHandler.Search)
	router.GET("/api/stocks/profile/:symbol", stockHandler.GetCompanyProfile)
	router.GET("/api/stocks/price-target/:symbol", stockHandler.GetPriceTarget)
	router.GET("/api/stocks/recommendations/:symbol", stockHandler.GetRecommendations)
	router.GET("/api/stocks/market-news", stockHandler.GetMarketNews)

	// Watchlist
	router.POST("/api/watchlist", authMiddleware, watchlistHandler.Add)
	router.GET("/api/watchlist", authMiddleware, watchlistHandler.List)
	router.DELETE("/api/watchlist/:symbol", authMiddleware, watchlistHandler.Remove)

	// Live quote stream
	router.GET("/ws", func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Error("websocket upgrade failed", "error", err)
			return
		}

		client := quoteHub.RegisterClient(conn)
		go client.WritePump()
		go client.ReadPump()
	})

	log.Info("server starting", "port", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
