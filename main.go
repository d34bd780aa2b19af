package main

import (
	"context"
	"os"
	"time"

	"optionscope/controllers"
	"optionscope/database"
	"optionscope/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	if err := godotenv.Load(); err != nil {
		logger.Warn("No .env file found, using system environment variables")
	}

	dbPath := envOrDefault("DB_PATH", "data/optionscope.db")
	storage, err := database.NewStorage(dbPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open storage")
	}

	polygon := services.NewPolygonProvider(os.Getenv("POLYGON_API_KEY"))
	fmp := services.NewFMPProvider(os.Getenv("FMP_API_KEY"))
	bars := services.NewAlpacaBarProvider()

	index := services.NewSnapshotIndex(polygon)
	strategyService := services.NewStrategyService(index)
	volatilityService := services.NewVolatilityService(fmp, bars)

	// Decide live vs synthetic chain data once at startup; the service can
	// re-probe later via its refresh endpoint.
	probeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	isLive := polygon.CheckOptionsAccess(probeCtx)
	cancel()
	if isLive {
		logger.Info("Polygon option snapshot access: VERIFIED")
	} else {
		logger.Warn("Polygon option snapshot access: FAILED. Option chain will use mock data.")
	}

	chainService := services.NewOptionChainService(
		services.NewLiveChainAssembler(polygon, index),
		services.NewMockChainSource(),
		polygon,
		isLive,
	)

	authService := services.NewAuthService(storage, envOrDefault("JWT_SECRET", "dev-secret-change-me"))

	strategyController := controllers.NewStrategyController(strategyService)
	volatilityController := controllers.NewVolatilityController(volatilityService)
	optionsController := controllers.NewOptionsController(chainService)
	marketDataController := controllers.NewMarketDataController(fmp)
	toolsController := controllers.NewToolsController()
	journalController := controllers.NewJournalController(storage)
	authController := controllers.NewAuthController(authService)

	r := gin.Default()
	r.Use(corsMiddleware())

	api := r.Group("/api/v1")
	{
		api.GET("/market-overview", marketDataController.HandleMarketOverview)
		api.GET("/stocks/:ticker/quote", marketDataController.HandleStockQuote)
		api.GET("/stocks/:ticker/volatility", volatilityController.HandleGetVolatility)
		api.GET("/stocks/:ticker/options", optionsController.HandleGetOptionChain)
		api.GET("/stocks/:ticker/options/expirations", optionsController.HandleListExpirations)
		api.POST("/options/refresh-access", optionsController.HandleRefreshAccess)

		api.POST("/strategies/analyze", strategyController.HandleAnalyzeStrategy)
		api.POST("/strategies/find", strategyController.HandleFindStrategies)

		api.POST("/tools/position-size", toolsController.HandlePositionSize)

		api.POST("/auth/register", authController.HandleRegister)
		api.POST("/auth/login", authController.HandleLogin)

		journal := api.Group("/journal", authService.Middleware())
		{
			journal.POST("", journalController.HandleCreateEntry)
			journal.GET("", journalController.HandleListEntries)
			journal.GET("/:id", journalController.HandleGetEntry)
		}
	}

	port := envOrDefault("PORT", "8080")
	logger.WithField("port", port).Info("Starting server")
	if err := r.Run(":" + port); err != nil {
		logger.WithError(err).Fatal("Server stopped")
	}
}

// allowed dev frontend origins
var corsOrigins = map[string]bool{
	"http://localhost:3000": true,
	"http://localhost:5173": true,
	"http://localhost:4200": true,
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if corsOrigins[origin] {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
		}
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
