package controllers

import (
	"net/http"

	"optionscope/apperrors"
	"optionscope/interfaces"

	"github.com/gin-gonic/gin"
)

// MarketDataController handles index overview and stock quote requests
type MarketDataController struct {
	quotes interfaces.QuoteProvider
}

// NewMarketDataController creates a new market data controller
func NewMarketDataController(quotes interfaces.QuoteProvider) *MarketDataController {
	return &MarketDataController{
		quotes: quotes,
	}
}

// HandleMarketOverview returns quotes for the tracked index ETFs
// GET /api/v1/market-overview
func (mc *MarketDataController) HandleMarketOverview(c *gin.Context) {
	overview, err := mc.quotes.GetMarketOverview(c.Request.Context())
	if err != nil {
		c.JSON(apperrors.StatusCode(err), gin.H{
			"error":   "Failed to fetch market overview",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, overview)
}

// HandleStockQuote returns the quote for a single stock
// GET /api/v1/stocks/:ticker/quote
func (mc *MarketDataController) HandleStockQuote(c *gin.Context) {
	ticker := c.Param("ticker")
	if ticker == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "ticker required",
		})
		return
	}

	quote, err := mc.quotes.GetStockQuote(c.Request.Context(), ticker)
	if err != nil {
		c.JSON(apperrors.StatusCode(err), gin.H{
			"error":   "Failed to fetch stock quote",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, quote)
}
