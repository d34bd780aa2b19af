package controllers

import (
	"net/http"

	"optionscope/apperrors"
	"optionscope/services"

	"github.com/gin-gonic/gin"
)

// StrategyController handles strategy search and analysis requests
type StrategyController struct {
	strategyService *services.StrategyService
}

// NewStrategyController creates a new strategy controller
func NewStrategyController(strategyService *services.StrategyService) *StrategyController {
	return &StrategyController{
		strategyService: strategyService,
	}
}

// AnalyzeStrategyRequest is the body of an analysis request
type AnalyzeStrategyRequest struct {
	Legs []services.StrategyLeg `json:"legs"`
}

// HandleAnalyzeStrategy analyzes the payoff and Greeks of a multi-leg strategy
// POST /api/v1/strategies/analyze
func (sc *StrategyController) HandleAnalyzeStrategy(c *gin.Context) {
	var req AnalyzeStrategyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	analysis, err := sc.strategyService.AnalyzeStrategy(c.Request.Context(), req.Legs)
	if err != nil {
		c.JSON(apperrors.StatusCode(err), gin.H{
			"error":   "Failed to analyze strategy",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, analysis)
}

// HandleFindStrategies filters the strategy catalog by market outlook
// POST /api/v1/strategies/find
func (sc *StrategyController) HandleFindStrategies(c *gin.Context) {
	var req services.StrategyFinderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, services.FindStrategies(req))
}
