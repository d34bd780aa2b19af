package controllers

import (
	"net/http"

	"optionscope/apperrors"
	"optionscope/services"

	"github.com/gin-gonic/gin"
)

// VolatilityController handles volatility analysis requests
type VolatilityController struct {
	volatilityService *services.VolatilityService
}

// NewVolatilityController creates a new volatility controller
func NewVolatilityController(volatilityService *services.VolatilityService) *VolatilityController {
	return &VolatilityController{
		volatilityService: volatilityService,
	}
}

// HandleGetVolatility returns the IV/HV analysis for one underlying
// GET /api/v1/stocks/:ticker/volatility
func (vc *VolatilityController) HandleGetVolatility(c *gin.Context) {
	ticker := c.Param("ticker")
	if ticker == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "ticker required",
		})
		return
	}

	analysis, err := vc.volatilityService.GetVolatilityAnalysis(c.Request.Context(), ticker)
	if err != nil {
		c.JSON(apperrors.StatusCode(err), gin.H{
			"error":   "Failed to fetch volatility analysis",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, analysis)
}
