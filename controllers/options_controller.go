package controllers

import (
	"net/http"

	"optionscope/apperrors"
	"optionscope/services"

	"github.com/gin-gonic/gin"
)

// OptionsController handles option chain and expiration requests
type OptionsController struct {
	chainService *services.OptionChainService
}

// NewOptionsController creates a new options controller
func NewOptionsController(chainService *services.OptionChainService) *OptionsController {
	return &OptionsController{
		chainService: chainService,
	}
}

// HandleGetOptionChain returns the classified option chain for one expiration
// GET /api/v1/stocks/:ticker/options?expiration_date=YYYY-MM-DD
func (oc *OptionsController) HandleGetOptionChain(c *gin.Context) {
	ticker := c.Param("ticker")
	expiration := c.Query("expiration_date")
	if ticker == "" || expiration == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "ticker and expiration_date required",
		})
		return
	}

	chain, err := oc.chainService.GetOptionChain(c.Request.Context(), ticker, expiration)
	if err != nil {
		c.JSON(apperrors.StatusCode(err), gin.H{
			"error":   "Failed to fetch option chain",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, chain)
}

// HandleListExpirations returns the available expiration dates
// GET /api/v1/stocks/:ticker/options/expirations
func (oc *OptionsController) HandleListExpirations(c *gin.Context) {
	ticker := c.Param("ticker")
	if ticker == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "ticker required",
		})
		return
	}

	expirations, err := oc.chainService.ListExpirations(c.Request.Context(), ticker)
	if err != nil {
		c.JSON(apperrors.StatusCode(err), gin.H{
			"error":   "Failed to fetch expirations",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, expirations)
}

// HandleRefreshAccess re-probes option data access and reports the mode
// POST /api/v1/options/refresh-access
func (oc *OptionsController) HandleRefreshAccess(c *gin.Context) {
	isLive := oc.chainService.Refresh(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"live": isLive,
	})
}
