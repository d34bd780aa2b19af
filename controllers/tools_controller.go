package controllers

import (
	"net/http"

	"optionscope/apperrors"
	"optionscope/services"

	"github.com/gin-gonic/gin"
)

// ToolsController handles the simple calculator endpoints
type ToolsController struct{}

// NewToolsController creates a new tools controller
func NewToolsController() *ToolsController {
	return &ToolsController{}
}

// HandlePositionSize suggests a contract count from capital and risk budget
// POST /api/v1/tools/position-size
func (tc *ToolsController) HandlePositionSize(c *gin.Context) {
	var req services.PositionSizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	result, err := services.CalculatePositionSize(req)
	if err != nil {
		c.JSON(apperrors.StatusCode(err), gin.H{
			"error":   "Failed to calculate position size",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}
