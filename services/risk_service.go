package services

import (
	"fmt"
	"math"

	"optionscope/apperrors"
)

// PositionSizeRequest carries the inputs of the position size calculator.
type PositionSizeRequest struct {
	TotalCapital       float64 `json:"total_capital" binding:"required,gt=0"`
	RiskPercentage     float64 `json:"risk_percentage" binding:"required,gt=0,lte=100"`
	MaxLossPerContract float64 `json:"max_loss_per_contract" binding:"required,gt=0"`
}

// PositionSizeResponse is the suggested sizing for one trade.
type PositionSizeResponse struct {
	MaxRiskAmount      float64 `json:"max_risk_amount"`
	SuggestedContracts int     `json:"suggested_contracts"`
	Message            string  `json:"message"`
}

// CalculatePositionSize derives the number of contracts whose combined worst
// case stays inside the per-trade risk budget, rounding down for safety.
func CalculatePositionSize(req PositionSizeRequest) (*PositionSizeResponse, error) {
	if req.TotalCapital <= 0 {
		return nil, apperrors.NewValidationError("total_capital", "must be positive")
	}
	if req.RiskPercentage <= 0 || req.RiskPercentage > 100 {
		return nil, apperrors.NewValidationError("risk_percentage", "must be in (0, 100]")
	}
	if req.MaxLossPerContract <= 0 {
		return nil, apperrors.NewValidationError("max_loss_per_contract", "must be positive")
	}

	maxRisk := req.TotalCapital * req.RiskPercentage / 100
	contracts := int(math.Floor(maxRisk / req.MaxLossPerContract))
	if contracts < 0 {
		contracts = 0
	}

	message := fmt.Sprintf(
		"With total capital of $%.2f and %.2f%% risk per trade, the most you should lose is $%.2f.",
		req.TotalCapital, req.RiskPercentage, maxRisk)
	if contracts > 0 {
		message += fmt.Sprintf(" Suggested size: %d contract(s).", contracts)
	} else {
		message += " The potential loss per contract is too large; no position is suggested."
	}

	return &PositionSizeResponse{
		MaxRiskAmount:      round2(maxRisk),
		SuggestedContracts: contracts,
		Message:            message,
	}, nil
}
