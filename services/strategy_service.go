package services

import (
	"context"
	"math"
	"strings"

	"optionscope/apperrors"
	"optionscope/interfaces"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

const (
	// one option contract controls 100 underlying shares
	sharesPerContract = 100

	// payoff curve sampling window: 200 points across 75%-125% of spot
	payoffSamples  = 200
	payoffBandLow  = 0.75
	payoffBandHigh = 1.25
)

// StrategyLeg is one user-specified option position within a strategy.
type StrategyLeg struct {
	OptionTicker string `json:"option_ticker" binding:"required"`
	Action       string `json:"action" binding:"required"` // "BUY" or "SELL"
	Quantity     int    `json:"quantity" binding:"required,gt=0"`
}

// ProcessedLeg is the normalized per-leg economics derived from a StrategyLeg
// and its market snapshot.
type ProcessedLeg struct {
	Strike       float64
	ContractType string  // "call" or "put"
	CostPerShare float64 // mid price, signed: positive for BUY, negative for SELL
	Quantity     int
	Sign         int
	Greeks       interfaces.Greeks
}

// PayoffPoint is one sample of the hold-to-expiration profit/loss curve.
type PayoffPoint struct {
	PriceAtExpiration float64 `json:"price_at_expiration"`
	ProfitLoss        float64 `json:"profit_loss"`
}

// AnalyzedStrategy is the full risk/payoff analysis of a multi-leg strategy.
// Max profit and loss are the curve extrema within the sampled band, not true
// infinities for open-ended strategies.
type AnalyzedStrategy struct {
	MaxProfit       float64      `json:"max_profit"`
	MaxLoss         float64      `json:"max_loss"`
	BreakevenPoints []float64    `json:"breakeven_points"`
	NetCost         float64      `json:"net_cost"`
	PositionDelta   float64      `json:"position_delta"`
	PositionGamma   float64      `json:"position_gamma"`
	PositionTheta   float64      `json:"position_theta"`
	PositionVega    float64      `json:"position_vega"`
	PLChartData     []PayoffPoint `json:"pl_chart_data"`
}

// StrategyService analyzes multi-leg option strategies against point-in-time
// market snapshots.
type StrategyService struct {
	index  *SnapshotIndex
	logger *logrus.Logger
}

// NewStrategyService creates a new strategy analysis service.
func NewStrategyService(index *SnapshotIndex) *StrategyService {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	return &StrategyService{
		index:  index,
		logger: logger,
	}
}

// AnalyzeStrategy resolves every leg's snapshot in one batched call and
// computes net cost, position Greeks, the expiration payoff curve, and its
// breakeven points.
func (s *StrategyService) AnalyzeStrategy(ctx context.Context, legs []StrategyLeg) (*AnalyzedStrategy, error) {
	if len(legs) == 0 {
		return nil, apperrors.NewValidationError("legs", "strategy must contain at least one leg")
	}

	underlying, err := UnderlyingFromOptionTicker(legs[0].OptionTicker)
	if err != nil {
		return nil, err
	}

	tickers := make([]string, 0, len(legs)+1)
	for _, leg := range legs {
		if leg.Quantity <= 0 {
			return nil, apperrors.NewValidationError("quantity", "leg quantity must be positive")
		}
		action := strings.ToUpper(leg.Action)
		if action != "BUY" && action != "SELL" {
			return nil, apperrors.NewValidationError("action", "leg action must be BUY or SELL")
		}
		legUnderlying, err := UnderlyingFromOptionTicker(leg.OptionTicker)
		if err != nil {
			return nil, err
		}
		if legUnderlying != underlying {
			return nil, apperrors.NewValidationError("legs", "all legs must share one underlying")
		}
		tickers = append(tickers, leg.OptionTicker)
	}
	tickers = append(tickers, underlying)

	snapshots, err := s.index.ResolveAll(ctx, tickers)
	if err != nil {
		return nil, err
	}

	stockSnap, ok := snapshots[underlying]
	if !ok {
		return nil, apperrors.NewDataUnavailableError(underlying, "underlying snapshot")
	}
	underlyingPrice, err := underlyingPriceFromSnapshot(stockSnap)
	if err != nil {
		return nil, err
	}

	netCost := 0.0
	processed := make([]ProcessedLeg, 0, len(legs))
	for _, leg := range legs {
		snap, ok := snapshots[leg.OptionTicker]
		if !ok {
			return nil, apperrors.NewDataUnavailableError(leg.OptionTicker, "snapshot")
		}
		if snap.Quote == nil {
			return nil, apperrors.NewDataUnavailableError(leg.OptionTicker, "quote")
		}
		if snap.Greeks == nil {
			return nil, apperrors.NewDataUnavailableError(leg.OptionTicker, "greeks")
		}

		sign := 1
		if strings.ToUpper(leg.Action) == "SELL" {
			sign = -1
		}
		midPrice := (snap.Quote.Bid + snap.Quote.Ask) / 2
		netCost += float64(sign) * midPrice * float64(leg.Quantity) * sharesPerContract

		processed = append(processed, ProcessedLeg{
			Strike:       snap.StrikePrice,
			ContractType: snap.ContractType,
			CostPerShare: midPrice * float64(sign),
			Quantity:     leg.Quantity,
			Sign:         sign,
			Greeks:       *snap.Greeks,
		})
	}

	greeks := AggregatePositionGreeks(processed)
	curve := BuildPayoffCurve(underlyingPrice, processed)

	maxProfit := curve[0].ProfitLoss
	maxLoss := curve[0].ProfitLoss
	for _, point := range curve[1:] {
		maxProfit = math.Max(maxProfit, point.ProfitLoss)
		maxLoss = math.Min(maxLoss, point.ProfitLoss)
	}

	s.logger.WithFields(logrus.Fields{
		"underlying": underlying,
		"legs":       len(legs),
	}).Info("Analyzed strategy")

	return &AnalyzedStrategy{
		MaxProfit:       maxProfit,
		MaxLoss:         maxLoss,
		BreakevenPoints: LocateBreakevens(curve),
		NetCost:         netCost,
		PositionDelta:   greeks.Delta,
		PositionGamma:   greeks.Gamma,
		PositionTheta:   greeks.Theta,
		PositionVega:    greeks.Vega,
		PLChartData:     curve,
	}, nil
}

// UnderlyingFromOptionTicker recovers the root symbol from an option ticker
// like "O:AAPL251219C00200000": strip the "O:" prefix, keep at most six
// characters, drop trailing date digits.
func UnderlyingFromOptionTicker(ticker string) (string, error) {
	_, rest, found := strings.Cut(ticker, ":")
	if !found || rest == "" {
		return "", apperrors.NewValidationError("option_ticker",
			"option ticker must look like O:<symbol><expiry><type><strike>")
	}
	root := rest
	if len(root) > 6 {
		root = root[:6]
	}
	root = strings.TrimRight(root, "0123456789")
	if root == "" {
		return "", apperrors.NewValidationError("option_ticker",
			"could not derive an underlying symbol from option ticker")
	}
	return root, nil
}

func underlyingPriceFromSnapshot(snap *interfaces.Snapshot) (float64, error) {
	if snap.SessionClose != nil {
		return *snap.SessionClose, nil
	}
	if snap.LastTradePrice != nil {
		return *snap.LastTradePrice, nil
	}
	return 0, apperrors.NewDataUnavailableError(snap.Ticker, "underlying price")
}

// AggregatePositionGreeks sums signed, quantity-weighted per-leg Greeks into
// position-level Greeks. BUY legs contribute positively, SELL legs
// negatively, matching the sign convention of net cost.
func AggregatePositionGreeks(legs []ProcessedLeg) interfaces.Greeks {
	var total interfaces.Greeks
	for _, leg := range legs {
		weight := float64(leg.Sign) * float64(leg.Quantity)
		total.Delta += weight * leg.Greeks.Delta
		total.Gamma += weight * leg.Greeks.Gamma
		total.Theta += weight * leg.Greeks.Theta
		total.Vega += weight * leg.Greeks.Vega
	}
	return total
}

// BuildPayoffCurve samples hold-to-expiration profit/loss at 200 evenly
// spaced prices spanning 75%-125% of the underlying price.
func BuildPayoffCurve(underlyingPrice float64, legs []ProcessedLeg) []PayoffPoint {
	prices := make([]float64, payoffSamples)
	floats.Span(prices, underlyingPrice*payoffBandLow, underlyingPrice*payoffBandHigh)

	curve := make([]PayoffPoint, payoffSamples)
	for i, price := range prices {
		total := 0.0
		for _, leg := range legs {
			var intrinsic float64
			if leg.ContractType == "call" {
				intrinsic = math.Max(0, price-leg.Strike)
			} else {
				intrinsic = math.Max(0, leg.Strike-price)
			}
			// a sold leg loses what the holder gains at expiration
			perShare := float64(leg.Sign)*intrinsic - leg.CostPerShare
			total += perShare * float64(leg.Quantity) * sharesPerContract
		}
		curve[i] = PayoffPoint{PriceAtExpiration: price, ProfitLoss: total}
	}
	return curve
}

// LocateBreakevens scans consecutive curve samples for strict sign changes
// and linearly interpolates each zero crossing, rounded to cents. Samples
// that merely touch zero register no breakeven.
func LocateBreakevens(curve []PayoffPoint) []float64 {
	breakevens := []float64{}
	for i := 1; i < len(curve); i++ {
		p1, p2 := curve[i-1], curve[i]
		if p1.ProfitLoss*p2.ProfitLoss < 0 {
			crossing := p1.PriceAtExpiration - p1.ProfitLoss*
				(p2.PriceAtExpiration-p1.PriceAtExpiration)/(p2.ProfitLoss-p1.ProfitLoss)
			breakevens = append(breakevens, round2(crossing))
		}
	}
	return breakevens
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
