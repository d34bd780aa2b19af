package services

// Market direction and volatility outlook categories used to tag strategies.
const (
	DirectionStrongBullish = "strong_bullish"
	DirectionMildBullish   = "mild_bullish"
	DirectionNeutral       = "neutral"
	DirectionMildBearish   = "mild_bearish"
	DirectionStrongBearish = "strong_bearish"

	VolatilityRising  = "iv_rising"
	VolatilityFlat    = "iv_flat"
	VolatilityFalling = "iv_falling"
)

// RecommendedStrategy describes one option strategy from the catalog.
type RecommendedStrategy struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	RiskProfile string   `json:"risk_profile"`
	Categories  []string `json:"categories"`
}

// StrategyFinderRequest carries the user's market outlook.
type StrategyFinderRequest struct {
	Direction  string `json:"direction" binding:"required"`
	Volatility string `json:"volatility" binding:"required"`
}

var strategyCatalog = []RecommendedStrategy{
	{
		Name:        "Long Call",
		Description: "The basic bullish play: pay a premium betting the underlying rallies hard before expiration.",
		RiskProfile: "Limited risk (the premium paid), unlimited profit.",
		Categories:  []string{DirectionStrongBullish, DirectionMildBullish, VolatilityRising},
	},
	{
		Name:        "Short Put",
		Description: "Mildly bullish or neutral: collect a premium betting the underlying does not fall hard before expiration.",
		RiskProfile: "Limited profit (the premium collected), substantial risk if the stock goes to zero.",
		Categories:  []string{DirectionMildBullish, DirectionNeutral, VolatilityFalling},
	},
	{
		Name:        "Long Put",
		Description: "The basic bearish play: pay a premium betting the underlying drops hard before expiration.",
		RiskProfile: "Limited risk (the premium paid), substantial profit potential.",
		Categories:  []string{DirectionStrongBearish, DirectionMildBearish, VolatilityRising},
	},
	{
		Name:        "Short Call",
		Description: "Mildly bearish or neutral: collect a premium betting the underlying does not rally hard before expiration.",
		RiskProfile: "Limited profit (the premium collected), unlimited risk.",
		Categories:  []string{DirectionMildBearish, DirectionNeutral, VolatilityFalling},
	},
	{
		Name:        "Iron Condor",
		Description: "A neutral strategy selling a pair of credit spreads, betting the underlying stays in a range.",
		RiskProfile: "Both risk and profit are limited.",
		Categories:  []string{DirectionNeutral, VolatilityFalling},
	},
	{
		Name:        "Short Strangle",
		Description: "A neutral, advanced strategy selling an out-of-the-money call and put, betting the underlying stays inside a wide range.",
		RiskProfile: "Limited profit, unlimited risk.",
		Categories:  []string{DirectionNeutral, VolatilityFalling},
	},
	{
		Name:        "Long Straddle",
		Description: "Buy a call and a put at the same strike, betting on a violent move in either direction.",
		RiskProfile: "Limited risk, unlimited profit.",
		Categories:  []string{DirectionStrongBullish, DirectionStrongBearish, VolatilityRising},
	},
}

// FindStrategies filters the catalog to strategies tagged with both the
// requested market direction and volatility outlook.
func FindStrategies(req StrategyFinderRequest) []RecommendedStrategy {
	matches := []RecommendedStrategy{}
	for _, strategy := range strategyCatalog {
		if containsCategory(strategy.Categories, req.Direction) &&
			containsCategory(strategy.Categories, req.Volatility) {
			matches = append(matches, strategy)
		}
	}
	return matches
}

func containsCategory(categories []string, want string) bool {
	for _, c := range categories {
		if c == want {
			return true
		}
	}
	return false
}
