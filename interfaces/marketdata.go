package interfaces

import (
	"context"
	"time"
)

// Greeks holds the option price sensitivities supplied by the data provider.
type Greeks struct {
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Theta float64 `json:"theta"`
	Vega  float64 `json:"vega"`
}

// Quote is a bid/ask pair for one instrument.
type Quote struct {
	Bid float64 `json:"bid"`
	Ask float64 `json:"ask"`
}

// Snapshot is a point-in-time market snapshot for one instrument. Option
// snapshots carry strike/type/Greeks; stock snapshots carry session close and
// last trade. Optional fields are nil when the provider omitted them.
type Snapshot struct {
	Ticker            string
	Quote             *Quote
	LastTradePrice    *float64
	SessionClose      *float64
	Greeks            *Greeks
	ImpliedVolatility *float64
	StrikePrice       float64
	ContractType      string // "call" or "put", empty for stocks
	DayVolume         *int64
	OpenInterest      *int64
}

// ContractRef is reference data for one listed option contract.
type ContractRef struct {
	Symbol         string
	StrikePrice    float64
	ContractType   string
	ExpirationDate string
}

// OptionContract represents one contract row in an assembled option chain.
type OptionContract struct {
	Symbol            string   `json:"symbol"`
	StrikePrice       float64  `json:"strike_price"`
	ContractType      string   `json:"contract_type"`
	Bid               float64  `json:"bid"`
	Ask               float64  `json:"ask"`
	LastPrice         *float64 `json:"last_price,omitempty"`
	Volume            *int64   `json:"volume,omitempty"`
	OpenInterest      *int64   `json:"open_interest,omitempty"`
	ImpliedVolatility *float64 `json:"implied_volatility,omitempty"`
	Delta             *float64 `json:"delta,omitempty"`
	Gamma             *float64 `json:"gamma,omitempty"`
	Theta             *float64 `json:"theta,omitempty"`
	Vega              *float64 `json:"vega,omitempty"`
	IsITM             bool     `json:"is_itm"`
}

// OptionChain is a classified, strike-sorted option chain.
type OptionChain struct {
	IsMock          bool             `json:"is_mock"`
	UnderlyingPrice float64          `json:"underlying_price"`
	Calls           []OptionContract `json:"calls"`
	Puts            []OptionContract `json:"puts"`
}

// DailyBar is one daily close for the underlying.
type DailyBar struct {
	Date  time.Time
	Close float64
}

// IVObservation is one daily implied volatility reading.
type IVObservation struct {
	Date string // YYYY-MM-DD
	IV   float64
}

// MarketIndex is a quote for one of the tracked index ETFs.
type MarketIndex struct {
	Name          string  `json:"name"`
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
}

// StockQuote is a full quote for a single stock.
type StockQuote struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	DayLow        float64 `json:"day_low"`
	DayHigh       float64 `json:"day_high"`
	YearLow       float64 `json:"year_low"`
	YearHigh      float64 `json:"year_high"`
	Volume        int64   `json:"volume"`
}

// SnapshotProvider exposes batched snapshot lookup by identifier list. The
// returned map may be partial: unresolved identifiers and entries carrying a
// provider error marker are simply absent.
type SnapshotProvider interface {
	GetSnapshots(ctx context.Context, tickers []string) (map[string]*Snapshot, error)
}

// ChainDataProvider exposes the lookups the live chain assembler needs.
type ChainDataProvider interface {
	GetLastTradePrice(ctx context.Context, ticker string) (float64, error)
	ListContracts(ctx context.Context, underlying, expiration string) ([]ContractRef, error)
}

// ChainSource produces assembled option chains. Two implementations exist:
// the live assembler and the synthetic offline source.
type ChainSource interface {
	GetOptionChain(ctx context.Context, ticker, expiration string) (*OptionChain, error)
	ListExpirations(ctx context.Context, ticker string) ([]string, error)
}

// IVHistoryProvider exposes a historical daily implied volatility series.
type IVHistoryProvider interface {
	GetIVHistory(ctx context.Context, ticker string, from, to time.Time) ([]IVObservation, error)
}

// BarProvider exposes historical daily price bars.
type BarProvider interface {
	GetDailyBars(ctx context.Context, ticker string, from, to time.Time) ([]DailyBar, error)
}

// QuoteProvider exposes index overview and single-stock quotes.
type QuoteProvider interface {
	GetMarketOverview(ctx context.Context) ([]MarketIndex, error)
	GetStockQuote(ctx context.Context, ticker string) (*StockQuote, error)
}
