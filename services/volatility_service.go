package services

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"optionscope/interfaces"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
)

const (
	// rolling window for historical volatility, in trading days
	hvDefaultWindow = 30

	// annualization assumes 252 trading days per year
	tradingDaysPerYear = 252
)

// VolatilityPoint is one day of the IV/HV chart. Either series may have no
// reading for a given date.
type VolatilityPoint struct {
	Date string   `json:"date"` // YYYY-MM-DD
	IV   *float64 `json:"iv,omitempty"`
	HV   *float64 `json:"hv,omitempty"`
}

// IVIndicators are the summary statistics of a 52-week IV series.
type IVIndicators struct {
	CurrentIV    float64 `json:"current_iv"`
	IVRank       float64 `json:"iv_rank"`
	IVPercentile float64 `json:"iv_percentile"`
	High52Week   float64 `json:"iv_52_week_high"`
	Low52Week    float64 `json:"iv_52_week_low"`
}

// VolatilityAnalysis is the full implied/realized volatility picture for one
// underlying. Indicator fields are nil when no IV history was available.
type VolatilityAnalysis struct {
	Ticker       string            `json:"ticker"`
	CurrentIV    *float64          `json:"current_iv"`
	IVRank       *float64          `json:"iv_rank"`
	IVPercentile *float64          `json:"iv_percentile"`
	IV52WeekHigh *float64          `json:"iv_52_week_high"`
	IV52WeekLow  *float64          `json:"iv_52_week_low"`
	ChartData    []VolatilityPoint `json:"chart_data"`
}

// VolatilityService computes historical and implied volatility analytics from
// externally supplied historical series.
type VolatilityService struct {
	ivProvider  interfaces.IVHistoryProvider
	barProvider interfaces.BarProvider
	logger      *logrus.Logger
}

// NewVolatilityService creates a new volatility analytics service.
func NewVolatilityService(ivProvider interfaces.IVHistoryProvider, barProvider interfaces.BarProvider) *VolatilityService {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	return &VolatilityService{
		ivProvider:  ivProvider,
		barProvider: barProvider,
		logger:      logger,
	}
}

// GetVolatilityAnalysis fetches one year of IV history and daily bars
// concurrently, computes rolling HV and the IV rank/percentile indicators,
// and joins both series by date. A failure of either fetch aborts the
// analysis.
func (s *VolatilityService) GetVolatilityAnalysis(ctx context.Context, ticker string) (*VolatilityAnalysis, error) {
	ticker = strings.ToUpper(ticker)
	to := time.Now()
	from := to.AddDate(-1, 0, 0)

	var (
		wg      sync.WaitGroup
		ivObs   []interfaces.IVObservation
		ivErr   error
		bars    []interfaces.DailyBar
		barsErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		ivObs, ivErr = s.ivProvider.GetIVHistory(ctx, ticker, from, to)
	}()
	go func() {
		defer wg.Done()
		bars, barsErr = s.barProvider.GetDailyBars(ctx, ticker, from, to)
	}()
	wg.Wait()

	if ivErr != nil {
		return nil, ivErr
	}
	if barsErr != nil {
		return nil, barsErr
	}

	// ISO dates sort lexicographically, so ordering by the date string puts
	// the series oldest first regardless of provider ordering.
	sort.Slice(ivObs, func(i, j int) bool { return ivObs[i].Date < ivObs[j].Date })

	ivByDate := make(map[string]float64, len(ivObs))
	ivSeries := make([]*float64, 0, len(ivObs))
	for i := range ivObs {
		ivByDate[ivObs[i].Date] = ivObs[i].IV
		ivSeries = append(ivSeries, &ivObs[i].IV)
	}

	closes := make([]float64, len(bars))
	for i, bar := range bars {
		closes[i] = bar.Close
	}
	hvSeries := CalculateHV(closes, hvDefaultWindow)

	chart := make([]VolatilityPoint, len(bars))
	for i, bar := range bars {
		date := bar.Date.Format("2006-01-02")
		point := VolatilityPoint{Date: date}
		if iv, ok := ivByDate[date]; ok {
			point.IV = &iv
		}
		if len(hvSeries) > i {
			point.HV = hvSeries[i]
		}
		chart[i] = point
	}

	analysis := &VolatilityAnalysis{Ticker: ticker, ChartData: chart}
	if indicators := CalculateIVIndicators(ivSeries); indicators != nil {
		analysis.CurrentIV = &indicators.CurrentIV
		analysis.IVRank = &indicators.IVRank
		analysis.IVPercentile = &indicators.IVPercentile
		analysis.IV52WeekHigh = &indicators.High52Week
		analysis.IV52WeekLow = &indicators.Low52Week
	}

	s.logger.WithFields(logrus.Fields{
		"ticker": ticker,
		"bars":   len(bars),
		"iv":     len(ivObs),
	}).Info("Computed volatility analysis")

	return analysis, nil
}

// CalculateHV computes the rolling annualized historical volatility of a
// daily close series. The result is aligned to the input length: position i
// holds the unbiased standard deviation of the log returns spanned by prices
// [i-window+1, i], annualized by sqrt(252); the first window-1 positions are
// nil. Fewer prices than the window yields an empty result.
//
// A window of `window` prices holds window-1 log returns, so each value is a
// stddev over window-1 returns. This keeps exactly `window` prices producing
// exactly one reading.
func CalculateHV(prices []float64, window int) []*float64 {
	if window < 2 || len(prices) < window {
		return nil
	}

	logReturns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		logReturns[i-1] = math.Log(prices[i] / prices[i-1])
	}

	annualize := math.Sqrt(tradingDaysPerYear)
	hv := make([]*float64, len(prices))
	for i := window - 1; i < len(prices); i++ {
		// returns index i-1 corresponds to the move into price index i
		sample := logReturns[i-window+1 : i]
		value := stat.StdDev(sample, nil) * annualize
		hv[i] = &value
	}
	return hv
}

// CalculateIVIndicators computes current IV, 52-week high/low, IV rank, and
// IV percentile from a daily IV series ordered oldest first. Nil entries are
// filtered out; an empty filtered series yields nil.
func CalculateIVIndicators(series []*float64) *IVIndicators {
	clean := make([]float64, 0, len(series))
	for _, v := range series {
		if v != nil {
			clean = append(clean, *v)
		}
	}
	if len(clean) == 0 {
		return nil
	}

	current := clean[len(clean)-1]
	high := clean[0]
	low := clean[0]
	below := 0
	for _, v := range clean {
		high = math.Max(high, v)
		low = math.Min(low, v)
		if v < current {
			below++
		}
	}

	rank := 0.0
	if high-low > 0 {
		rank = (current - low) / (high - low) * 100
	}
	percentile := float64(below) / float64(len(clean)) * 100

	return &IVIndicators{
		CurrentIV:    current,
		IVRank:       round2(rank),
		IVPercentile: round2(percentile),
		High52Week:   high,
		Low52Week:    low,
	}
}
