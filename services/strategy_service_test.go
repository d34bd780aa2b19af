package services

import (
	"context"
	"errors"
	"math"
	"testing"

	"optionscope/apperrors"
	"optionscope/interfaces"
)

// StubSnapshotProvider serves snapshots from a fixed map
type StubSnapshotProvider struct {
	snapshots map[string]*interfaces.Snapshot
	err       error
}

func (s *StubSnapshotProvider) GetSnapshots(_ context.Context, tickers []string) (map[string]*interfaces.Snapshot, error) {
	if s.err != nil {
		return nil, s.err
	}
	result := make(map[string]*interfaces.Snapshot)
	for _, t := range tickers {
		if snap, ok := s.snapshots[t]; ok {
			result[t] = snap
		}
	}
	return result, nil
}

func floatPtr(v float64) *float64 { return &v }

func stockSnapshot(ticker string, price float64) *interfaces.Snapshot {
	return &interfaces.Snapshot{
		Ticker:       ticker,
		SessionClose: floatPtr(price),
	}
}

func optionSnapshot(ticker string, strike float64, contractType string, bid, ask float64) *interfaces.Snapshot {
	return &interfaces.Snapshot{
		Ticker:       ticker,
		Quote:        &interfaces.Quote{Bid: bid, Ask: ask},
		Greeks:       &interfaces.Greeks{Delta: 0.5, Gamma: 0.05, Theta: -0.1, Vega: 0.3},
		StrikePrice:  strike,
		ContractType: contractType,
	}
}

func almostEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

func newTestStrategyService(snapshots map[string]*interfaces.Snapshot) *StrategyService {
	return NewStrategyService(NewSnapshotIndex(&StubSnapshotProvider{snapshots: snapshots}))
}

func TestAnalyzeStrategyLongCall(t *testing.T) {
	const callTicker = "O:AAPL251219C00100000"
	svc := newTestStrategyService(map[string]*interfaces.Snapshot{
		"AAPL":     stockSnapshot("AAPL", 100.0),
		callTicker: optionSnapshot(callTicker, 100.0, "call", 10.0, 10.2),
	})

	analysis, err := svc.AnalyzeStrategy(context.Background(), []StrategyLeg{
		{OptionTicker: callTicker, Action: "BUY", Quantity: 1},
	})
	if err != nil {
		t.Fatalf("AnalyzeStrategy failed: %v", err)
	}

	// net cost = mid 10.1 x 1 contract x 100 shares
	if !almostEqual(analysis.NetCost, 1010.0, 1e-9) {
		t.Errorf("net cost = %v, want 1010.0", analysis.NetCost)
	}

	if len(analysis.PLChartData) != payoffSamples {
		t.Fatalf("curve has %d points, want %d", len(analysis.PLChartData), payoffSamples)
	}

	// at the lowest sampled price (75) the call expires worthless: P/L is the
	// premium paid
	first := analysis.PLChartData[0]
	if !almostEqual(first.PriceAtExpiration, 75.0, 1e-9) {
		t.Errorf("first sample price = %v, want 75.0", first.PriceAtExpiration)
	}
	if !almostEqual(first.ProfitLoss, -1010.0, 1e-6) {
		t.Errorf("P/L at lowest price = %v, want -1010.0", first.ProfitLoss)
	}
	if !almostEqual(analysis.MaxLoss, -1010.0, 1e-6) {
		t.Errorf("max loss = %v, want -1010.0", analysis.MaxLoss)
	}

	// above the strike the curve rises linearly: each sample step of
	// 50/199 adds step*100 P/L
	last := analysis.PLChartData[payoffSamples-1]
	secondToLast := analysis.PLChartData[payoffSamples-2]
	step := last.PriceAtExpiration - secondToLast.PriceAtExpiration
	if !almostEqual(last.ProfitLoss-secondToLast.ProfitLoss, step*100, 1e-6) {
		t.Errorf("curve slope above strike = %v per share, want %v",
			last.ProfitLoss-secondToLast.ProfitLoss, step*100)
	}

	// breakeven near strike + premium, within one sampling step
	if len(analysis.BreakevenPoints) != 1 {
		t.Fatalf("breakevens = %v, want exactly one", analysis.BreakevenPoints)
	}
	if !almostEqual(analysis.BreakevenPoints[0], 110.1, step) {
		t.Errorf("breakeven = %v, want about 110.1", analysis.BreakevenPoints[0])
	}
}

func TestAnalyzeStrategyShortPut(t *testing.T) {
	const putTicker = "O:AAPL251219P00100000"
	svc := newTestStrategyService(map[string]*interfaces.Snapshot{
		"AAPL":    stockSnapshot("AAPL", 100.0),
		putTicker: optionSnapshot(putTicker, 100.0, "put", 4.9, 5.1),
	})

	analysis, err := svc.AnalyzeStrategy(context.Background(), []StrategyLeg{
		{OptionTicker: putTicker, Action: "SELL", Quantity: 1},
	})
	if err != nil {
		t.Fatalf("AnalyzeStrategy failed: %v", err)
	}

	// max profit is the collected premium, reached at and above the strike
	if !almostEqual(analysis.MaxProfit, 500.0, 1e-6) {
		t.Errorf("max profit = %v, want 500.0", analysis.MaxProfit)
	}
	for _, point := range analysis.PLChartData {
		if point.PriceAtExpiration >= 100.0 && !almostEqual(point.ProfitLoss, 500.0, 1e-6) {
			t.Errorf("P/L at %v = %v, want 500.0", point.PriceAtExpiration, point.ProfitLoss)
		}
	}
	if !almostEqual(analysis.NetCost, -500.0, 1e-9) {
		t.Errorf("net cost = %v, want -500.0", analysis.NetCost)
	}

	// below the strike the seller loses intrinsic value net of premium: at
	// the band floor of 75 that is (5 - 25) x 100
	if !almostEqual(analysis.PLChartData[0].ProfitLoss, -2000.0, 1e-6) {
		t.Errorf("P/L at band floor = %v, want -2000.0", analysis.PLChartData[0].ProfitLoss)
	}
	if !almostEqual(analysis.MaxLoss, -2000.0, 1e-6) {
		t.Errorf("max loss = %v, want -2000.0", analysis.MaxLoss)
	}

	// breakeven at strike minus premium
	if len(analysis.BreakevenPoints) != 1 {
		t.Fatalf("breakevens = %v, want exactly one", analysis.BreakevenPoints)
	}
	if !almostEqual(analysis.BreakevenPoints[0], 95.0, 1e-9) {
		t.Errorf("breakeven = %v, want 95.0", analysis.BreakevenPoints[0])
	}
}

func TestAnalyzeStrategyEmptyLegs(t *testing.T) {
	svc := newTestStrategyService(nil)

	_, err := svc.AnalyzeStrategy(context.Background(), nil)
	var ve *apperrors.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestAnalyzeStrategyMixedUnderlyings(t *testing.T) {
	svc := newTestStrategyService(nil)

	_, err := svc.AnalyzeStrategy(context.Background(), []StrategyLeg{
		{OptionTicker: "O:AAPL251219C00100000", Action: "BUY", Quantity: 1},
		{OptionTicker: "O:TSLA251219C00100000", Action: "SELL", Quantity: 1},
	})
	var ve *apperrors.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationError for mixed underlyings", err)
	}
}

func TestAnalyzeStrategyMissingGreeks(t *testing.T) {
	const callTicker = "O:AAPL251219C00100000"
	snap := optionSnapshot(callTicker, 100.0, "call", 10.0, 10.2)
	snap.Greeks = nil
	svc := newTestStrategyService(map[string]*interfaces.Snapshot{
		"AAPL":     stockSnapshot("AAPL", 100.0),
		callTicker: snap,
	})

	_, err := svc.AnalyzeStrategy(context.Background(), []StrategyLeg{
		{OptionTicker: callTicker, Action: "BUY", Quantity: 1},
	})
	var de *apperrors.DataUnavailableError
	if !errors.As(err, &de) {
		t.Fatalf("err = %v, want DataUnavailableError", err)
	}
	if de.Subject != callTicker {
		t.Errorf("error names %q, want the failing leg %q", de.Subject, callTicker)
	}
}

func TestAnalyzeStrategyMissingUnderlyingPrice(t *testing.T) {
	const callTicker = "O:AAPL251219C00100000"
	svc := newTestStrategyService(map[string]*interfaces.Snapshot{
		"AAPL":     {Ticker: "AAPL"}, // no session close, no last trade
		callTicker: optionSnapshot(callTicker, 100.0, "call", 10.0, 10.2),
	})

	_, err := svc.AnalyzeStrategy(context.Background(), []StrategyLeg{
		{OptionTicker: callTicker, Action: "BUY", Quantity: 1},
	})
	var de *apperrors.DataUnavailableError
	if !errors.As(err, &de) {
		t.Fatalf("err = %v, want DataUnavailableError for the underlying price", err)
	}
}

func TestAggregatePositionGreeksOffsettingLegs(t *testing.T) {
	greeks := interfaces.Greeks{Delta: 0.51, Gamma: 0.07, Theta: -0.15, Vega: 0.4}
	legs := []ProcessedLeg{
		{Sign: 1, Quantity: 3, Greeks: greeks},
		{Sign: -1, Quantity: 3, Greeks: greeks},
	}

	total := AggregatePositionGreeks(legs)
	for name, value := range map[string]float64{
		"delta": total.Delta,
		"gamma": total.Gamma,
		"theta": total.Theta,
		"vega":  total.Vega,
	} {
		if !almostEqual(value, 0, 1e-12) {
			t.Errorf("position %s = %v, want about 0", name, value)
		}
	}
}

func TestAggregatePositionGreeksOrderInsensitive(t *testing.T) {
	legs := []ProcessedLeg{
		{Sign: 1, Quantity: 2, Greeks: interfaces.Greeks{Delta: 0.65, Gamma: 0.05, Theta: -0.12, Vega: 0.35}},
		{Sign: -1, Quantity: 1, Greeks: interfaces.Greeks{Delta: 0.35, Gamma: 0.06, Theta: -0.14, Vega: 0.38}},
		{Sign: 1, Quantity: 5, Greeks: interfaces.Greeks{Delta: -0.49, Gamma: 0.07, Theta: -0.15, Vega: 0.40}},
	}
	reversed := []ProcessedLeg{legs[2], legs[1], legs[0]}

	a := AggregatePositionGreeks(legs)
	b := AggregatePositionGreeks(reversed)
	if !almostEqual(a.Delta, b.Delta, 1e-12) || !almostEqual(a.Vega, b.Vega, 1e-12) {
		t.Errorf("aggregation depends on leg order: %+v vs %+v", a, b)
	}
}

func TestLocateBreakevens(t *testing.T) {
	exactZero := []PayoffPoint{
		{PriceAtExpiration: 90, ProfitLoss: -100},
		{PriceAtExpiration: 95, ProfitLoss: -50},
		{PriceAtExpiration: 100, ProfitLoss: 0},
		{PriceAtExpiration: 105, ProfitLoss: 60},
	}
	if got := LocateBreakevens(exactZero); len(got) != 0 {
		t.Errorf("exact-zero sample registered breakevens %v, want none", got)
	}

	crossing := []PayoffPoint{
		{PriceAtExpiration: 90, ProfitLoss: -100},
		{PriceAtExpiration: 95, ProfitLoss: -50},
		{PriceAtExpiration: 100, ProfitLoss: -1},
		{PriceAtExpiration: 105, ProfitLoss: 60},
	}
	got := LocateBreakevens(crossing)
	if len(got) != 1 {
		t.Fatalf("breakevens = %v, want exactly one", got)
	}
	// interpolated between 100 and 105: 100 + 1*(5/61)
	if !almostEqual(got[0], 100.08, 1e-9) {
		t.Errorf("breakeven = %v, want 100.08", got[0])
	}
}

func TestUnderlyingFromOptionTicker(t *testing.T) {
	cases := []struct {
		ticker string
		want   string
		wantOK bool
	}{
		{"O:AAPL251219C00200000", "AAPL", true},
		{"O:SPY250815C00550000", "SPY", true},
		{"O:GOOGL251219P00150000", "GOOGL", true},
		{"AAPL", "", false},
		{"O:", "", false},
		{"O:123456", "", false},
	}
	for _, tc := range cases {
		got, err := UnderlyingFromOptionTicker(tc.ticker)
		if tc.wantOK && (err != nil || got != tc.want) {
			t.Errorf("UnderlyingFromOptionTicker(%q) = %q, %v; want %q", tc.ticker, got, err, tc.want)
		}
		if !tc.wantOK && err == nil {
			t.Errorf("UnderlyingFromOptionTicker(%q) = %q, want error", tc.ticker, got)
		}
	}
}
