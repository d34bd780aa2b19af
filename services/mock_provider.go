package services

import (
	"context"
	"fmt"
	"strings"

	"optionscope/interfaces"

	"github.com/sirupsen/logrus"
)

// MockChainSource serves a fixed synthetic option chain so the system stays
// usable without valid provider credentials. The same three call and three
// put strikes come back for every ticker and expiration, flagged IsMock.
type MockChainSource struct {
	logger *logrus.Logger
}

// NewMockChainSource creates a new synthetic chain source.
func NewMockChainSource() *MockChainSource {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	return &MockChainSource{logger: logger}
}

const mockUnderlyingPrice = 215.50

type mockContractSpec struct {
	strike   float64
	bid, ask float64
	last     float64
	volume   int64
	oi       int64
	iv       float64
	delta    float64
	gamma    float64
	theta    float64
	vega     float64
}

var mockCallSpecs = []mockContractSpec{
	{strike: 210.0, bid: 7.50, ask: 7.60, last: 7.55, volume: 150, oi: 1200, iv: 0.28, delta: 0.65, gamma: 0.05, theta: -0.12, vega: 0.35},
	{strike: 215.0, bid: 4.20, ask: 4.25, last: 4.22, volume: 350, oi: 2500, iv: 0.27, delta: 0.51, gamma: 0.07, theta: -0.15, vega: 0.40},
	{strike: 220.0, bid: 2.10, ask: 2.15, last: 2.13, volume: 280, oi: 1800, iv: 0.26, delta: 0.35, gamma: 0.06, theta: -0.14, vega: 0.38},
}

var mockPutSpecs = []mockContractSpec{
	{strike: 210.0, bid: 2.80, ask: 2.85, last: 2.83, volume: 180, oi: 1500, iv: 0.28, delta: -0.38, gamma: 0.06, theta: -0.13, vega: 0.36},
	{strike: 215.0, bid: 4.80, ask: 4.90, last: 4.85, volume: 320, oi: 2200, iv: 0.27, delta: -0.49, gamma: 0.07, theta: -0.15, vega: 0.40},
	{strike: 220.0, bid: 7.90, ask: 8.00, last: 7.95, volume: 210, oi: 1900, iv: 0.29, delta: -0.62, gamma: 0.05, theta: -0.11, vega: 0.34},
}

// GetOptionChain returns the fixed synthetic chain, labeled with the
// requested ticker and expiration.
func (m *MockChainSource) GetOptionChain(_ context.Context, ticker, expiration string) (*interfaces.OptionChain, error) {
	m.logger.Info("Returning mock option chain data")

	chain := &interfaces.OptionChain{
		IsMock:          true,
		UnderlyingPrice: mockUnderlyingPrice,
	}
	for _, spec := range mockCallSpecs {
		chain.Calls = append(chain.Calls, mockContract(ticker, expiration, "call", spec))
	}
	for _, spec := range mockPutSpecs {
		chain.Puts = append(chain.Puts, mockContract(ticker, expiration, "put", spec))
	}
	return chain, nil
}

// ListExpirations returns a fixed set of expiration dates.
func (m *MockChainSource) ListExpirations(_ context.Context, _ string) ([]string, error) {
	m.logger.Info("Returning mock option expirations")
	return []string{"2024-08-16", "2024-08-23", "2024-08-30", "2024-09-20"}, nil
}

func mockContract(ticker, expiration, contractType string, spec mockContractSpec) interfaces.OptionContract {
	typeCode := "C"
	if contractType == "put" {
		typeCode = "P"
	}
	// OCC-style symbol: O:<root><yymmdd><C|P><strike*1000, 8 digits>
	dateCode := expiration
	if len(dateCode) > 2 {
		dateCode = strings.ReplaceAll(dateCode[2:], "-", "")
	}
	symbol := fmt.Sprintf("O:%s%s%s%08d", strings.ToUpper(ticker), dateCode, typeCode, int(spec.strike*1000))

	last := spec.last
	volume := spec.volume
	oi := spec.oi
	iv := spec.iv
	delta := spec.delta
	gamma := spec.gamma
	theta := spec.theta
	vega := spec.vega

	return interfaces.OptionContract{
		Symbol:            symbol,
		StrikePrice:       spec.strike,
		ContractType:      contractType,
		Bid:               spec.bid,
		Ask:               spec.ask,
		LastPrice:         &last,
		Volume:            &volume,
		OpenInterest:      &oi,
		ImpliedVolatility: &iv,
		Delta:             &delta,
		Gamma:             &gamma,
		Theta:             &theta,
		Vega:              &vega,
		IsITM:             IsInTheMoney(contractType, spec.strike, mockUnderlyingPrice),
	}
}
