package services

import (
	"context"
	"sort"
	"strings"
	"sync"

	"optionscope/interfaces"

	"github.com/sirupsen/logrus"
)

// LiveChainAssembler builds option chains from provider reference data and
// the batched snapshot index.
type LiveChainAssembler struct {
	chainData interfaces.ChainDataProvider
	index     *SnapshotIndex
	logger    *logrus.Logger
}

// NewLiveChainAssembler creates a new live option chain assembler.
func NewLiveChainAssembler(chainData interfaces.ChainDataProvider, index *SnapshotIndex) *LiveChainAssembler {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	return &LiveChainAssembler{
		chainData: chainData,
		index:     index,
		logger:    logger,
	}
}

// GetOptionChain fetches the underlying price and the listed contracts for
// one expiration, resolves their snapshots best-effort, and assembles a
// classified chain sorted ascending by strike. Contracts missing a quote,
// strike, or type are skipped.
func (a *LiveChainAssembler) GetOptionChain(ctx context.Context, ticker, expiration string) (*interfaces.OptionChain, error) {
	ticker = strings.ToUpper(ticker)

	underlyingPrice, err := a.chainData.GetLastTradePrice(ctx, ticker)
	if err != nil {
		return nil, err
	}

	contracts, err := a.chainData.ListContracts(ctx, ticker, expiration)
	if err != nil {
		return nil, err
	}

	chain := &interfaces.OptionChain{
		UnderlyingPrice: underlyingPrice,
		Calls:           []interfaces.OptionContract{},
		Puts:            []interfaces.OptionContract{},
	}
	if len(contracts) == 0 {
		return chain, nil
	}

	symbols := make([]string, len(contracts))
	for i, c := range contracts {
		symbols[i] = c.Symbol
	}
	snapshots := a.index.ResolveAvailable(ctx, symbols)

	for _, ref := range contracts {
		if ref.StrikePrice == 0 || (ref.ContractType != "call" && ref.ContractType != "put") {
			continue
		}
		snap, ok := snapshots[ref.Symbol]
		if !ok || snap.Quote == nil {
			continue
		}

		contract := interfaces.OptionContract{
			Symbol:            ref.Symbol,
			StrikePrice:       ref.StrikePrice,
			ContractType:      ref.ContractType,
			Bid:               snap.Quote.Bid,
			Ask:               snap.Quote.Ask,
			LastPrice:         snap.LastTradePrice,
			Volume:            snap.DayVolume,
			OpenInterest:      snap.OpenInterest,
			ImpliedVolatility: snap.ImpliedVolatility,
			IsITM:             IsInTheMoney(ref.ContractType, ref.StrikePrice, underlyingPrice),
		}
		if snap.Greeks != nil {
			contract.Delta = &snap.Greeks.Delta
			contract.Gamma = &snap.Greeks.Gamma
			contract.Theta = &snap.Greeks.Theta
			contract.Vega = &snap.Greeks.Vega
		}

		if ref.ContractType == "call" {
			chain.Calls = append(chain.Calls, contract)
		} else {
			chain.Puts = append(chain.Puts, contract)
		}
	}

	sort.Slice(chain.Calls, func(i, j int) bool { return chain.Calls[i].StrikePrice < chain.Calls[j].StrikePrice })
	sort.Slice(chain.Puts, func(i, j int) bool { return chain.Puts[i].StrikePrice < chain.Puts[j].StrikePrice })

	a.logger.WithFields(logrus.Fields{
		"ticker":     ticker,
		"expiration": expiration,
		"calls":      len(chain.Calls),
		"puts":       len(chain.Puts),
	}).Info("Assembled live option chain")

	return chain, nil
}

// ListExpirations collects the distinct expiration dates of every listed
// contract for the underlying, sorted ascending.
func (a *LiveChainAssembler) ListExpirations(ctx context.Context, ticker string) ([]string, error) {
	contracts, err := a.chainData.ListContracts(ctx, strings.ToUpper(ticker), "")
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	expirations := []string{}
	for _, c := range contracts {
		if c.ExpirationDate == "" || seen[c.ExpirationDate] {
			continue
		}
		seen[c.ExpirationDate] = true
		expirations = append(expirations, c.ExpirationDate)
	}
	sort.Strings(expirations)
	return expirations, nil
}

// IsInTheMoney reports whether a contract is in the money: a call with strike
// below the underlying price, or a put with strike above it.
func IsInTheMoney(contractType string, strike, underlyingPrice float64) bool {
	return (contractType == "call" && strike < underlyingPrice) ||
		(contractType == "put" && strike > underlyingPrice)
}

// OptionsAccessChecker probes whether the live option snapshot path is
// usable with the configured credentials.
type OptionsAccessChecker interface {
	CheckOptionsAccess(ctx context.Context) bool
}

// OptionChainService serves option chains from the live assembler when the
// provider is accessible and from the synthetic source otherwise. The choice
// is made at construction and can be re-evaluated with Refresh.
type OptionChainService struct {
	live    interfaces.ChainSource
	mock    interfaces.ChainSource
	checker OptionsAccessChecker
	logger  *logrus.Logger

	mu     sync.RWMutex
	isLive bool
}

// NewOptionChainService creates a new option chain service.
func NewOptionChainService(live, mock interfaces.ChainSource, checker OptionsAccessChecker, isLive bool) *OptionChainService {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	return &OptionChainService{
		live:    live,
		mock:    mock,
		checker: checker,
		logger:  logger,
		isLive:  isLive,
	}
}

// IsLive reports whether chains are currently served from the live path.
func (s *OptionChainService) IsLive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isLive
}

// Refresh re-probes provider access and switches between the live and
// synthetic sources accordingly. Returns the new liveness.
func (s *OptionChainService) Refresh(ctx context.Context) bool {
	isLive := s.checker.CheckOptionsAccess(ctx)
	s.mu.Lock()
	s.isLive = isLive
	s.mu.Unlock()

	s.logger.WithField("live", isLive).Info("Re-checked option data access")
	return isLive
}

// GetOptionChain returns the chain for a ticker and expiration from the
// currently selected source.
func (s *OptionChainService) GetOptionChain(ctx context.Context, ticker, expiration string) (*interfaces.OptionChain, error) {
	return s.source().GetOptionChain(ctx, ticker, expiration)
}

// ListExpirations returns the available expiration dates from the currently
// selected source.
func (s *OptionChainService) ListExpirations(ctx context.Context, ticker string) ([]string, error) {
	return s.source().ListExpirations(ctx, ticker)
}

func (s *OptionChainService) source() interfaces.ChainSource {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.isLive {
		return s.live
	}
	return s.mock
}
