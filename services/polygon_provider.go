package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"optionscope/apperrors"
	"optionscope/interfaces"

	"github.com/sirupsen/logrus"
)

// probe instrument for the startup options access check: a liquid SPY call
const (
	accessProbeStock  = "SPY"
	accessProbeOption = "O:SPY250815C00550000"
)

// PolygonProvider fetches market snapshots and option reference data from
// Polygon.io.
type PolygonProvider struct {
	apiKey  string
	baseURL string
	logger  *logrus.Logger
	client  *http.Client
}

// NewPolygonProvider creates a new Polygon.io data provider.
func NewPolygonProvider(apiKey string) *PolygonProvider {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	return &PolygonProvider{
		apiKey:  apiKey,
		baseURL: "https://api.polygon.io",
		logger:  logger,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type polygonGreeks struct {
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Theta float64 `json:"theta"`
	Vega  float64 `json:"vega"`
}

type polygonSnapshot struct {
	Ticker  string `json:"ticker"`
	Error   string `json:"error"`
	Details *struct {
		StrikePrice  float64 `json:"strike_price"`
		ContractType string  `json:"contract_type"`
	} `json:"details"`
	Greeks            *polygonGreeks `json:"greeks"`
	ImpliedVolatility *float64       `json:"implied_volatility"`
	OpenInterest      *int64         `json:"open_interest"`
	LastQuote         *struct {
		Bid float64 `json:"bid"`
		Ask float64 `json:"ask"`
	} `json:"last_quote"`
	LastTrade *struct {
		Price float64 `json:"price"`
	} `json:"last_trade"`
	Session *struct {
		Close  *float64 `json:"close"`
		Volume *int64   `json:"volume"`
	} `json:"session"`
}

type polygonSnapshotResponse struct {
	Results []polygonSnapshot `json:"results"`
}

// GetSnapshots looks up point-in-time snapshots for a list of identifiers in
// one batched request. Identifiers the provider could not resolve, or that
// came back with an error marker, are absent from the result.
func (p *PolygonProvider) GetSnapshots(ctx context.Context, tickers []string) (map[string]*interfaces.Snapshot, error) {
	endpoint := fmt.Sprintf("%s/v3/snapshot?ticker.any_of=%s",
		p.baseURL, url.QueryEscape(strings.Join(tickers, ",")))

	var resp polygonSnapshotResponse
	if err := p.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, err
	}

	snapshots := make(map[string]*interfaces.Snapshot, len(resp.Results))
	for _, raw := range resp.Results {
		if raw.Error != "" {
			continue
		}
		snap := &interfaces.Snapshot{
			Ticker:            raw.Ticker,
			ImpliedVolatility: raw.ImpliedVolatility,
			OpenInterest:      raw.OpenInterest,
		}
		if raw.LastQuote != nil {
			snap.Quote = &interfaces.Quote{Bid: raw.LastQuote.Bid, Ask: raw.LastQuote.Ask}
		}
		if raw.LastTrade != nil {
			price := raw.LastTrade.Price
			snap.LastTradePrice = &price
		}
		if raw.Session != nil {
			snap.SessionClose = raw.Session.Close
			snap.DayVolume = raw.Session.Volume
		}
		if raw.Greeks != nil {
			snap.Greeks = &interfaces.Greeks{
				Delta: raw.Greeks.Delta,
				Gamma: raw.Greeks.Gamma,
				Theta: raw.Greeks.Theta,
				Vega:  raw.Greeks.Vega,
			}
		}
		if raw.Details != nil {
			snap.StrikePrice = raw.Details.StrikePrice
			snap.ContractType = raw.Details.ContractType
		}
		snapshots[raw.Ticker] = snap
	}

	p.logger.WithFields(logrus.Fields{
		"requested": len(tickers),
		"resolved":  len(snapshots),
	}).Debug("Fetched snapshot batch")

	return snapshots, nil
}

// GetLastTradePrice fetches the last trade price for a stock.
func (p *PolygonProvider) GetLastTradePrice(ctx context.Context, ticker string) (float64, error) {
	endpoint := fmt.Sprintf("%s/v2/last/trade/%s", p.baseURL, url.PathEscape(strings.ToUpper(ticker)))

	var resp struct {
		Results *struct {
			Price float64 `json:"p"`
		} `json:"results"`
	}
	if err := p.getJSON(ctx, endpoint, &resp); err != nil {
		return 0, err
	}
	if resp.Results == nil {
		return 0, apperrors.NewDataUnavailableError(ticker, "last trade price")
	}
	return resp.Results.Price, nil
}

type polygonContractsResponse struct {
	Results []struct {
		Ticker         string  `json:"ticker"`
		StrikePrice    float64 `json:"strike_price"`
		ContractType   string  `json:"contract_type"`
		ExpirationDate string  `json:"expiration_date"`
	} `json:"results"`
	NextURL string `json:"next_url"`
}

// ListContracts fetches reference data for the listed option contracts of an
// underlying, optionally filtered to one expiration date, following the
// provider's pagination cursor.
func (p *PolygonProvider) ListContracts(ctx context.Context, underlying, expiration string) ([]interfaces.ContractRef, error) {
	endpoint := fmt.Sprintf("%s/v3/reference/options/contracts?underlying_ticker=%s&limit=1000",
		p.baseURL, url.QueryEscape(strings.ToUpper(underlying)))
	if expiration != "" {
		endpoint += "&expiration_date=" + url.QueryEscape(expiration)
	}

	var contracts []interfaces.ContractRef
	for endpoint != "" {
		var resp polygonContractsResponse
		if err := p.getJSON(ctx, endpoint, &resp); err != nil {
			return nil, err
		}
		for _, c := range resp.Results {
			contracts = append(contracts, interfaces.ContractRef{
				Symbol:         c.Ticker,
				StrikePrice:    c.StrikePrice,
				ContractType:   c.ContractType,
				ExpirationDate: c.ExpirationDate,
			})
		}
		endpoint = resp.NextURL
	}

	p.logger.WithFields(logrus.Fields{
		"underlying": underlying,
		"count":      len(contracts),
	}).Debug("Fetched option contracts")

	return contracts, nil
}

// CheckOptionsAccess probes whether the configured key can read option
// snapshots. Used once at startup and on explicit refresh to choose between
// the live and synthetic chain sources.
func (p *PolygonProvider) CheckOptionsAccess(ctx context.Context) bool {
	endpoint := fmt.Sprintf("%s/v3/snapshot?ticker.any_of=%s",
		p.baseURL, url.QueryEscape(accessProbeStock+","+accessProbeOption))

	var resp polygonSnapshotResponse
	if err := p.getJSON(ctx, endpoint, &resp); err != nil {
		p.logger.WithError(err).Warn("Polygon options access check failed")
		return false
	}
	for _, raw := range resp.Results {
		if raw.Ticker == accessProbeOption && raw.Error == "" {
			return true
		}
	}
	return false
}

func (p *PolygonProvider) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return apperrors.NewProviderError("Polygon", 0, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return apperrors.NewProviderError("Polygon", resp.StatusCode, string(body), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.NewProviderError("Polygon", 0, "failed to decode response", err)
	}
	return nil
}
