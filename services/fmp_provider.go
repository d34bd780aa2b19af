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

// index ETFs used as proxies for the major US indices
const overviewSymbols = "SPY,QQQ,DIA"

// FMPProvider fetches quotes and historical implied volatility from
// Financial Modeling Prep.
type FMPProvider struct {
	apiKey  string
	baseURL string
	logger  *logrus.Logger
	client  *http.Client
}

// NewFMPProvider creates a new Financial Modeling Prep data provider.
func NewFMPProvider(apiKey string) *FMPProvider {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	return &FMPProvider{
		apiKey:  apiKey,
		baseURL: "https://financialmodelingprep.com/api/v3",
		logger:  logger,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// GetIVHistory fetches the daily implied volatility series for a ticker over
// a date range.
func (p *FMPProvider) GetIVHistory(ctx context.Context, ticker string, from, to time.Time) ([]interfaces.IVObservation, error) {
	endpoint := fmt.Sprintf("%s/historical-daily-implied-volatility/%s?from=%s&to=%s&apikey=%s",
		p.baseURL,
		url.PathEscape(strings.ToUpper(ticker)),
		from.Format("2006-01-02"),
		to.Format("2006-01-02"),
		p.apiKey,
	)

	body, err := p.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	// FMP answers errors as a JSON object instead of a list; treat that as an
	// empty series.
	var raw []struct {
		Date              string  `json:"date"`
		ImpliedVolatility float64 `json:"impliedVolatility"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		p.logger.WithField("ticker", ticker).Warn("FMP IV history response was not a list, treating as empty")
		return nil, nil
	}

	observations := make([]interfaces.IVObservation, 0, len(raw))
	for _, item := range raw {
		observations = append(observations, interfaces.IVObservation{
			Date: item.Date,
			IV:   item.ImpliedVolatility,
		})
	}
	return observations, nil
}

type fmpQuote struct {
	Symbol            string  `json:"symbol"`
	Name              string  `json:"name"`
	Price             float64 `json:"price"`
	Change            float64 `json:"change"`
	ChangesPercentage float64 `json:"changesPercentage"`
	DayLow            float64 `json:"dayLow"`
	DayHigh           float64 `json:"dayHigh"`
	YearLow           float64 `json:"yearLow"`
	YearHigh          float64 `json:"yearHigh"`
	Volume            int64   `json:"volume"`
}

// GetMarketOverview fetches quotes for the tracked index ETFs.
func (p *FMPProvider) GetMarketOverview(ctx context.Context) ([]interfaces.MarketIndex, error) {
	endpoint := fmt.Sprintf("%s/quote/%s?apikey=%s", p.baseURL, overviewSymbols, p.apiKey)

	body, err := p.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var raw []fmpQuote
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, apperrors.NewProviderError("FMP", 0, "failed to decode quote response", err)
	}

	overview := make([]interfaces.MarketIndex, 0, len(raw))
	for _, q := range raw {
		overview = append(overview, interfaces.MarketIndex{
			Name:          q.Name,
			Symbol:        q.Symbol,
			Price:         q.Price,
			Change:        q.Change,
			ChangePercent: q.ChangesPercentage,
		})
	}
	return overview, nil
}

// GetStockQuote fetches the quote for a single stock. Returns ErrNotFound for
// unknown tickers.
func (p *FMPProvider) GetStockQuote(ctx context.Context, ticker string) (*interfaces.StockQuote, error) {
	endpoint := fmt.Sprintf("%s/quote/%s?apikey=%s",
		p.baseURL, url.PathEscape(strings.ToUpper(ticker)), p.apiKey)

	body, err := p.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	// FMP answers single-ticker lookups as a list, possibly empty.
	var raw []fmpQuote
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, apperrors.NewProviderError("FMP", 0, "failed to decode quote response", err)
	}
	if len(raw) == 0 {
		return nil, apperrors.ErrNotFound
	}

	q := raw[0]
	return &interfaces.StockQuote{
		Symbol:        q.Symbol,
		Name:          q.Name,
		Price:         q.Price,
		Change:        q.Change,
		ChangePercent: q.ChangesPercentage,
		DayLow:        q.DayLow,
		DayHigh:       q.DayHigh,
		YearLow:       q.YearLow,
		YearHigh:      q.YearHigh,
		Volume:        q.Volume,
	}, nil
}

func (p *FMPProvider) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, apperrors.NewProviderError("FMP", 0, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewProviderError("FMP", 0, "failed to read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewProviderError("FMP", resp.StatusCode, string(body), nil)
	}
	return body, nil
}
