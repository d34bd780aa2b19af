package services

import (
	"context"
	"strings"
	"time"

	"optionscope/apperrors"
	"optionscope/interfaces"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/sirupsen/logrus"
)

// AlpacaBarProvider serves historical daily bars from the Alpaca market data
// API. Credentials come from the APCA_API_KEY_ID / APCA_API_SECRET_KEY
// environment variables the SDK reads on its own.
type AlpacaBarProvider struct {
	client *marketdata.Client
	logger *logrus.Logger
}

// NewAlpacaBarProvider creates a new Alpaca daily-bar provider.
func NewAlpacaBarProvider() *AlpacaBarProvider {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	return &AlpacaBarProvider{
		client: marketdata.NewClient(marketdata.ClientOpts{}),
		logger: logger,
	}
}

// GetDailyBars fetches daily close bars for a ticker over a date range,
// oldest first.
//
// The SDK's GetBars does not take a context, so cancellation does not abort
// an in-flight fetch.
func (p *AlpacaBarProvider) GetDailyBars(_ context.Context, ticker string, from, to time.Time) ([]interfaces.DailyBar, error) {
	bars, err := p.client.GetBars(strings.ToUpper(ticker), marketdata.GetBarsRequest{
		TimeFrame: marketdata.OneDay,
		Start:     from,
		End:       to,
	})
	if err != nil {
		return nil, apperrors.NewProviderError("Alpaca", 0, "failed to fetch daily bars", err)
	}

	result := make([]interfaces.DailyBar, 0, len(bars))
	for _, b := range bars {
		result = append(result, interfaces.DailyBar{
			Date:  b.Timestamp,
			Close: b.Close,
		})
	}

	p.logger.WithFields(logrus.Fields{
		"ticker": ticker,
		"count":  len(result),
	}).Debug("Fetched daily bars")

	return result, nil
}
