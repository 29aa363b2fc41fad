package yahooApi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"github.com/tickerduel/stockpick_backend/config"
	"github.com/tickerduel/stockpick_backend/internal/externalApi"
	"github.com/tickerduel/stockpick_backend/internal/model/yahooModel"
	"github.com/tickerduel/stockpick_backend/utils"
)

type YahooApi struct {
	client *resty.Client
}

func New(cfg *config.Config) *YahooApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetRetryCount(cfg.API.RetryCount).
		SetBaseURL(cfg.API.YahooApi.Url)
	return &YahooApi{client: client}
}

// GetQuote returns the last traded price for a ticker from the fast quote endpoint.
func (a *YahooApi) GetQuote(ctx context.Context, symbol string) (yahooModel.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	url := "/v7/finance/quote"
	params := map[string]string{
		"symbols": symbol,
		"fields":  "symbol,longName,shortName,regularMarketPrice,regularMarketPreviousClose",
	}

	slog.Debug("start YahooApi.GetQuote request", slog.String("rqID", rqID), slog.String("symbol", symbol))

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParams(params).
		Get(url)

	if err != nil {
		slog.Error("error while dialing YahooApi", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return yahooModel.Quote{}, err
	}

	rawQuoteResponse := yahooModel.RawQuoteResponse{}
	err = json.Unmarshal(resp.Body(), &rawQuoteResponse)
	if err != nil {
		slog.Error("can't unmarshall response into yahooModel.RawQuoteResponse", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return yahooModel.Quote{}, err
	}

	quote, err := a.parseRawQuote(rawQuoteResponse)
	if err != nil {
		slog.Warn("can't parse quote payload", slog.String("err", err.Error()), slog.String("rqID", rqID), slog.String("symbol", symbol))
		return yahooModel.Quote{}, err
	}

	slog.Debug("YahooApi.GetQuote request complete", slog.String("rqID", rqID), slog.String("symbol", symbol))

	return quote, nil
}

// GetDailyClose returns the most recent daily close for a ticker from the chart endpoint.
func (a *YahooApi) GetDailyClose(ctx context.Context, symbol string) (decimal.Decimal, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	url := fmt.Sprintf("/v8/finance/chart/%s", symbol)
	params := map[string]string{
		"range":    "1d",
		"interval": "1d",
	}

	slog.Debug("start YahooApi.GetDailyClose request", slog.String("rqID", rqID), slog.String("symbol", symbol))

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParams(params).
		Get(url)

	if err != nil {
		slog.Error("error while dialing YahooApi", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return decimal.Decimal{}, err
	}

	rawChartResponse := yahooModel.RawChartResponse{}
	err = json.Unmarshal(resp.Body(), &rawChartResponse)
	if err != nil {
		slog.Error("can't unmarshall response into yahooModel.RawChartResponse", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return decimal.Decimal{}, err
	}

	closePrice, err := a.parseRawChart(rawChartResponse)
	if err != nil {
		slog.Warn("can't parse chart payload", slog.String("err", err.Error()), slog.String("rqID", rqID), slog.String("symbol", symbol))
		return decimal.Decimal{}, err
	}

	slog.Debug("YahooApi.GetDailyClose request complete", slog.String("rqID", rqID), slog.String("symbol", symbol))

	return closePrice, nil
}

func (a *YahooApi) parseRawQuote(raw yahooModel.RawQuoteResponse) (yahooModel.Quote, error) {
	if len(raw.QuoteResponse.Result) == 0 {
		return yahooModel.Quote{}, externalApi.ErrNotFound
	}

	rawQuote := raw.QuoteResponse.Result[0]
	if rawQuote.RegularMarketPrice == nil {
		return yahooModel.Quote{}, externalApi.ErrNotFound
	}

	name := rawQuote.LongName
	if name == "" {
		name = rawQuote.ShortName
	}

	quote := yahooModel.Quote{
		Symbol: rawQuote.Symbol,
		Name:   name,
		Price:  decimal.NewFromFloat(*rawQuote.RegularMarketPrice),
	}
	if rawQuote.RegularMarketPreviousClose != nil {
		quote.PreviousClose = decimal.NewFromFloat(*rawQuote.RegularMarketPreviousClose)
	}

	return quote, nil
}

func (a *YahooApi) parseRawChart(raw yahooModel.RawChartResponse) (decimal.Decimal, error) {
	if len(raw.Chart.Result) == 0 || len(raw.Chart.Result[0].Indicators.Quote) == 0 {
		return decimal.Decimal{}, externalApi.ErrNotFound
	}

	closes := raw.Chart.Result[0].Indicators.Quote[0].Close
	for i := len(closes) - 1; i >= 0; i-- {
		if closes[i] != nil {
			return decimal.NewFromFloat(*closes[i]), nil
		}
	}

	return decimal.Decimal{}, externalApi.ErrNotFound
}
