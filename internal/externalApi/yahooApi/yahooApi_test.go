package yahooApi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/tickerduel/stockpick_backend/config"
	"github.com/tickerduel/stockpick_backend/internal/externalApi"
)

func newTestApi(t *testing.T, handler http.HandlerFunc) *YahooApi {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{}
	cfg.API.YahooApi.Url = server.URL

	return New(cfg)
}

func TestGetQuote(t *testing.T) {
	api := newTestApi(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v7/finance/quote", r.URL.Path)
		require.Equal(t, "AAPL", r.URL.Query().Get("symbols"))
		w.Write([]byte(`{"quoteResponse":{"result":[{"symbol":"AAPL","longName":"Apple Inc.","shortName":"Apple","regularMarketPrice":231.59,"regularMarketPreviousClose":229.87}],"error":null}}`))
	})

	quote, err := api.GetQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Equal(t, "AAPL", quote.Symbol)
	require.Equal(t, "Apple Inc.", quote.Name)
	require.True(t, quote.Price.Equal(decimal.NewFromFloat(231.59)))
	require.True(t, quote.PreviousClose.Equal(decimal.NewFromFloat(229.87)))
}

func TestGetQuote_EmptyResult(t *testing.T) {
	api := newTestApi(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"quoteResponse":{"result":[],"error":null}}`))
	})

	_, err := api.GetQuote(context.Background(), "NOPE")
	require.ErrorIs(t, err, externalApi.ErrNotFound)
}

func TestGetQuote_NilPrice(t *testing.T) {
	api := newTestApi(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"quoteResponse":{"result":[{"symbol":"AAPL"}],"error":null}}`))
	})

	_, err := api.GetQuote(context.Background(), "AAPL")
	require.ErrorIs(t, err, externalApi.ErrNotFound)
}

func TestGetDailyClose(t *testing.T) {
	api := newTestApi(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v8/finance/chart/AAPL", r.URL.Path)
		require.Equal(t, "1d", r.URL.Query().Get("range"))
		w.Write([]byte(`{"chart":{"result":[{"indicators":{"quote":[{"close":[228.15,null,230.42]}]}}],"error":null}}`))
	})

	closePrice, err := api.GetDailyClose(context.Background(), "AAPL")
	require.NoError(t, err)
	require.True(t, closePrice.Equal(decimal.NewFromFloat(230.42)), "last non-nil close expected, got %s", closePrice)
}

func TestGetDailyClose_AllNil(t *testing.T) {
	api := newTestApi(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"chart":{"result":[{"indicators":{"quote":[{"close":[null,null]}]}}],"error":null}}`))
	})

	_, err := api.GetDailyClose(context.Background(), "AAPL")
	require.ErrorIs(t, err, externalApi.ErrNotFound)
}

func TestGetDailyClose_EmptyResult(t *testing.T) {
	api := newTestApi(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"chart":{"result":[],"error":null}}`))
	})

	_, err := api.GetDailyClose(context.Background(), "AAPL")
	require.ErrorIs(t, err, externalApi.ErrNotFound)
}
