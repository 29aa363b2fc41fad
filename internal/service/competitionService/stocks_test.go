package competitionService

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/tickerduel/stockpick_backend/internal/externalApi"
	"github.com/tickerduel/stockpick_backend/internal/model/yahooModel"
	"github.com/tickerduel/stockpick_backend/internal/service"
)

type quoteMarketApi struct {
	fakeMarketApi
	quote yahooModel.Quote
}

func (m *quoteMarketApi) GetQuote(_ context.Context, symbol string) (yahooModel.Quote, error) {
	if symbol != m.quote.Symbol {
		return yahooModel.Quote{}, externalApi.ErrNotFound
	}
	return m.quote, nil
}

func TestGetStockPrice(t *testing.T) {
	market := &quoteMarketApi{quote: yahooModel.Quote{
		Symbol:        "AAPL",
		Price:         dec("110"),
		PreviousClose: dec("100"),
	}}
	srv := newTestService(newFakeRepo(), market)

	stockPrice, err := srv.GetStockPrice(context.Background(), "appl")
	require.NoError(t, err)
	require.Equal(t, "AAPL", stockPrice.Symbol)
	require.True(t, stockPrice.Price.Equal(dec("110")))
	require.True(t, stockPrice.ChangePercent.Equal(dec("10")), "got %s", stockPrice.ChangePercent)
}

func TestGetStockPrice_NoPreviousClose(t *testing.T) {
	market := &quoteMarketApi{quote: yahooModel.Quote{
		Symbol: "AAPL",
		Price:  dec("110"),
	}}
	srv := newTestService(newFakeRepo(), market)

	stockPrice, err := srv.GetStockPrice(context.Background(), "AAPL")
	require.NoError(t, err)
	require.True(t, stockPrice.ChangePercent.IsZero())
}

func TestSearchStock(t *testing.T) {
	market := &quoteMarketApi{quote: yahooModel.Quote{
		Symbol: "AAPL",
		Name:   "Apple Inc.",
		Price:  dec("231.59"),
	}}
	srv := newTestService(newFakeRepo(), market)

	result, err := srv.SearchStock(context.Background(), "appl")
	require.NoError(t, err)
	require.Equal(t, "AAPL", result.Symbol)
	require.Equal(t, "Apple Inc.", result.Name)
	require.True(t, result.Price.Equal(dec("231.59")))
}

func TestSearchStock_UnknownTicker(t *testing.T) {
	market := &quoteMarketApi{quote: yahooModel.Quote{Symbol: "AAPL", Price: decimal.NewFromInt(1)}}
	srv := newTestService(newFakeRepo(), market)

	_, err := srv.SearchStock(context.Background(), "NOPE")
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestGetStockPrice_UnknownSymbol(t *testing.T) {
	market := &quoteMarketApi{quote: yahooModel.Quote{Symbol: "AAPL", Price: decimal.NewFromInt(1)}}
	srv := newTestService(newFakeRepo(), market)

	_, err := srv.GetStockPrice(context.Background(), "ZZZZ")
	require.ErrorIs(t, err, service.ErrNotFound)
}
