package competitionService

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"
	"github.com/tickerduel/stockpick_backend/internal/externalApi"
	"github.com/tickerduel/stockpick_backend/internal/model"
	"github.com/tickerduel/stockpick_backend/internal/service"
	"github.com/tickerduel/stockpick_backend/utils"
)

// GetStockPrice returns the current quote for a ticker together with the
// percent change against the previous close. Unlike portfolio pricing there is
// no fallback chain here: an unknown ticker is reported to the caller.
func (s *CompetitionService) GetStockPrice(ctx context.Context, symbol string) (stockPrice model.StockPrice, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "CompetitionService.GetStockPrice"

	slog.Debug("GetStockPrice start", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))
	defer func() {
		slog.Debug("GetStockPrice finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))
	}()

	normalized := normalizeSymbol(symbol)

	quote, err := s.lookupQuote(ctx, normalized)
	if err != nil {
		if errors.Is(err, externalApi.ErrNotFound) {
			return model.StockPrice{}, service.ErrNotFound
		}
		slog.Error("got error from lookupQuote", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.StockPrice{}, err
	}

	changePercent := decimal.Zero
	if quote.PreviousClose.IsPositive() {
		changePercent = quote.Price.Sub(quote.PreviousClose).Div(quote.PreviousClose).Mul(decimal.NewFromInt(100))
	}

	return model.StockPrice{
		Symbol:        quote.Symbol,
		Price:         quote.Price,
		ChangePercent: changePercent,
	}, nil
}

// SearchStock validates that a ticker exists and returns its symbol, listed
// name and current price. There is no fuzzy search against the market API, so
// lookup by exact ticker is what search means here.
func (s *CompetitionService) SearchStock(ctx context.Context, query string) (result model.StockSearchResult, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "CompetitionService.SearchStock"

	slog.Debug("SearchStock start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		slog.Debug("SearchStock finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	}()

	normalized := normalizeSymbol(query)

	quote, err := s.lookupQuote(ctx, normalized)
	if err != nil {
		if errors.Is(err, externalApi.ErrNotFound) {
			return model.StockSearchResult{}, service.ErrNotFound
		}
		slog.Error("got error from lookupQuote", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.StockSearchResult{}, err
	}

	return model.StockSearchResult{
		Symbol: quote.Symbol,
		Name:   quote.Name,
		Price:  quote.Price,
	}, nil
}
