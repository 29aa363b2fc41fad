package competitionService

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"
	"github.com/tickerduel/stockpick_backend/internal/model"
	"github.com/tickerduel/stockpick_backend/internal/model/yahooModel"
	"github.com/tickerduel/stockpick_backend/utils"
)

// lookupQuote tries the cache first, then the market API. A fresh quote is
// written back to the cache asynchronously.
func (s *CompetitionService) lookupQuote(ctx context.Context, symbol string) (yahooModel.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "CompetitionService.lookupQuote"

	quote, err := s.cache.GetQuote(ctx, symbol)
	if err == nil {
		return quote, nil
	}

	quote, err = s.marketApi.GetQuote(ctx, symbol)
	if err != nil {
		slog.Warn("can't get quote from marketApi", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol), slog.String("err", err.Error()))
		return yahooModel.Quote{}, err
	}

	go s.cache.SetQuote(context.WithoutCancel(ctx), quote)

	return quote, nil
}

// fetchCreationPrice resolves a price for a symbol being added to a portfolio:
// fast quote, then most recent daily close, then DefaultFallbackPrice. There is
// no stored price to fall back to on this path. Lookup errors are absorbed.
func (s *CompetitionService) fetchCreationPrice(ctx context.Context, symbol string) decimal.Decimal {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "CompetitionService.fetchCreationPrice"

	quote, err := s.lookupQuote(ctx, symbol)
	if err == nil && quote.Price.IsPositive() {
		return quote.Price
	}

	closePrice, err := s.marketApi.GetDailyClose(ctx, symbol)
	if err == nil && closePrice.IsPositive() {
		return closePrice
	}

	slog.Warn("all price sources failed, using default fallback", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))

	return DefaultFallbackPrice
}

// fetchRefreshPrice resolves a price during a refresh pass: fast quote, daily
// close, the item's own initial price, then DefaultFallbackPrice as the last
// resort. Lookup errors are absorbed so a market-data outage never fails a refresh.
func (s *CompetitionService) fetchRefreshPrice(ctx context.Context, item model.PortfolioItem) decimal.Decimal {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "CompetitionService.fetchRefreshPrice"

	quote, err := s.lookupQuote(ctx, item.Symbol)
	if err == nil && quote.Price.IsPositive() {
		return quote.Price
	}

	closePrice, err := s.marketApi.GetDailyClose(ctx, item.Symbol)
	if err == nil && closePrice.IsPositive() {
		return closePrice
	}

	slog.Warn("price sources failed, falling back to initial price", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", item.Symbol))

	if item.InitialPrice.IsPositive() {
		return item.InitialPrice
	}

	return DefaultFallbackPrice
}

// RefreshPortfolio refetches every item's price and recomputes the portfolio
// aggregates. Item prices and both aggregates are persisted in one transaction
// so total_value and total_return_percent always reflect the same pass.
func (s *CompetitionService) RefreshPortfolio(ctx context.Context, portfolioID int64) (portfolio model.Portfolio, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "CompetitionService.RefreshPortfolio"

	slog.Debug("RefreshPortfolio start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID))
	defer func() {
		slog.Debug("RefreshPortfolio finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID))
	}()

	unlock := s.portfolioLocks.lock(portfolioID)
	defer unlock()

	portfolio, err = s.getPortfolioWithItems(ctx, portfolioID)
	if err != nil {
		return model.Portfolio{}, err
	}

	currentTotal := decimal.Zero
	initialTotal := decimal.Zero

	for i := range portfolio.Items {
		price := s.fetchRefreshPrice(ctx, portfolio.Items[i])
		portfolio.Items[i].CurrentPrice = price

		currentTotal = currentTotal.Add(price.Mul(portfolio.Items[i].Quantity))
		initialTotal = initialTotal.Add(portfolio.Items[i].InitialPrice.Mul(portfolio.Items[i].Quantity))
	}

	totalReturnPercent := decimal.Zero
	if initialTotal.IsPositive() {
		totalReturnPercent = currentTotal.Sub(initialTotal).Div(initialTotal).Mul(decimal.NewFromInt(100))
	}

	err = s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		for _, item := range portfolio.Items {
			if err := s.repo.UpdateItemCurrentPrice(ctx, item.ItemID, item.CurrentPrice); err != nil {
				return err
			}
		}
		return s.repo.UpdatePortfolioTotals(ctx, portfolioID, currentTotal, totalReturnPercent)
	})
	if err != nil {
		slog.Error("got error persisting refresh pass", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Portfolio{}, err
	}

	portfolio.TotalValue = currentTotal
	portfolio.TotalReturnPercent = totalReturnPercent

	return portfolio, nil
}

// RefreshAllPortfolios runs a refresh pass over every stored portfolio.
// Used by the interval job; individual failures don't stop the sweep.
func (s *CompetitionService) RefreshAllPortfolios(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "CompetitionService.RefreshAllPortfolios"

	portfolioIDs, err := s.repo.GetPortfolioIDs(ctx)
	if err != nil {
		slog.Error("got error from repo.GetPortfolioIDs", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	var errs []error
	for _, portfolioID := range portfolioIDs {
		if _, err := s.RefreshPortfolio(ctx, portfolioID); err != nil {
			slog.Error("refresh failed for portfolio", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID), slog.String("err", err.Error()))
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
