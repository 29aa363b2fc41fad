package competitionService

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tickerduel/stockpick_backend/data/repository"
	"github.com/tickerduel/stockpick_backend/internal/model"
	"github.com/tickerduel/stockpick_backend/internal/service"
	"github.com/tickerduel/stockpick_backend/utils"
)

func (s *CompetitionService) getPortfolioWithItems(ctx context.Context, portfolioID int64) (model.Portfolio, error) {
	portfolio, err := s.repo.GetPortfolio(ctx, portfolioID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Portfolio{}, service.ErrNotFound
		}
		return model.Portfolio{}, err
	}

	items, err := s.repo.GetPortfolioItems(ctx, portfolioID)
	if err != nil {
		return model.Portfolio{}, err
	}
	portfolio.Items = items

	return portfolio, nil
}

// checkEntryDeadline fails with ErrDeadlinePassed once the referenced
// competition's entry window is over. A missing deadline never blocks.
func (s *CompetitionService) checkEntryDeadline(ctx context.Context, competitionID *int64) error {
	if competitionID == nil {
		return nil
	}

	competition, err := s.repo.GetCompetition(ctx, *competitionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return service.ErrNotFound
		}
		return err
	}

	if competition.EntryClosed(time.Now().UTC()) {
		return service.ErrDeadlinePassed
	}

	return nil
}

// CreatePortfolio validates the requested composition, prices every item and
// persists the portfolio with its initial aggregates. total_return_percent
// starts at zero.
func (s *CompetitionService) CreatePortfolio(
	ctx context.Context,
	userID int64,
	name string,
	competitionID *int64,
	itemRequests []model.PortfolioItemRequest,
) (portfolio model.Portfolio, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "CompetitionService.CreatePortfolio"

	slog.Debug("CreatePortfolio start", slog.String("rqID", rqID), slog.String("op", op), slog.String("name", name), slog.Int64("userID", userID))
	defer func() {
		slog.Debug("CreatePortfolio finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("name", name), slog.Int64("userID", userID))
	}()

	if len(itemRequests) > MaxPortfolioItems {
		return model.Portfolio{}, service.ErrItemLimitReached
	}

	if err := s.checkEntryDeadline(ctx, competitionID); err != nil {
		return model.Portfolio{}, err
	}

	seen := make(map[string]struct{}, len(itemRequests))
	items := make([]model.PortfolioItem, 0, len(itemRequests))

	for _, request := range itemRequests {
		if !request.Quantity.IsPositive() {
			return model.Portfolio{}, service.ErrInvalidQuantity
		}

		symbol := normalizeSymbol(request.Symbol)
		if _, ok := seen[symbol]; ok {
			return model.Portfolio{}, service.ErrDuplicateSymbol
		}
		seen[symbol] = struct{}{}

		price := s.fetchCreationPrice(ctx, symbol)

		items = append(items, model.PortfolioItem{
			Symbol:       symbol,
			AssetType:    request.AssetType,
			Quantity:     request.Quantity,
			InitialPrice: price,
			CurrentPrice: price,
		})
	}

	totalValue := decimal.Zero
	for _, item := range items {
		totalValue = totalValue.Add(item.CurrentPrice.Mul(item.Quantity))
	}

	var portfolioID int64
	err = s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		portfolioID, err = s.repo.InsertPortfolio(ctx, name, userID, competitionID)
		if err != nil {
			return err
		}

		for i := range items {
			items[i].PortfolioID = portfolioID
			items[i].ItemID, err = s.repo.InsertPortfolioItem(ctx, items[i])
			if err != nil {
				if errors.Is(err, repository.ErrAlreadyExists) {
					return service.ErrDuplicateSymbol
				}
				return err
			}
		}

		return s.repo.UpdatePortfolioTotals(ctx, portfolioID, totalValue, decimal.Zero)
	})
	if err != nil {
		slog.Error("got error persisting portfolio", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Portfolio{}, err
	}

	return s.getPortfolioWithItems(ctx, portfolioID)
}

// AddPortfolioItem appends one priced item to an existing portfolio and bumps
// total_value by price*quantity in the same transaction.
//
// total_return_percent is deliberately NOT recomputed here: the cost basis
// total is not tracked incrementally, so the stored return stays stale until
// the next refresh pass. This window is accepted behavior, not a defect.
func (s *CompetitionService) AddPortfolioItem(
	ctx context.Context,
	portfolioID, callerID int64,
	request model.PortfolioItemRequest,
) (portfolio model.Portfolio, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "CompetitionService.AddPortfolioItem"

	slog.Debug("AddPortfolioItem start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID), slog.String("symbol", request.Symbol))
	defer func() {
		slog.Debug("AddPortfolioItem finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID), slog.String("symbol", request.Symbol))
	}()

	unlock := s.portfolioLocks.lock(portfolioID)
	defer unlock()

	portfolio, err = s.getPortfolioWithItems(ctx, portfolioID)
	if err != nil {
		return model.Portfolio{}, err
	}

	if portfolio.OwnerID != callerID {
		return model.Portfolio{}, service.ErrNotAuthorized
	}

	if len(portfolio.Items) >= MaxPortfolioItems {
		return model.Portfolio{}, service.ErrItemLimitReached
	}

	if err := s.checkEntryDeadline(ctx, portfolio.CompetitionID); err != nil {
		return model.Portfolio{}, err
	}

	if !request.Quantity.IsPositive() {
		return model.Portfolio{}, service.ErrInvalidQuantity
	}

	symbol := normalizeSymbol(request.Symbol)
	for _, item := range portfolio.Items {
		if item.Symbol == symbol {
			return model.Portfolio{}, service.ErrDuplicateSymbol
		}
	}

	price := s.fetchCreationPrice(ctx, symbol)

	item := model.PortfolioItem{
		PortfolioID:  portfolioID,
		Symbol:       symbol,
		AssetType:    request.AssetType,
		Quantity:     request.Quantity,
		InitialPrice: price,
		CurrentPrice: price,
	}

	err = s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		item.ItemID, err = s.repo.InsertPortfolioItem(ctx, item)
		if err != nil {
			if errors.Is(err, repository.ErrAlreadyExists) {
				return service.ErrDuplicateSymbol
			}
			return err
		}

		return s.repo.AddToPortfolioValue(ctx, portfolioID, price.Mul(request.Quantity))
	})
	if err != nil {
		slog.Error("got error persisting item", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Portfolio{}, err
	}

	return s.getPortfolioWithItems(ctx, portfolioID)
}

// ListPortfolios pages through all portfolios, aggregates only. Item lists are
// deadline-gated per viewer, so the listing never carries them.
func (s *CompetitionService) ListPortfolios(ctx context.Context, skip, limit int) (portfolios []model.Portfolio, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "CompetitionService.ListPortfolios"

	slog.Debug("ListPortfolios start", slog.String("rqID", rqID), slog.String("op", op), slog.Int("skip", skip), slog.Int("limit", limit))
	defer func() {
		slog.Debug("ListPortfolios finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > DefaultPageSize {
		limit = DefaultPageSize
	}

	portfolios, err = s.repo.GetPortfolios(ctx, skip, limit)
	if err != nil {
		slog.Error("got error from repo.GetPortfolios", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	return portfolios, nil
}

// GetPortfolio returns a portfolio shaped for the given viewer. Non-owners see
// the item list only after the competition entry deadline has passed; aggregate
// fields stay visible either way. A portfolio outside any competition is never
// revealed to non-owners.
func (s *CompetitionService) GetPortfolio(ctx context.Context, portfolioID, viewerID int64) (portfolio model.Portfolio, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "CompetitionService.GetPortfolio"

	slog.Debug("GetPortfolio start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID), slog.Int64("viewerID", viewerID))
	defer func() {
		slog.Debug("GetPortfolio finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID))
	}()

	portfolio, err = s.getPortfolioWithItems(ctx, portfolioID)
	if err != nil {
		return model.Portfolio{}, err
	}

	isOwner := portfolio.OwnerID == viewerID

	isRevealed := false
	if portfolio.CompetitionID != nil {
		competition, err := s.repo.GetCompetition(ctx, *portfolio.CompetitionID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return model.Portfolio{}, err
		}
		if err == nil {
			isRevealed = competition.EntryClosed(time.Now().UTC())
		}
	}

	if !isOwner && !isRevealed {
		portfolio.Items = []model.PortfolioItem{}
	}

	return portfolio, nil
}
