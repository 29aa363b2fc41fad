package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/tickerduel/stockpick_backend/data/repository"
	"github.com/tickerduel/stockpick_backend/internal/converter/dbConverter"
	"github.com/tickerduel/stockpick_backend/internal/model"
	"github.com/tickerduel/stockpick_backend/internal/model/dbModel"
	"github.com/tickerduel/stockpick_backend/utils"
)

func (r *Postgres) InsertPortfolio(ctx context.Context, name string, userID int64, competitionID *int64) (portfolioID int64, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		INSERT INTO portfolios(name, user_id, competition_id)
		VALUES($1, $2, $3)
		RETURNING portfolio_id
		`

	slog.Debug("InsertPortfolio start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("InsertPortfolio failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("InsertPortfolio completed", slog.String("rqID", rqID))
		}
	}()

	err = r.txOrDb(ctx).QueryRowContext(ctx, query, name, userID, competitionID).Scan(&portfolioID)
	if err != nil {
		return 0, err
	}

	return portfolioID, nil
}

func (r *Postgres) GetPortfolio(ctx context.Context, portfolioID int64) (portfolio model.Portfolio, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		SELECT portfolio_id, name, user_id, competition_id, total_value, total_return_percent, dt_create
		FROM portfolios
		WHERE portfolio_id = $1
		`

	slog.Debug("GetPortfolio start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetPortfolio failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetPortfolio completed", slog.String("rqID", rqID))
		}
	}()

	dbPortfolio := dbModel.Portfolio{}
	err = r.txOrDb(ctx).QueryRowxContext(ctx, query, portfolioID).StructScan(&dbPortfolio)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Portfolio{}, repository.ErrNotFound
		}
		return model.Portfolio{}, err
	}

	return dbConverter.ConvertPortfolio(dbPortfolio), nil
}

func (r *Postgres) GetPortfolioItems(ctx context.Context, portfolioID int64) (items []model.PortfolioItem, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		SELECT item_id, portfolio_id, symbol, asset_type, quantity, initial_price, current_price
		FROM portfolio_items
		WHERE portfolio_id = $1
		ORDER BY item_id
		`

	slog.Debug("GetPortfolioItems start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetPortfolioItems failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetPortfolioItems completed", slog.String("rqID", rqID))
		}
	}()

	rows, err := r.txOrDb(ctx).QueryxContext(ctx, query, portfolioID)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	for rows.Next() {
		var dbItem dbModel.PortfolioItem
		err = rows.StructScan(&dbItem)
		if err != nil {
			return nil, err
		}
		items = append(items, dbConverter.ConvertPortfolioItem(dbItem))
	}

	return items, nil
}

func (r *Postgres) InsertPortfolioItem(ctx context.Context, item model.PortfolioItem) (itemID int64, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.InsertPortfolioItem"
	query := `
		INSERT INTO portfolio_items(portfolio_id, symbol, asset_type, quantity, initial_price, current_price)
		VALUES($1, $2, $3, $4, $5, $6)
		RETURNING item_id
		`

	slog.Debug(
		"InsertPortfolioItem start",
		slog.String("rqID", rqID),
		slog.String("op", op),
		slog.Int64("portfolioID", item.PortfolioID),
		slog.String("symbol", item.Symbol),
		slog.String("query", query),
	)
	defer func() {
		if err != nil {
			slog.Error("InsertPortfolioItem failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("InsertPortfolioItem completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	err = r.txOrDb(ctx).QueryRowContext(
		ctx,
		query,
		item.PortfolioID,
		item.Symbol,
		item.AssetType,
		item.Quantity,
		item.InitialPrice,
		item.CurrentPrice,
	).Scan(&itemID)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation
				return 0, repository.ErrAlreadyExists
			}
		}
		return 0, err
	}

	return itemID, nil
}

func (r *Postgres) UpdateItemCurrentPrice(ctx context.Context, itemID int64, currentPrice decimal.Decimal) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.UpdateItemCurrentPrice"
	query := `
		UPDATE portfolio_items
		SET current_price = $1
		WHERE item_id = $2
		`

	slog.Debug("UpdateItemCurrentPrice start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("itemID", itemID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("UpdateItemCurrentPrice failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("UpdateItemCurrentPrice completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	_, err = r.txOrDb(ctx).ExecContext(ctx, query, currentPrice, itemID)
	if err != nil {
		return err
	}

	return nil
}

func (r *Postgres) UpdatePortfolioTotals(ctx context.Context, portfolioID int64, totalValue, totalReturnPercent decimal.Decimal) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.UpdatePortfolioTotals"
	query := `
		UPDATE portfolios
		SET total_value = $1, total_return_percent = $2
		WHERE portfolio_id = $3
		`

	slog.Debug("UpdatePortfolioTotals start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("UpdatePortfolioTotals failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("UpdatePortfolioTotals completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	_, err = r.txOrDb(ctx).ExecContext(ctx, query, totalValue, totalReturnPercent, portfolioID)
	if err != nil {
		return err
	}

	return nil
}

// AddToPortfolioValue bumps total_value without touching total_return_percent.
func (r *Postgres) AddToPortfolioValue(ctx context.Context, portfolioID int64, delta decimal.Decimal) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.AddToPortfolioValue"
	query := `
		UPDATE portfolios
		SET total_value = total_value + $1
		WHERE portfolio_id = $2
		`

	slog.Debug("AddToPortfolioValue start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("AddToPortfolioValue failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("AddToPortfolioValue completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	_, err = r.txOrDb(ctx).ExecContext(ctx, query, delta, portfolioID)
	if err != nil {
		return err
	}

	return nil
}

func (r *Postgres) GetPortfolios(ctx context.Context, offset, limit int) (portfolios []model.Portfolio, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetPortfolios"
	query := `
		SELECT portfolio_id, name, user_id, competition_id, total_value, total_return_percent, dt_create
		FROM portfolios
		ORDER BY portfolio_id
		OFFSET $1 LIMIT $2
		`

	slog.Debug("GetPortfolios start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetPortfolios failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetPortfolios completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	rows, err := r.txOrDb(ctx).QueryxContext(ctx, query, offset, limit)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	for rows.Next() {
		var dbPortfolio dbModel.Portfolio
		err = rows.StructScan(&dbPortfolio)
		if err != nil {
			return nil, err
		}
		portfolios = append(portfolios, dbConverter.ConvertPortfolio(dbPortfolio))
	}

	return portfolios, nil
}

func (r *Postgres) GetPortfolioIDs(ctx context.Context) (portfolioIDs []int64, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetPortfolioIDs"
	query := `SELECT portfolio_id FROM portfolios ORDER BY portfolio_id`

	slog.Debug("GetPortfolioIDs start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetPortfolioIDs failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetPortfolioIDs completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	err = r.txOrDb(ctx).SelectContext(ctx, &portfolioIDs, query)
	if err != nil {
		return nil, err
	}

	return portfolioIDs, nil
}
