package dbModel

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

type Portfolio struct {
	PortfolioID        int64           `db:"portfolio_id"`
	Name               string          `db:"name"`
	UserID             int64           `db:"user_id"`
	CompetitionID      sql.NullInt64   `db:"competition_id"`
	TotalValue         decimal.Decimal `db:"total_value"`
	TotalReturnPercent decimal.Decimal `db:"total_return_percent"`
	CreatedAt          time.Time       `db:"dt_create"`
}

type PortfolioItem struct {
	ItemID       int64           `db:"item_id"`
	PortfolioID  int64           `db:"portfolio_id"`
	Symbol       string          `db:"symbol"`
	AssetType    string          `db:"asset_type"`
	Quantity     decimal.Decimal `db:"quantity"`
	InitialPrice decimal.Decimal `db:"initial_price"`
	CurrentPrice decimal.Decimal `db:"current_price"`
}

type LeaderboardRow struct {
	PortfolioID        int64           `db:"portfolio_id"`
	PortfolioName      string          `db:"name"`
	Username           string          `db:"username"`
	TotalValue         decimal.Decimal `db:"total_value"`
	TotalReturnPercent decimal.Decimal `db:"total_return_percent"`
}
