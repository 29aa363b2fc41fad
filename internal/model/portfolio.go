package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Portfolio struct {
	PortfolioID        int64
	Name               string
	OwnerID            int64
	CompetitionID      *int64
	CreatedAt          time.Time
	TotalValue         decimal.Decimal
	TotalReturnPercent decimal.Decimal
	Items              []PortfolioItem
}

type PortfolioItem struct {
	ItemID       int64
	PortfolioID  int64
	Symbol       string
	AssetType    string
	Quantity     decimal.Decimal
	InitialPrice decimal.Decimal
	CurrentPrice decimal.Decimal
}

type PortfolioItemRequest struct {
	Symbol    string
	AssetType string
	Quantity  decimal.Decimal
}

type LeaderboardRow struct {
	PortfolioID        int64
	PortfolioName      string
	Username           string
	TotalValue         decimal.Decimal
	TotalReturnPercent decimal.Decimal
}
