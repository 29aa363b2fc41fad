package model

import "github.com/shopspring/decimal"

type StockPrice struct {
	Symbol        string
	Price         decimal.Decimal
	ChangePercent decimal.Decimal
}

type StockSearchResult struct {
	Symbol string
	Name   string
	Price  decimal.Decimal
}
