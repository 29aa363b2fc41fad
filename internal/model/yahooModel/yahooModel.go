package yahooModel

import "github.com/shopspring/decimal"

type Quote struct {
	Symbol        string          `json:"symbol"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	PreviousClose decimal.Decimal `json:"previousClose"`
}

// RawQuoteResponse mirrors the v7 quote endpoint payload.
type RawQuoteResponse struct {
	QuoteResponse struct {
		Result []RawQuote `json:"result"`
		Error  any        `json:"error"`
	} `json:"quoteResponse"`
}

type RawQuote struct {
	Symbol                     string   `json:"symbol"`
	LongName                   string   `json:"longName"`
	ShortName                  string   `json:"shortName"`
	RegularMarketPrice         *float64 `json:"regularMarketPrice"`
	RegularMarketPreviousClose *float64 `json:"regularMarketPreviousClose"`
}

// RawChartResponse mirrors the v8 chart endpoint payload, trimmed to the
// fields needed to pull the most recent daily close.
type RawChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol string `json:"symbol"`
			} `json:"meta"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error any `json:"error"`
	} `json:"chart"`
}
