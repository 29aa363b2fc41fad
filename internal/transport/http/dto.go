package http

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tickerduel/stockpick_backend/internal/model"
)

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type createCompetitionRequest struct {
	Name          string     `json:"name" binding:"required"`
	Slug          string     `json:"slug" binding:"required"`
	EntryDeadline *time.Time `json:"entry_deadline"`
}

type portfolioItemRequest struct {
	Symbol    string          `json:"symbol" binding:"required"`
	AssetType string          `json:"asset_type"`
	Quantity  decimal.Decimal `json:"quantity"`
}

type createPortfolioRequest struct {
	Name          string                 `json:"name" binding:"required"`
	CompetitionID *int64                 `json:"competition_id"`
	Items         []portfolioItemRequest `json:"items" binding:"required"`
}

type userResponse struct {
	UserID     int64  `json:"id"`
	Email      string `json:"email"`
	Username   string `json:"username"`
	IsVerified bool   `json:"is_verified"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type competitionResponse struct {
	CompetitionID int64      `json:"id"`
	Name          string     `json:"name"`
	Slug          string     `json:"slug"`
	EntryDeadline *time.Time `json:"entry_deadline"`
}

type portfolioItemResponse struct {
	ItemID       int64           `json:"id"`
	Symbol       string          `json:"symbol"`
	AssetType    string          `json:"asset_type"`
	Quantity     decimal.Decimal `json:"quantity"`
	InitialPrice decimal.Decimal `json:"initial_price"`
	CurrentPrice decimal.Decimal `json:"current_price"`
}

type portfolioResponse struct {
	PortfolioID        int64                   `json:"id"`
	Name               string                  `json:"name"`
	OwnerID            int64                   `json:"owner_id"`
	CompetitionID      *int64                  `json:"competition_id"`
	CreatedAt          time.Time               `json:"created_at"`
	TotalValue         decimal.Decimal         `json:"total_value"`
	TotalReturnPercent decimal.Decimal         `json:"total_return_percent"`
	Items              []portfolioItemResponse `json:"items"`
}

type leaderboardRowResponse struct {
	Rank               int             `json:"rank"`
	PortfolioID        int64           `json:"portfolio_id"`
	PortfolioName      string          `json:"portfolio_name"`
	Username           string          `json:"username"`
	TotalValue         decimal.Decimal `json:"total_value"`
	TotalReturnPercent decimal.Decimal `json:"total_return_percent"`
}

type stockSearchResponse struct {
	Symbol string          `json:"symbol"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
}

type stockPriceResponse struct {
	Symbol        string          `json:"symbol"`
	Price         decimal.Decimal `json:"price"`
	ChangePercent decimal.Decimal `json:"change_percent"`
}

func convertUser(user model.User) userResponse {
	return userResponse{
		UserID:     user.UserID,
		Email:      user.Email,
		Username:   user.Username,
		IsVerified: user.IsVerified,
	}
}

func convertCompetition(competition model.Competition) competitionResponse {
	return competitionResponse{
		CompetitionID: competition.CompetitionID,
		Name:          competition.Name,
		Slug:          competition.Slug,
		EntryDeadline: competition.EntryDeadline,
	}
}

func convertPortfolio(portfolio model.Portfolio) portfolioResponse {
	items := make([]portfolioItemResponse, 0, len(portfolio.Items))
	for _, item := range portfolio.Items {
		items = append(items, portfolioItemResponse{
			ItemID:       item.ItemID,
			Symbol:       item.Symbol,
			AssetType:    item.AssetType,
			Quantity:     item.Quantity,
			InitialPrice: item.InitialPrice,
			CurrentPrice: item.CurrentPrice,
		})
	}

	return portfolioResponse{
		PortfolioID:        portfolio.PortfolioID,
		Name:               portfolio.Name,
		OwnerID:            portfolio.OwnerID,
		CompetitionID:      portfolio.CompetitionID,
		CreatedAt:          portfolio.CreatedAt,
		TotalValue:         portfolio.TotalValue,
		TotalReturnPercent: portfolio.TotalReturnPercent,
		Items:              items,
	}
}

func convertLeaderboard(rows []model.LeaderboardRow) []leaderboardRowResponse {
	result := make([]leaderboardRowResponse, 0, len(rows))
	for i, row := range rows {
		result = append(result, leaderboardRowResponse{
			Rank:               i + 1,
			PortfolioID:        row.PortfolioID,
			PortfolioName:      row.PortfolioName,
			Username:           row.Username,
			TotalValue:         row.TotalValue,
			TotalReturnPercent: row.TotalReturnPercent,
		})
	}
	return result
}
