package dbConverter

import (
	"github.com/tickerduel/stockpick_backend/internal/model"
	"github.com/tickerduel/stockpick_backend/internal/model/dbModel"
)

func ConvertUser(dbUser dbModel.User) model.User {
	return model.User{
		UserID:       dbUser.UserID,
		Email:        dbUser.Email,
		Username:     dbUser.Username,
		PasswordHash: dbUser.PasswordHash,
		IsVerified:   dbUser.IsVerified,
	}
}

func ConvertCompetition(dbComp dbModel.Competition) model.Competition {
	comp := model.Competition{
		CompetitionID: dbComp.CompetitionID,
		Name:          dbComp.Name,
		Slug:          dbComp.Slug,
	}
	if dbComp.EntryDeadline.Valid {
		deadline := dbComp.EntryDeadline.Time
		comp.EntryDeadline = &deadline
	}
	return comp
}

func ConvertPortfolio(dbPortfolio dbModel.Portfolio) model.Portfolio {
	portfolio := model.Portfolio{
		PortfolioID:        dbPortfolio.PortfolioID,
		Name:               dbPortfolio.Name,
		OwnerID:            dbPortfolio.UserID,
		CreatedAt:          dbPortfolio.CreatedAt,
		TotalValue:         dbPortfolio.TotalValue,
		TotalReturnPercent: dbPortfolio.TotalReturnPercent,
	}
	if dbPortfolio.CompetitionID.Valid {
		competitionID := dbPortfolio.CompetitionID.Int64
		portfolio.CompetitionID = &competitionID
	}
	return portfolio
}

func ConvertPortfolioItem(dbItem dbModel.PortfolioItem) model.PortfolioItem {
	return model.PortfolioItem{
		ItemID:       dbItem.ItemID,
		PortfolioID:  dbItem.PortfolioID,
		Symbol:       dbItem.Symbol,
		AssetType:    dbItem.AssetType,
		Quantity:     dbItem.Quantity,
		InitialPrice: dbItem.InitialPrice,
		CurrentPrice: dbItem.CurrentPrice,
	}
}

func ConvertLeaderboardRow(dbRow dbModel.LeaderboardRow) model.LeaderboardRow {
	return model.LeaderboardRow{
		PortfolioID:        dbRow.PortfolioID,
		PortfolioName:      dbRow.PortfolioName,
		Username:           dbRow.Username,
		TotalValue:         dbRow.TotalValue,
		TotalReturnPercent: dbRow.TotalReturnPercent,
	}
}
