package xlsxGenerator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tickerduel/stockpick_backend/internal/model"
	"github.com/tickerduel/stockpick_backend/utils"
	"github.com/xuri/excelize/v2"
)

type XLSXGenerator struct{}

func New() *XLSXGenerator {
	return &XLSXGenerator{}
}

var leaderboardHeaders = []string{"Rank", "Portfolio", "Owner", "Total Value", "Return %"}

// GenerateLeaderboard renders a competition leaderboard into a single-sheet workbook.
func (g *XLSXGenerator) GenerateLeaderboard(ctx context.Context, competition model.Competition, rows []model.LeaderboardRow) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XLSXGenerator.GenerateLeaderboard"

	slog.Debug("GenerateLeaderboard start", slog.String("rqID", rqID), slog.String("op", op), slog.Int("rows", len(rows)))

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("got error while closing file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	sheetName := competition.Slug
	if _, err := f.NewSheet(sheetName); err != nil {
		slog.Error("got error while creating NewSheet", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	headerStyleID, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Font: &excelize.Font{
			Bold: true,
			Size: 11,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{"#cfe2f3"},
		},
	})
	if err != nil {
		return nil, "", err
	}

	for i, header := range leaderboardHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, "", err
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return nil, "", err
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyleID); err != nil {
			return nil, "", fmt.Errorf("apply header style: %w", err)
		}
	}

	for i, row := range rows {
		rowNum := i + 2
		values := []any{
			i + 1,
			row.PortfolioName,
			row.Username,
			row.TotalValue.InexactFloat64(),
			row.TotalReturnPercent.InexactFloat64(),
		}
		for j, value := range values {
			cell, err := excelize.CoordinatesToCellName(j+1, rowNum)
			if err != nil {
				return nil, "", err
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return nil, "", err
			}
		}
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		slog.Error("got error while deleting Sheet1", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		slog.Error("got error while saving file to bytes buffer", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	slog.Debug("GenerateLeaderboard completed", slog.String("rqID", rqID), slog.String("op", op))

	return buf.Bytes(), ".xlsx", nil
}
