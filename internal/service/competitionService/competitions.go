package competitionService

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tickerduel/stockpick_backend/data/repository"
	"github.com/tickerduel/stockpick_backend/internal/model"
	"github.com/tickerduel/stockpick_backend/internal/service"
	"github.com/tickerduel/stockpick_backend/utils"
)

func (s *CompetitionService) CreateCompetition(ctx context.Context, name, slug string, entryDeadline *time.Time) (competition model.Competition, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "CompetitionService.CreateCompetition"

	slog.Debug("CreateCompetition start", slog.String("rqID", rqID), slog.String("op", op), slog.String("slug", slug))
	defer func() {
		slog.Debug("CreateCompetition finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("slug", slug))
	}()

	competitionID, err := s.repo.InsertCompetition(ctx, name, slug, entryDeadline)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return model.Competition{}, service.ErrAlreadyExists
		}
		slog.Error("got error from repo.InsertCompetition", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Competition{}, err
	}

	return model.Competition{
		CompetitionID: competitionID,
		Name:          name,
		Slug:          slug,
		EntryDeadline: entryDeadline,
	}, nil
}

func (s *CompetitionService) GetCompetitions(ctx context.Context) ([]model.Competition, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "CompetitionService.GetCompetitions"

	competitions, err := s.repo.GetCompetitions(ctx)
	if err != nil {
		slog.Error("got error from repo.GetCompetitions", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	return competitions, nil
}

// GetLeaderboard ranks a competition's portfolios by stored return percent,
// descending. It ranks whatever is persisted; no refresh is triggered here.
func (s *CompetitionService) GetLeaderboard(ctx context.Context, competitionID int64, limit int) (rows []model.LeaderboardRow, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "CompetitionService.GetLeaderboard"

	slog.Debug("GetLeaderboard start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("competitionID", competitionID))
	defer func() {
		slog.Debug("GetLeaderboard finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("competitionID", competitionID))
	}()

	if limit <= 0 || limit > DefaultLeaderboardLimit {
		limit = DefaultLeaderboardLimit
	}

	if _, err := s.repo.GetCompetition(ctx, competitionID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, service.ErrNotFound
		}
		return nil, err
	}

	rows, err = s.repo.GetLeaderboard(ctx, competitionID, limit)
	if err != nil {
		slog.Error("got error from repo.GetLeaderboard", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	return rows, nil
}

// ExportLeaderboard renders the full leaderboard as a downloadable workbook.
func (s *CompetitionService) ExportLeaderboard(ctx context.Context, competitionID int64) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "CompetitionService.ExportLeaderboard"

	slog.Debug("ExportLeaderboard start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("competitionID", competitionID))
	defer func() {
		slog.Debug("ExportLeaderboard finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("competitionID", competitionID))
	}()

	competition, err := s.repo.GetCompetition(ctx, competitionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", service.ErrNotFound
		}
		return nil, "", err
	}

	rows, err := s.repo.GetLeaderboard(ctx, competitionID, DefaultLeaderboardLimit)
	if err != nil {
		slog.Error("got error from repo.GetLeaderboard", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	return s.reportGenerator.GenerateLeaderboard(ctx, competition, rows)
}

// EnsureDefaultCompetitions seeds the default competitions on an empty table.
func (s *CompetitionService) EnsureDefaultCompetitions(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "CompetitionService.EnsureDefaultCompetitions"

	competitions, err := s.repo.GetCompetitions(ctx)
	if err != nil {
		slog.Error("got error from repo.GetCompetitions", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	if len(competitions) > 0 {
		return nil
	}

	slog.Info("seeding default competitions", slog.String("rqID", rqID), slog.String("op", op))

	deadline := time.Date(time.Now().UTC().Year()+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	year := deadline.Year()

	seeds := []struct {
		name string
		slug string
	}{
		{name: fmt.Sprintf("Q1 %d Competition", year), slug: fmt.Sprintf("q1-%d", year)},
		{name: fmt.Sprintf("%d Full Year Competition", year), slug: fmt.Sprintf("%d-full", year)},
	}

	for _, seed := range seeds {
		if _, err := s.repo.InsertCompetition(ctx, seed.name, seed.slug, &deadline); err != nil {
			if errors.Is(err, repository.ErrAlreadyExists) {
				continue
			}
			return err
		}
	}

	return nil
}
