package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/tickerduel/stockpick_backend/data/repository"
	"github.com/tickerduel/stockpick_backend/internal/converter/dbConverter"
	"github.com/tickerduel/stockpick_backend/internal/model"
	"github.com/tickerduel/stockpick_backend/internal/model/dbModel"
	"github.com/tickerduel/stockpick_backend/utils"
)

func (r *Postgres) InsertCompetition(ctx context.Context, name, slug string, entryDeadline *time.Time) (competitionID int64, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		INSERT INTO competitions(name, slug, entry_deadline)
		VALUES($1, $2, $3)
		RETURNING competition_id
		`

	slog.Debug("InsertCompetition start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("InsertCompetition failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("InsertCompetition completed", slog.String("rqID", rqID))
		}
	}()

	err = r.txOrDb(ctx).QueryRowContext(ctx, query, name, slug, entryDeadline).Scan(&competitionID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation
				return 0, repository.ErrAlreadyExists
			}
		}
		return 0, err
	}

	return competitionID, nil
}

func (r *Postgres) GetCompetition(ctx context.Context, competitionID int64) (competition model.Competition, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		SELECT competition_id, name, slug, entry_deadline
		FROM competitions
		WHERE competition_id = $1
		`

	slog.Debug("GetCompetition start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetCompetition failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetCompetition completed", slog.String("rqID", rqID))
		}
	}()

	dbComp := dbModel.Competition{}
	err = r.txOrDb(ctx).QueryRowxContext(ctx, query, competitionID).StructScan(&dbComp)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Competition{}, repository.ErrNotFound
		}
		return model.Competition{}, err
	}

	return dbConverter.ConvertCompetition(dbComp), nil
}

func (r *Postgres) GetCompetitions(ctx context.Context) (competitions []model.Competition, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		SELECT competition_id, name, slug, entry_deadline
		FROM competitions
		ORDER BY competition_id
		`

	slog.Debug("GetCompetitions start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetCompetitions failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetCompetitions completed", slog.String("rqID", rqID))
		}
	}()

	rows, err := r.txOrDb(ctx).QueryxContext(ctx, query)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	for rows.Next() {
		var dbComp dbModel.Competition
		err = rows.StructScan(&dbComp)
		if err != nil {
			return nil, err
		}
		competitions = append(competitions, dbConverter.ConvertCompetition(dbComp))
	}

	return competitions, nil
}

func (r *Postgres) GetLeaderboard(ctx context.Context, competitionID int64, limit int) (rows []model.LeaderboardRow, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetLeaderboard"
	params := map[string]any{
		"competitionID": competitionID,
		"limit":         limit,
	}
	query := `
		SELECT p.portfolio_id, p.name, u.username, p.total_value, p.total_return_percent
		FROM portfolios p
		JOIN users u USING(user_id)
		WHERE p.competition_id = $1
		ORDER BY p.total_return_percent DESC
		LIMIT $2
		`

	slog.Debug("GetLeaderboard start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query), slog.Any("params", params))
	defer func() {
		if err != nil {
			slog.Error("GetLeaderboard failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetLeaderboard completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	sqlRows, err := r.txOrDb(ctx).QueryxContext(ctx, query, competitionID, limit)
	if err != nil {
		return nil, err
	}

	defer sqlRows.Close()

	rows = make([]model.LeaderboardRow, 0, limit)
	for sqlRows.Next() {
		var dbRow dbModel.LeaderboardRow
		err = sqlRows.StructScan(&dbRow)
		if err != nil {
			return nil, err
		}
		rows = append(rows, dbConverter.ConvertLeaderboardRow(dbRow))
	}

	return rows, nil
}
