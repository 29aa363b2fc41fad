package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/tickerduel/stockpick_backend/data/repository"
	"github.com/tickerduel/stockpick_backend/internal/converter/dbConverter"
	"github.com/tickerduel/stockpick_backend/internal/model"
	"github.com/tickerduel/stockpick_backend/internal/model/dbModel"
	"github.com/tickerduel/stockpick_backend/utils"
)

func (r *Postgres) InsertUser(ctx context.Context, email, username, passwordHash, verificationToken string) (userID int64, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		INSERT INTO users(email, username, password_hash, verification_token)
		VALUES($1, $2, $3, $4)
		RETURNING user_id
		`

	slog.Debug("InsertUser start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("InsertUser failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("InsertUser completed", slog.String("rqID", rqID))
		}
	}()

	err = r.txOrDb(ctx).QueryRowContext(ctx, query, email, username, passwordHash, verificationToken).Scan(&userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation
				return 0, repository.ErrAlreadyExists
			}
		}
		return 0, err
	}

	return userID, nil
}

func (r *Postgres) GetUser(ctx context.Context, userID int64) (user model.User, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		SELECT user_id, email, username, password_hash, is_verified, verification_token
		FROM users
		WHERE user_id = $1
		`

	slog.Debug("GetUser start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetUser failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetUser completed", slog.String("rqID", rqID))
		}
	}()

	dbUser := dbModel.User{}
	err = r.txOrDb(ctx).QueryRowxContext(ctx, query, userID).StructScan(&dbUser)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, repository.ErrNotFound
		}
		return model.User{}, err
	}

	return dbConverter.ConvertUser(dbUser), nil
}

func (r *Postgres) GetUserByEmail(ctx context.Context, email string) (user model.User, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		SELECT user_id, email, username, password_hash, is_verified, verification_token
		FROM users
		WHERE email = $1
		`

	slog.Debug("GetUserByEmail start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetUserByEmail failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetUserByEmail completed", slog.String("rqID", rqID))
		}
	}()

	dbUser := dbModel.User{}
	err = r.txOrDb(ctx).QueryRowxContext(ctx, query, email).StructScan(&dbUser)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, repository.ErrNotFound
		}
		return model.User{}, err
	}

	return dbConverter.ConvertUser(dbUser), nil
}

// VerifyUserByToken marks the owning user verified and consumes the token.
func (r *Postgres) VerifyUserByToken(ctx context.Context, token string) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		UPDATE users
		SET is_verified = true, verification_token = NULL
		WHERE verification_token = $1
		`

	slog.Debug("VerifyUserByToken start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("VerifyUserByToken failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("VerifyUserByToken completed", slog.String("rqID", rqID))
		}
	}()

	res, err := r.txOrDb(ctx).ExecContext(ctx, query, token)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrNotFound
	}

	return nil
}
