package competitionService

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/tickerduel/stockpick_backend/data/repository"
	"github.com/tickerduel/stockpick_backend/internal/model"
	"github.com/tickerduel/stockpick_backend/internal/service"
	"github.com/tickerduel/stockpick_backend/utils"
	"golang.org/x/crypto/bcrypt"
)

// RegisterUser creates an unverified account and returns it together with the
// verification token the caller is expected to deliver to the user.
func (s *CompetitionService) RegisterUser(ctx context.Context, email, username, password string) (user model.User, verificationToken string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "CompetitionService.RegisterUser"

	slog.Debug("RegisterUser start", slog.String("rqID", rqID), slog.String("op", op), slog.String("email", email))
	defer func() {
		slog.Debug("RegisterUser finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("email", email))
	}()

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("got error from bcrypt.GenerateFromPassword", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.User{}, "", err
	}

	verificationToken = uuid.NewString()

	userID, err := s.repo.InsertUser(ctx, email, username, string(passwordHash), verificationToken)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return model.User{}, "", service.ErrAlreadyExists
		}
		slog.Error("got error from repo.InsertUser", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.User{}, "", err
	}

	return model.User{
		UserID:   userID,
		Email:    email,
		Username: username,
	}, verificationToken, nil
}

// AuthenticateUser checks email/password and returns the account on success.
func (s *CompetitionService) AuthenticateUser(ctx context.Context, email, password string) (user model.User, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "CompetitionService.AuthenticateUser"

	slog.Debug("AuthenticateUser start", slog.String("rqID", rqID), slog.String("op", op), slog.String("email", email))
	defer func() {
		slog.Debug("AuthenticateUser finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("email", email))
	}()

	user, err = s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, service.ErrInvalidCredentials
		}
		slog.Error("got error from repo.GetUserByEmail", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return model.User{}, service.ErrInvalidCredentials
	}

	return user, nil
}

// VerifyEmail consumes a verification token and marks the account verified.
func (s *CompetitionService) VerifyEmail(ctx context.Context, token string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "CompetitionService.VerifyEmail"

	slog.Debug("VerifyEmail start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("VerifyEmail finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	err := s.repo.VerifyUserByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return service.ErrNotFound
		}
		slog.Error("got error from repo.VerifyUserByToken", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	return nil
}

// GetUser returns an account by id.
func (s *CompetitionService) GetUser(ctx context.Context, userID int64) (model.User, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, service.ErrNotFound
		}
		return model.User{}, err
	}
	return user, nil
}
