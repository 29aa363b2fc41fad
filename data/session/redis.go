package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/tickerduel/stockpick_backend/config"
	"github.com/tickerduel/stockpick_backend/internal/model"
	"github.com/tickerduel/stockpick_backend/utils"
)

type RedisSession struct {
	redis *redis.Client
	cfg   *config.Config
}

func NewRedisSession(redisClient *redis.Client, cfg *config.Config) *RedisSession {
	return &RedisSession{redis: redisClient, cfg: cfg}
}

func sessionKey(token string) string {
	return fmt.Sprintf("session:%s", token)
}

func (r *RedisSession) SetSession(ctx context.Context, token string, session model.Session) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("SetSession start", slog.String("rqID", rqID))

	sessionJson, err := json.Marshal(session)
	if err != nil {
		slog.Error("can't marshall session in SetSession", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return errors.New("can't marshall session")
	}

	_, err = r.redis.Set(ctx, sessionKey(token), sessionJson, r.cfg.SessionExpiration).Result()
	if err != nil {
		slog.Error("failed on redis.Set", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("SetSession completed", slog.String("rqID", rqID))

	return nil
}

func (r *RedisSession) GetSession(ctx context.Context, token string) (model.Session, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("GetSession start", slog.String("rqID", rqID))

	res, err := r.redis.Get(ctx, sessionKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.Session{}, ErrNotFound
		}
		slog.Error("failed on redis.Get", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return model.Session{}, err
	}

	session := model.Session{}
	err = json.Unmarshal([]byte(res), &session)
	if err != nil {
		slog.Error("can't unmarshall session in GetSession", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return model.Session{}, errors.New("can't unmarshall session")
	}

	slog.Debug("GetSession finished", slog.String("rqID", rqID))

	return session, nil
}

func (r *RedisSession) DeleteSession(ctx context.Context, token string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("DeleteSession start", slog.String("rqID", rqID))

	_, err := r.redis.Del(ctx, sessionKey(token)).Result()
	if err != nil {
		slog.Error("failed on redis.Del", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("DeleteSession completed", slog.String("rqID", rqID))

	return nil
}
