package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"nutricoach-backend/internal/logger"
	"nutricoach-backend/internal/models"
)

// ProfileStore loads a profile by Telegram ID. Implemented by ProfileRepo and
// CachedProfileRepo.
type ProfileStore interface {
	GetByTelegramID(ctx context.Context, telegramID int64) (*models.Profile, error)
}

// cacheStore is the part of *redis.Client the profile cache uses.
type cacheStore interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// CachedProfileRepo is a read-through redis cache in front of a profile
// source. Cache failures fall back to the source; misses are not cached.
type CachedProfileRepo struct {
	source ProfileStore
	cache  cacheStore
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedProfileRepo(source ProfileStore, cache cacheStore, ttl time.Duration, log *slog.Logger) *CachedProfileRepo {
	return &CachedProfileRepo{source: source, cache: cache, ttl: ttl, logger: log}
}

func (r *CachedProfileRepo) GetByTelegramID(ctx context.Context, telegramID int64) (*models.Profile, error) {
	key := profileCacheKey(telegramID)

	data, err := r.cache.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var p models.Profile
		if jsonErr := json.Unmarshal(data, &p); jsonErr == nil {
			return &p, nil
		}
		r.logger.Warn("discarding corrupt cached profile", "telegram_id", telegramID)
	case !errors.Is(err, redis.Nil):
		r.logger.Warn("profile cache read failed", "telegram_id", telegramID, logger.Err(err))
	}

	p, err := r.source.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(p); err == nil {
		if err := r.cache.Set(ctx, key, encoded, r.ttl).Err(); err != nil {
			r.logger.Warn("profile cache write failed", "telegram_id", telegramID, logger.Err(err))
		}
	}

	return p, nil
}

func profileCacheKey(telegramID int64) string {
	return fmt.Sprintf("profile:%d", telegramID)
}
