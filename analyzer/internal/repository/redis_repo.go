package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Krimson/ctg-contractions/analyzer/pkg/models"
)

// RedisRepository кеширует загруженные записи до решения о сохранении
type RedisRepository struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

func NewRedisRepository(addr, password string, db int, ttl time.Duration, logger zerolog.Logger) *RedisRepository {
	return &RedisRepository{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		ttl:    ttl,
		logger: logger.With().Str("component", "redis").Logger(),
	}
}

func recordingKey(recordingID string) string {
	return "recording:" + recordingID
}

func (r *RedisRepository) SaveRecording(ctx context.Context, recording *models.Recording) error {
	data, err := json.Marshal(recording)
	if err != nil {
		return fmt.Errorf("failed to marshal recording: %w", err)
	}

	if err := r.client.Set(ctx, recordingKey(recording.RecordingID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save recording to Redis: %w", err)
	}

	r.logger.Debug().
		Str("recording_id", recording.RecordingID).
		Int("samples", len(recording.Samples)).
		Dur("ttl", r.ttl).
		Msg("recording cached")
	return nil
}

func (r *RedisRepository) GetRecording(ctx context.Context, recordingID string) (*models.Recording, error) {
	data, err := r.client.Get(ctx, recordingKey(recordingID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", models.ErrRecordingNotFound, recordingID)
		}
		return nil, fmt.Errorf("failed to get recording from Redis: %w", err)
	}

	var recording models.Recording
	if err := json.Unmarshal(data, &recording); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recording: %w", err)
	}

	return &recording, nil
}

func (r *RedisRepository) DeleteRecording(ctx context.Context, recordingID string) error {
	deleted, err := r.client.Del(ctx, recordingKey(recordingID)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete recording from Redis: %w", err)
	}
	if deleted == 0 {
		return fmt.Errorf("%w: %s", models.ErrRecordingNotFound, recordingID)
	}

	r.logger.Debug().Str("recording_id", recordingID).Msg("recording deleted from cache")
	return nil
}

// CheckConnection проверяет доступность Redis
func (r *RedisRepository) CheckConnection(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// GetStats возвращает статистику пула соединений
func (r *RedisRepository) GetStats() map[string]interface{} {
	stats := r.client.PoolStats()
	return map[string]interface{}{
		"hits":        stats.Hits,
		"misses":      stats.Misses,
		"timeouts":    stats.Timeouts,
		"total_conns": stats.TotalConns,
		"idle_conns":  stats.IdleConns,
		"ttl":         r.ttl.String(),
	}
}

func (r *RedisRepository) Close() error {
	return r.client.Close()
}
