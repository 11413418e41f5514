package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"basler/crawler/internal/domain"
)

const lastRunKey = "basler:crawl:last_run"

type StateManager interface {
	SaveLastRun(ctx context.Context, summary *domain.CrawlSummary) error
	GetLastRun(ctx context.Context) (*domain.CrawlSummary, error)
}

type RedisStateManager struct {
	redisClient *redis.Client
	key         string
}

func NewRedisStateManager(redisClient *redis.Client) *RedisStateManager {
	return &RedisStateManager{
		redisClient: redisClient,
		key:         lastRunKey,
	}
}

// SaveLastRun replaces the stored summary with the given one.
func (s *RedisStateManager) SaveLastRun(ctx context.Context, summary *domain.CrawlSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to encode crawl summary: %w", err)
	}

	_, err = s.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key)
		pipe.HSet(ctx, s.key,
			"run_id", summary.RunID,
			"finished_at", summary.FinishedAt.Unix(),
			"summary", string(data),
		)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save crawl summary %s: %w", summary.RunID, err)
	}
	return nil
}

// GetLastRun returns nil when no crawl has been recorded yet.
func (s *RedisStateManager) GetLastRun(ctx context.Context) (*domain.CrawlSummary, error) {
	data, err := s.redisClient.HGet(ctx, s.key, "summary").Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get last crawl summary: %w", err)
	}

	var summary domain.CrawlSummary
	if err := json.Unmarshal([]byte(data), &summary); err != nil {
		return nil, fmt.Errorf("failed to decode last crawl summary: %w", err)
	}
	return &summary, nil
}
