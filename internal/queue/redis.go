package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"basler/crawler/internal/config"
	"basler/crawler/internal/domain/task"
)

const StreamPrefix = "basler:stream:"

type Queue interface {
	AddTask(ctx context.Context, task task.Task) (string, error) // Returns message ID
	CreateGroup(ctx context.Context, stream, group string) error
	EnsureStreamsExist(ctx context.Context) error
}

type RedisQueue struct {
	redisClient  *redis.Client
	streamPrefix string
	groupName    string
	taskTypes    []string
}

func NewRedisQueue(ctx context.Context, redisClient *redis.Client, cfg config.RedisConfig) (*RedisQueue, error) {
	q := &RedisQueue{
		redisClient:  redisClient,
		streamPrefix: StreamPrefix,
		groupName:    cfg.ConsumerGroup,
		taskTypes:    []string{(&task.ProductLinkTask{}).TaskType()},
	}

	// Consumers attach to the group later, so it has to exist before the first XADD
	if err := q.EnsureStreamsExist(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure streams exist: %w", err)
	}

	return q, nil
}

// StreamName is the stream that carries tasks of the given type.
func (q *RedisQueue) StreamName(taskType string) string {
	return q.streamPrefix + taskType
}

func (q *RedisQueue) CreateGroup(ctx context.Context, stream, group string) error {
	err := q.redisClient.XGroupCreateMkStream(ctx, stream, group, "0").Err()
	if err != nil && strings.HasPrefix(err.Error(), "BUSYGROUP") {
		log.Infof("Group %s already exists for stream %s", group, stream)
		return nil
	}
	return err
}

func (q *RedisQueue) AddTask(ctx context.Context, t task.Task) (string, error) {
	taskType := t.TaskType()
	streamName := q.StreamName(taskType)

	values, err := task.StreamValues(t)
	if err != nil {
		return "", fmt.Errorf("failed to serialize task: %w", err)
	}

	messageID, err := q.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: streamName,
		Values: values,
	}).Result()
	if err != nil {
		return "", fmt.Errorf("failed to add task to Redis stream %s: %w", streamName, err)
	}

	log.Debugf("Added task %s to stream %s with message ID: %s", taskType, streamName, messageID)
	return messageID, nil
}

// EnsureStreamsExist creates all required streams and consumer groups upfront
func (q *RedisQueue) EnsureStreamsExist(ctx context.Context) error {
	if q.groupName == "" {
		return errors.New("consumer group name is empty")
	}

	log.Info("🔧 Creating Redis streams and consumer groups...")

	for _, taskType := range q.taskTypes {
		streamName := q.StreamName(taskType)

		if err := q.CreateGroup(ctx, streamName, q.groupName); err != nil {
			return fmt.Errorf("failed to create consumer group for %s: %w", taskType, err)
		}

		log.Infof("✅ Stream %s and consumer group %s ready", streamName, q.groupName)
	}

	return nil
}
