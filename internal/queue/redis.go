package queue

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"wildberries/catalog/internal/config"
	"wildberries/catalog/internal/domain/task"
)

const streamPrefix = "catalog:stream:"

type Queue interface {
	AddTask(ctx context.Context, task task.Task) (string, error) // Returns message ID
	ReadTasks(ctx context.Context, taskType string, count int64) ([]Message, error)
}

// Message is a decoded stream entry
type Message struct {
	ID   string
	Task task.Task
}

type RedisQueue struct {
	redisClient  *redis.Client
	streamPrefix string
	maxLen       int64
}

func NewRedisQueue(redisClient *redis.Client, cfg config.RedisConfig) *RedisQueue {
	return &RedisQueue{
		redisClient:  redisClient,
		streamPrefix: streamPrefix,
		maxLen:       cfg.MaxLen,
	}
}

// StreamName returns the stream a task type is published to
func StreamName(taskType string) string {
	return streamPrefix + taskType
}

func (q *RedisQueue) AddTask(ctx context.Context, task task.Task) (string, error) {
	// Get task type to determine stream name
	taskType := task.TaskType()
	streamName := q.streamPrefix + taskType

	taskValue, err := task.TaskValue()
	if err != nil {
		return "", fmt.Errorf("failed to serialize task: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: streamName,
		Values: map[string]interface{}{
			"task_type": taskType,
			"task_data": string(taskValue),
		},
	}
	if q.maxLen > 0 {
		args.MaxLen = q.maxLen
		args.Approx = true
	}

	messageID, err := q.redisClient.XAdd(ctx, args).Result()
	if err != nil {
		return "", fmt.Errorf("failed to add task to Redis stream %s: %w", streamName, err)
	}

	log.Debugf("Added task %s to stream %s with message ID: %s", taskType, streamName, messageID)
	return messageID, nil
}

// ReadTasks returns up to count of the oldest entries of a task stream; count <= 0 reads all
func (q *RedisQueue) ReadTasks(ctx context.Context, taskType string, count int64) ([]Message, error) {
	streamName := q.streamPrefix + taskType

	var (
		entries []redis.XMessage
		err     error
	)
	if count > 0 {
		entries, err = q.redisClient.XRangeN(ctx, streamName, "-", "+", count).Result()
	} else {
		entries, err = q.redisClient.XRange(ctx, streamName, "-", "+").Result()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read from Redis stream %s: %w", streamName, err)
	}

	messages := make([]Message, 0, len(entries))
	for _, entry := range entries {
		t, err := decodeMessage(entry)
		if err != nil {
			log.Warnf("⚠️ Skipping entry %s in %s: %v", entry.ID, streamName, err)
			continue
		}
		messages = append(messages, Message{ID: entry.ID, Task: t})
	}

	return messages, nil
}

func decodeMessage(entry redis.XMessage) (task.Task, error) {
	taskType, ok := entry.Values["task_type"].(string)
	if !ok {
		return nil, fmt.Errorf("missing task_type")
	}
	data, ok := entry.Values["task_data"].(string)
	if !ok {
		return nil, fmt.Errorf("missing task_data")
	}

	return task.Decode(taskType, []byte(data))
}

// Len reports how many entries a task stream holds
func (q *RedisQueue) Len(ctx context.Context, taskType string) (int64, error) {
	return q.redisClient.XLen(ctx, q.streamPrefix+taskType).Result()
}

func (q *RedisQueue) Close() error {
	if q.redisClient != nil {
		return q.redisClient.Close()
	}
	return nil
}
