package queue_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wildberries/catalog/internal/config"
	"wildberries/catalog/internal/domain"
	"wildberries/catalog/internal/domain/task"
	"wildberries/catalog/internal/queue"
)

func setupQueue(t *testing.T, maxLen int64) (*miniredis.Miniredis, *queue.RedisQueue) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	q := queue.NewRedisQueue(client, config.RedisConfig{MaxLen: maxLen})
	t.Cleanup(func() { _ = q.Close() })

	return mr, q
}

func TestAddTaskPublishesTypedEntry(t *testing.T) {
	mr, q := setupQueue(t, 0)
	ctx := context.Background()

	record := domain.LeafRecord{
		LeafID:      10,
		LeafName:    "Платья",
		LeafFullURL: "https://www.wildberries.ru/catalog/platya",
		Subjects:    []domain.Subject{{ID: 69, Name: "Платья"}},
	}

	id, err := q.AddTask(ctx, &task.LeafRecordTask{Record: record})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	stream, err := mr.Stream(queue.StreamName("LeafRecordTask"))
	require.NoError(t, err)
	require.Len(t, stream, 1)
	assert.Equal(t, []string{"task_type", "LeafRecordTask", "task_data", mustJSON(t, &task.LeafRecordTask{Record: record})}, sortedValues(stream[0].Values))

	messages, err := q.ReadTasks(ctx, "LeafRecordTask", 0)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, id, messages[0].ID)

	got, ok := messages[0].Task.(*task.LeafRecordTask)
	require.True(t, ok)
	assert.Equal(t, record, got.Record)
}

func TestAddTaskSeparatesStreamsByType(t *testing.T) {
	_, q := setupQueue(t, 0)
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		_, err := q.AddTask(ctx, &task.LeafRecordTask{Record: domain.LeafRecord{LeafID: i, Subjects: []domain.Subject{}}})
		require.NoError(t, err)
	}
	finished := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	_, err := q.AddTask(ctx, &task.CrawlSummaryTask{Total: 3, Succeeded: 2, ElapsedSec: 1.5, FinishedAt: finished})
	require.NoError(t, err)

	n, err := q.Len(ctx, "LeafRecordTask")
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	first, err := q.ReadTasks(ctx, "LeafRecordTask", 2)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.EqualValues(t, 1, first[0].Task.(*task.LeafRecordTask).Record.LeafID)
	assert.EqualValues(t, 2, first[1].Task.(*task.LeafRecordTask).Record.LeafID)

	summaries, err := q.ReadTasks(ctx, "CrawlSummaryTask", 0)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	summary := summaries[0].Task.(*task.CrawlSummaryTask)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Succeeded)
	assert.True(t, finished.Equal(summary.FinishedAt))
}

func TestReadTasksSkipsForeignEntries(t *testing.T) {
	mr, q := setupQueue(t, 0)
	ctx := context.Background()

	_, err := mr.XAdd(queue.StreamName("LeafRecordTask"), "*", []string{"init", "dummy"})
	require.NoError(t, err)
	_, err = q.AddTask(ctx, &task.LeafRecordTask{Record: domain.LeafRecord{LeafID: 1, Subjects: []domain.Subject{}}})
	require.NoError(t, err)

	messages, err := q.ReadTasks(ctx, "LeafRecordTask", 0)
	require.NoError(t, err)
	assert.Len(t, messages, 1)
}

func TestReadTasksEmptyStream(t *testing.T) {
	_, q := setupQueue(t, 0)

	messages, err := q.ReadTasks(context.Background(), "LeafRecordTask", 0)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestAddTaskUnavailable(t *testing.T) {
	mr, q := setupQueue(t, 10)
	mr.Close()

	_, err := q.AddTask(context.Background(), &task.CrawlSummaryTask{Total: 1})
	require.Error(t, err)
}

func mustJSON(t *testing.T, tk task.Task) string {
	t.Helper()
	data, err := tk.TaskValue()
	require.NoError(t, err)
	return string(data)
}

// sortedValues puts task_type first so the comparison does not depend on field order
func sortedValues(values []string) []string {
	out := make([]string, 0, len(values))
	for _, key := range []string{"task_type", "task_data"} {
		for i := 0; i+1 < len(values); i += 2 {
			if values[i] == key {
				out = append(out, values[i], values[i+1])
			}
		}
	}
	return out
}
