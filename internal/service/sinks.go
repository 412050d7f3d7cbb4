package service

import (
	"context"
	"fmt"
	"time"

	"wildberries/catalog/internal/domain"
	"wildberries/catalog/internal/domain/task"
	"wildberries/catalog/internal/queue"
	"wildberries/catalog/internal/repository"
)

// Sink receives the result of a finished crawl
type Sink interface {
	Name() string
	Consume(ctx context.Context, result *domain.CrawlResult) error
}

type repositorySink struct {
	repo repository.LeafRepository
}

// NewRepositorySink upserts records into the leaf_subjects table
func NewRepositorySink(repo repository.LeafRepository) Sink {
	return &repositorySink{repo: repo}
}

func (s *repositorySink) Name() string { return "postgres" }

func (s *repositorySink) Consume(ctx context.Context, result *domain.CrawlResult) error {
	if err := s.repo.EnsureSchema(ctx); err != nil {
		return err
	}
	return s.repo.SaveLeafRecords(ctx, result.Records)
}

type queueSink struct {
	queue queue.Queue
	now   func() time.Time
}

// NewQueueSink publishes one LeafRecordTask per record followed by a CrawlSummaryTask
func NewQueueSink(q queue.Queue) Sink {
	return &queueSink{queue: q, now: time.Now}
}

func (s *queueSink) Name() string { return "redis" }

func (s *queueSink) Consume(ctx context.Context, result *domain.CrawlResult) error {
	for _, record := range result.Records {
		if _, err := s.queue.AddTask(ctx, &task.LeafRecordTask{Record: record}); err != nil {
			return fmt.Errorf("failed to publish leaf %d: %w", record.LeafID, err)
		}
	}

	summary := &task.CrawlSummaryTask{
		Total:      result.Total,
		Succeeded:  result.Succeeded,
		ElapsedSec: result.Elapsed.Seconds(),
		FinishedAt: s.now().UTC(),
	}
	if _, err := s.queue.AddTask(ctx, summary); err != nil {
		return fmt.Errorf("failed to publish crawl summary: %w", err)
	}
	return nil
}
