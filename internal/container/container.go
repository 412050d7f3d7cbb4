package container

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"wildberries/catalog/internal/cache"
	"wildberries/catalog/internal/capture"
	"wildberries/catalog/internal/client"
	"wildberries/catalog/internal/config"
	"wildberries/catalog/internal/crawler"
	"wildberries/catalog/internal/domain"
	"wildberries/catalog/internal/domain/task"
	"wildberries/catalog/internal/export"
	"wildberries/catalog/internal/proxy"
	"wildberries/catalog/internal/queue"
	"wildberries/catalog/internal/repository"
	"wildberries/catalog/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// ErrQueueDisabled is returned by queue-backed helpers when redis is off
var ErrQueueDisabled = errors.New("redis queue is disabled")

// Container holds all initialized components
type Container struct {
	Config     *config.Config
	Client     client.SearchClient
	Crawler    *crawler.Crawler
	Repository repository.LeafRepository
	Queue      *queue.RedisQueue
	Cache      cache.SubjectCache

	Service *service.Service

	db    *pgxpool.Pool
	redis *redis.Client
}

// New creates a new container with all dependencies initialized.
// Postgres and Redis are connected only when enabled in config.
func New(cfg *config.Config) (*Container, error) {
	if err := ConfigureLogging(cfg.Log); err != nil {
		return nil, err
	}

	container := &Container{
		Config: cfg,
	}
	ctx := context.Background()

	proxySupplier := proxy.NewProxySupplier(ctx, cfg.Search.Proxies, cfg.Search.Host, cfg.Search.RequestTimeout())

	var sinks []service.Sink

	if cfg.Database.Enabled {
		db, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, fmt.Errorf("failed to create database pool: %w", err)
		}
		if err := db.Ping(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		log.Info("✅ Connected to Postgres successfully")

		container.db = db
		container.Repository = repository.NewLeafRepository(db)
		sinks = append(sinks, service.NewRepositorySink(container.Repository))
	}

	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.Database,
		})

		// Test connection
		if _, err := rdb.Ping(ctx).Result(); err != nil {
			container.Close()
			rdb.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		log.Info("✅ Connected to Redis successfully")

		container.redis = rdb
		container.Queue = queue.NewRedisQueue(rdb, cfg.Redis)
		sinks = append(sinks, service.NewQueueSink(container.Queue))

		if err := container.LogStreams(ctx); err != nil {
			log.Warnf("⚠️ %v", err)
		}

		if cfg.Redis.CacheTTL > 0 {
			container.Cache = cache.NewRedisSubjectCache(rdb, time.Duration(cfg.Redis.CacheTTL)*time.Second)
		}
	}

	searchClient := client.NewSearchClient(cfg.Search, cfg.Site.UserAgent, proxySupplier)
	if container.Cache != nil {
		container.Client = client.NewCachedClient(searchClient, container.Cache)
	} else {
		container.Client = searchClient
	}

	container.Crawler = crawler.New(container.Client,
		crawler.WithConcurrency(cfg.Crawl.Concurrency),
		crawler.WithSortedRecords(cfg.Crawl.SortRecords),
		crawler.WithProgressEvery(cfg.Crawl.ProgressEvery),
		crawler.WithRecordHook(logFailedLeaf),
	)

	menuSource := &capture.BrowserCapturer{
		Options: capture.BrowserOptions{
			Headless:          cfg.Capture.Headless,
			UserAgent:         cfg.Site.UserAgent,
			Locale:            cfg.Site.Locale,
			NavigationTimeout: time.Duration(cfg.Capture.NavigationTimeout) * time.Second,
		},
		StartURL: cfg.Site.BaseURL,
		Hints:    cfg.Capture.MenuHints,
		Timeout:  cfg.Capture.WaitTimeout(),
	}

	container.Service = service.NewService(
		menuSource,
		container.Crawler,
		sinks,
		cfg.Site.BaseURL,
		cfg.Output,
		export.Layout{
			SheetSuffix: cfg.Export.SheetSuffix,
			BaseWidth:   cfg.Export.BaseWidth,
			NameWidth:   cfg.Export.NameWidth,
		},
	)

	return container, nil
}

func logFailedLeaf(record domain.LeafRecord) {
	if !record.OK() {
		log.Warnf("⚠️ Leaf %d (%s) failed: %s", record.LeafID, record.LeafName, *record.Error)
	}
}

// ConfigureLogging applies level and format to the global logger
func ConfigureLogging(cfg config.LogConfig) error {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	log.SetLevel(level)

	switch strings.ToLower(cfg.Format) {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	case "", "text":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("unknown log format %q", cfg.Format)
	}
	return nil
}

// LogStreams reports every stream records are published to
func (c *Container) LogStreams(ctx context.Context) error {
	if c.Queue == nil {
		return ErrQueueDisabled
	}

	for _, taskType := range task.Types {
		n, err := c.Queue.Len(ctx, taskType)
		if err != nil {
			return fmt.Errorf("failed to inspect stream %s: %w", queue.StreamName(taskType), err)
		}
		log.Infof("📤 Publishing %s to %s (%d entries)", taskType, queue.StreamName(taskType), n)
	}
	return nil
}

// LastSummary returns the most recent crawl summary published to redis, or nil if there is none
func (c *Container) LastSummary(ctx context.Context) (*task.CrawlSummaryTask, error) {
	if c.Queue == nil {
		return nil, ErrQueueDisabled
	}

	messages, err := c.Queue.ReadTasks(ctx, (&task.CrawlSummaryTask{}).TaskType(), 0)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, nil
	}

	summary, ok := messages[len(messages)-1].Task.(*task.CrawlSummaryTask)
	if !ok {
		return nil, fmt.Errorf("unexpected task %T in summary stream", messages[len(messages)-1].Task)
	}
	return summary, nil
}

// Run executes the whole pipeline
func (c *Container) Run(ctx context.Context) error {
	_, err := c.Service.RunAll(ctx)
	return err
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	log.Debug("Shutting down container...")

	if c.db != nil {
		c.db.Close()
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			return fmt.Errorf("failed to close Redis: %w", err)
		}
	}

	log.Debug("Container shut down successfully")
	return nil
}
