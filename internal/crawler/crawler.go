package crawler

import (
	"context"
	"sort"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"wildberries/catalog/internal/client"
	"wildberries/catalog/internal/domain"
)

const DefaultConcurrency = 24

// Crawler fans leaf fetches out over a shared search client
type Crawler struct {
	client        client.SearchClient
	concurrency   int
	sortRecords   bool
	progressEvery int
	onRecord      func(domain.LeafRecord)
}

// Option configures a Crawler
type Option func(*Crawler)

// WithConcurrency caps the number of fetches in flight; values below 1 are ignored
func WithConcurrency(n int) Option {
	return func(c *Crawler) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithSortedRecords orders the result by leaf id instead of completion order
func WithSortedRecords(sorted bool) Option {
	return func(c *Crawler) {
		c.sortRecords = sorted
	}
}

// WithProgressEvery logs progress after every n completed leaves
func WithProgressEvery(n int) Option {
	return func(c *Crawler) {
		c.progressEvery = n
	}
}

// WithRecordHook is called once per record, in completion order, from the collector goroutine
func WithRecordHook(fn func(domain.LeafRecord)) Option {
	return func(c *Crawler) {
		c.onRecord = fn
	}
}

func New(searchClient client.SearchClient, opts ...Option) *Crawler {
	c := &Crawler{
		client:      searchClient,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CollectSubjects fetches every leaf with at most c.concurrency requests in
// flight. It yields exactly one record per leaf, in completion order unless
// sorting is enabled; completion order differs between runs.
func (c *Crawler) CollectSubjects(ctx context.Context, leaves []domain.LeafDescriptor) *domain.CrawlResult {
	start := time.Now()
	log.Infof("🚀 Collecting subjects for %d leaves (concurrency %d)", len(leaves), c.concurrency)

	recordsCh := make(chan domain.LeafRecord, len(leaves))
	semaphore := make(chan struct{}, c.concurrency)
	wg := &sync.WaitGroup{}

	for _, leaf := range leaves {
		wg.Add(1)

		go func(leaf domain.LeafDescriptor) {
			defer wg.Done()

			select {
			case semaphore <- struct{}{}:
			case <-ctx.Done():
				record := domain.NewLeafRecord(leaf)
				record.Fail(ctx.Err())
				recordsCh <- record
				return
			}
			defer func() { <-semaphore }()

			recordsCh <- FetchLeafRecord(ctx, c.client, leaf)
		}(leaf)
	}

	go func() {
		wg.Wait()
		close(recordsCh)
	}()

	result := &domain.CrawlResult{Records: make([]domain.LeafRecord, 0, len(leaves))}

	for record := range recordsCh {
		result.Records = append(result.Records, record)
		result.Total++
		if record.OK() {
			result.Succeeded++
		} else {
			log.Debugf("Leaf %d (%s) failed: %s", record.LeafID, record.LeafName, *record.Error)
		}

		if c.onRecord != nil {
			c.onRecord(record)
		}

		if c.progressEvery > 0 && result.Total%c.progressEvery == 0 {
			log.Infof("Fetched %d leaves out of %d", result.Total, len(leaves))
		}
	}

	if c.sortRecords {
		sort.SliceStable(result.Records, func(i, j int) bool {
			return result.Records[i].LeafID < result.Records[j].LeafID
		})
	}

	result.Elapsed = time.Since(start)
	log.Infof("✅ Collected subjects: %d/%d ok in %s", result.Succeeded, result.Total, result.Elapsed.Round(time.Millisecond))
	return result
}
