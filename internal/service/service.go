package service

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"wildberries/catalog/internal/capture"
	"wildberries/catalog/internal/catalog"
	"wildberries/catalog/internal/config"
	"wildberries/catalog/internal/domain"
	"wildberries/catalog/internal/export"
	"wildberries/catalog/internal/storage"
)

// MenuSource captures the site main menu
type MenuSource interface {
	Capture(ctx context.Context) (*capture.Menu, error)
}

// SubjectCollector fetches subjects for a set of leaves
type SubjectCollector interface {
	CollectSubjects(ctx context.Context, leaves []domain.LeafDescriptor) *domain.CrawlResult
}

type Service struct {
	menu      MenuSource
	collector SubjectCollector
	sinks     []Sink
	baseURL   string
	output    config.OutputConfig
	layout    export.Layout
}

func NewService(
	menu MenuSource,
	collector SubjectCollector,
	sinks []Sink,
	baseURL string,
	output config.OutputConfig,
	layout export.Layout,
) *Service {
	return &Service{
		menu:      menu,
		collector: collector,
		sinks:     sinks,
		baseURL:   baseURL,
		output:    output,
		layout:    layout,
	}
}

// Report is the timing summary of RunAll
type Report struct {
	MenuElapsed     time.Duration
	SubjectsElapsed time.Duration
	WorkbookElapsed time.Duration
	Total           time.Duration
	Leaves          int
	Succeeded       int
	Sheets          int
}

// FetchMenu captures the menu and stores it as the menu document
func (s *Service) FetchMenu(ctx context.Context) ([]domain.CatalogNode, error) {
	menu, err := s.menu.Capture(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to capture menu: %w", err)
	}

	if err := storage.WriteMenu(s.output.MenuFile, menu.Raw); err != nil {
		return nil, err
	}

	log.Infof("💾 Menu saved to %s (%d roots)", s.output.MenuFile, len(menu.Nodes))
	return menu.Nodes, nil
}

// CollectSubjects crawls every eligible leaf of the stored menu, stores the
// records and hands the result to the configured sinks
func (s *Service) CollectSubjects(ctx context.Context) (*domain.CrawlResult, error) {
	forest, err := storage.LoadMenu(s.output.MenuFile)
	if err != nil {
		return nil, err
	}

	leaves := catalog.SelectEligibleLeaves(forest, s.baseURL)
	log.Infof("🍃 %d eligible leaves in %s", len(leaves), s.output.MenuFile)

	result := s.collector.CollectSubjects(ctx, leaves)

	if err := storage.WriteLeafRecords(s.output.SubjectsFile, result.Records); err != nil {
		return nil, err
	}
	log.Infof("💾 Subjects saved to %s", s.output.SubjectsFile)

	if err := s.publish(ctx, result); err != nil {
		return result, err
	}

	return result, nil
}

func (s *Service) publish(ctx context.Context, result *domain.CrawlResult) error {
	if len(s.sinks) == 0 {
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, sink := range s.sinks {
		g.Go(func() error {
			if err := sink.Consume(ctx, result); err != nil {
				log.Errorf("❌ Sink %s failed: %v", sink.Name(), err)
				return fmt.Errorf("sink %s: %w", sink.Name(), err)
			}
			log.Infof("✅ Sink %s received %d records", sink.Name(), len(result.Records))
			return nil
		})
	}

	return g.Wait()
}

// MakeWorkbook builds the workbook from the stored menu and records.
// It returns the number of sheets written.
func (s *Service) MakeWorkbook(ctx context.Context) (int, error) {
	forest, err := storage.LoadMenu(s.output.MenuFile)
	if err != nil {
		return 0, err
	}

	records, err := storage.LoadLeafRecords(s.output.SubjectsFile)
	if err != nil {
		return 0, err
	}

	total, ok := storage.LeafStats(records)
	log.Infof("📊 Building workbook from %d/%d successful leaves", ok, total)

	sheets := catalog.BuildSheets(forest, records)
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if err := export.WriteWorkbook(s.output.Workbook, sheets, s.layout); err != nil {
		return 0, err
	}

	log.Infof("💾 Workbook saved to %s (%d sheets)", s.output.Workbook, len(sheets))
	return len(sheets), nil
}

// RunAll runs menu capture, subject collection and the workbook in order.
// A failed stage stops the run; later artifacts are not written.
func (s *Service) RunAll(ctx context.Context) (*Report, error) {
	report := &Report{}
	start := time.Now()

	t0 := time.Now()
	if _, err := s.FetchMenu(ctx); err != nil {
		return nil, err
	}
	report.MenuElapsed = time.Since(t0)
	log.Infof("[01] Menu: %.2f s → %s", report.MenuElapsed.Seconds(), s.output.MenuFile)

	t0 = time.Now()
	result, err := s.CollectSubjects(ctx)
	if err != nil {
		return nil, err
	}
	report.SubjectsElapsed = time.Since(t0)
	report.Leaves, report.Succeeded = result.Total, result.Succeeded

	speed := 0.0
	if secs := report.SubjectsElapsed.Seconds(); secs > 0 {
		speed = float64(result.Total) / secs
	}
	log.Infof("[02] Subjects: %d/%d leaves in %.2f s (%.1f leaves/s) → %s",
		result.Succeeded, result.Total, report.SubjectsElapsed.Seconds(), speed, s.output.SubjectsFile)

	t0 = time.Now()
	sheets, err := s.MakeWorkbook(ctx)
	if err != nil {
		return nil, err
	}
	report.Sheets = sheets
	report.WorkbookElapsed = time.Since(t0)
	log.Infof("[03] Workbook: %.2f s → %s", report.WorkbookElapsed.Seconds(), s.output.Workbook)

	report.Total = time.Since(start)
	log.Infof("🏁 Total: %.2f s", report.Total.Seconds())

	return report, nil
}
