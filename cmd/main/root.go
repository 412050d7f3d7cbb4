package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"wildberries/catalog/internal/config"
	"wildberries/catalog/internal/container"
)

// NewRootCmd builds the catalog CLI; without a subcommand it runs the whole pipeline
func NewRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Capture the storefront menu, collect subjects per leaf and export a workbook",
		Long: `catalog captures the main menu of the storefront in a headless browser,
fetches the subject facet of every catalog leaf and writes one workbook sheet
per top-level category.

Without a subcommand all three stages run in order.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withContainer(cmd.Context(), configPath, func(ctx context.Context, app *container.Container) error {
				return app.Run(ctx)
			})
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default ./config.yaml)")

	cmd.AddCommand(newStageCmd(&configPath, "run", "Run menu capture, subject collection and export", func(ctx context.Context, app *container.Container) error {
		return app.Run(ctx)
	}))
	cmd.AddCommand(newStageCmd(&configPath, "menu", "Capture the menu and save it", func(ctx context.Context, app *container.Container) error {
		_, err := app.Service.FetchMenu(ctx)
		return err
	}))
	cmd.AddCommand(newStageCmd(&configPath, "subjects", "Collect subjects for every eligible leaf of the saved menu", func(ctx context.Context, app *container.Container) error {
		result, err := app.Service.CollectSubjects(ctx)
		if result != nil {
			log.Infof("📊 Subjects: %d/%d leaves in %.2f s (%.1f leaves/s)",
				result.Succeeded, result.Total, result.Elapsed.Seconds(), result.LeavesPerSecond())
		}
		return err
	}))
	cmd.AddCommand(newStageCmd(&configPath, "export", "Build the workbook from the saved menu and subjects", func(ctx context.Context, app *container.Container) error {
		_, err := app.Service.MakeWorkbook(ctx)
		return err
	}))

	cmd.AddCommand(newStageCmd(&configPath, "summary", "Show the last crawl summary published to redis", func(ctx context.Context, app *container.Container) error {
		summary, err := app.LastSummary(ctx)
		if err != nil {
			return err
		}
		if summary == nil {
			log.Info("No crawl summary published yet")
			return nil
		}
		log.Infof("📊 Last crawl: %d/%d leaves in %.2f s, finished %s",
			summary.Succeeded, summary.Total, summary.ElapsedSec, summary.FinishedAt.Format("2006-01-02 15:04:05"))
		return nil
	}))

	return cmd
}

func newStageCmd(configPath *string, use, short string, stage func(context.Context, *container.Container) error) *cobra.Command {
	return &cobra.Command{
		Use:          use,
		Short:        short,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withContainer(cmd.Context(), *configPath, stage)
		},
	}
}

func withContainer(ctx context.Context, configPath string, fn func(context.Context, *container.Container) error) error {
	// Load configuration using viper
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// Initialize container with all dependencies
	app, err := container.New(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	return fn(ctx, app)
}

// Execute runs the root command until it finishes or the process is interrupted
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		log.Errorf("❌ %v", err)
		stop()
		os.Exit(1)
	}

	log.Info("Application finished successfully")
}
