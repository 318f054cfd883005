package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"photoarchiver/pkg/config"
	"photoarchiver/pkg/crawler"
	"photoarchiver/pkg/logger"
	"photoarchiver/pkg/ui"
)

func runCrawl(cmd *cobra.Command, args []string) error {
	ui.PrintLogo()

	cfg, err := config.Load(configFile, flagOverrides(cmd))
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		return err
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintError("Failed to initialize logger", err.Error())
		return err
	}
	log := logger.GetLogger()
	log.WithField("version", version).Info("photoarchiver starting")

	root, err := cfg.StorageRoot()
	if err != nil {
		ui.PrintError("Failed to resolve storage folder", err.Error())
		return err
	}
	ui.PrintInfo("Listing pages", strings.Join(cfg.Crawl.BaseURLs, ", "))
	ui.PrintInfo("Storage folder", root)
	ui.PrintInfo("Browser engine", cfg.Browser.Engine)

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := crawler.NewFromConfig(cfg, log)
	if err != nil {
		ui.PrintError("Failed to initialize crawler", err.Error())
		return err
	}

	ui.PrintHighlight("[INITIATING ARCHIVE RUN]")
	report, err := c.Run(ctx)
	ui.PrintSummary(report)

	switch {
	case errors.Is(err, context.Canceled):
		log.Warn("Crawl interrupted")
		ui.PrintWarning("[ARCHIVE RUN INTERRUPTED]")
		return nil
	case err != nil:
		log.WithError(err).Error("Crawl aborted")
		ui.PrintError("ARCHIVE RUN FAILED", err.Error())
		return err
	}

	ui.PrintSuccess("[ARCHIVE RUN COMPLETED]")
	return nil
}
