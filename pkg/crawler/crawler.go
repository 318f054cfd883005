package crawler

import (
	"context"
	"fmt"

	"github.com/spf13/afero"

	"photoarchiver/internal/downloader"
	"photoarchiver/pkg/config"
	"photoarchiver/pkg/errors"
	"photoarchiver/pkg/extractor"
	"photoarchiver/pkg/logger"
	"photoarchiver/pkg/navigator"
	"photoarchiver/pkg/ratelimit"
	"photoarchiver/pkg/storage"
)

// AssetMetadata is what a detail page yields
type AssetMetadata struct {
	Title     string
	DateLabel string
	AssetURL  string
}

// BaseName is the file name stem the asset is stored under
func (m AssetMetadata) BaseName() string {
	return m.Title + "-" + m.DateLabel
}

// Report summarizes a finished run
type Report struct {
	Listings int
	Details  int
	Saved    int
	Skipped  int
	Failed   int
	Files    []downloader.StoredFile
}

type selectors struct {
	listingItem navigator.Selector
	title       navigator.Selector
	date        navigator.Selector
	asset       navigator.Selector
}

// Crawler walks listing pages, follows their detail links and archives the
// asset of every detail page
type Crawler struct {
	nav       *navigator.Navigator
	extractor *extractor.Extractor
	saver     AssetSaver
	baseURLs  []string
	pageSize  int
	selectors selectors
	logger    logger.Logger
}

// New creates a Crawler from its parts. Base URLs, page size and selectors
// come from cfg.
func New(cfg *config.Config, nav *navigator.Navigator, ex *extractor.Extractor, saver AssetSaver, log logger.Logger) *Crawler {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Crawler{
		nav:       nav,
		extractor: ex,
		saver:     saver,
		baseURLs:  cfg.Crawl.BaseURLs,
		pageSize:  cfg.Crawl.PageSize,
		selectors: selectors{
			listingItem: navigator.SelectorFrom(cfg.Selectors.ListingItem),
			title:       navigator.SelectorFrom(cfg.Selectors.Title),
			date:        navigator.SelectorFrom(cfg.Selectors.Date),
			asset:       navigator.SelectorFrom(cfg.Selectors.Asset),
		},
		logger: log.WithField("component", "crawler"),
	}
}

// NewFromConfig wires a Crawler with a browser session of the configured
// engine, the fixed pacing delay and storage under the configured folder.
func NewFromConfig(cfg *config.Config, log logger.Logger) (*Crawler, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	root, err := cfg.StorageRoot()
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeConfig, "invalid storage folder", err)
	}
	storageManager := storage.NewManager(afero.NewOsFs(), root)

	nav := navigator.New(
		navigator.NewFactory(cfg.Browser, cfg.Download.Timeout),
		ratelimit.NewFixedDelay(cfg.Crawl.PacingDelay),
		log,
	)
	ex := extractor.New(cfg.Crawl.PageSize, cfg.Crawl.URLScheme, log)
	dl := downloader.New(storageManager, cfg.Download.Timeout, cfg.Browser.UserAgent, log)

	return New(cfg, nav, ex, dl, log), nil
}

// Run visits every base URL once and every detail page linked from its first
// page. Failures confined to one page are logged and counted; only a session
// that cannot be acquired or a cancelled context end the run early.
func (c *Crawler) Run(ctx context.Context) (*Report, error) {
	report := &Report{}

	c.logger.InfoWithFields("Starting crawl", map[string]interface{}{
		"base_urls": c.baseURLs,
		"page_size": c.pageSize,
	})

	err := c.nav.Open(ctx, func(nav *navigator.Navigator) error {
		for _, base := range c.baseURLs {
			if err := ctx.Err(); err != nil {
				return err
			}

			links, err := c.crawlListing(ctx, base)
			if err != nil {
				return err
			}
			report.Listings++

			for _, link := range links {
				if err := ctx.Err(); err != nil {
					return err
				}
				report.Details++
				if err := c.crawlDetail(ctx, link.Href, report); err != nil {
					return err
				}
			}
		}
		return nil
	})

	c.logger.InfoWithFields("Crawl finished", map[string]interface{}{
		"listings": report.Listings,
		"details":  report.Details,
		"saved":    report.Saved,
		"skipped":  report.Skipped,
		"failed":   report.Failed,
	})

	return report, err
}

func (c *Crawler) crawlListing(ctx context.Context, base string) ([]extractor.LinkRecord, error) {
	if err := c.nav.Visit(ctx, base); err != nil {
		return nil, err
	}

	items, err := c.nav.FindAll(ctx, c.selectors.listingItem)
	if err != nil {
		if isItemLocal(err) {
			c.logger.WithError(err).WithField("url", base).Warn("Failed to read listing page")
			return nil, nil
		}
		return nil, err
	}

	links := c.extractor.ExtractLinks(items, c.pageSize, base)
	c.logger.InfoWithFields("Listing page processed", map[string]interface{}{
		"url":   base,
		"items": len(items),
		"links": len(links),
	})
	return links, nil
}

// crawlDetail is the failure boundary for a single detail page
func (c *Crawler) crawlDetail(ctx context.Context, url string, report *Report) error {
	if err := c.nav.Visit(ctx, url); err != nil {
		return err
	}

	meta, err := c.extractMetadata(ctx, url)
	if err != nil {
		if !isItemLocal(err) {
			return err
		}
		c.logger.WithError(err).WithField("url", url).Warn("Skipping detail page")
		report.Skipped++
		return nil
	}

	if meta.AssetURL == "" {
		c.logger.WithField("url", url).Warn("Detail page has no asset URL")
		report.Skipped++
		return nil
	}

	stored, err := c.saver.Save(ctx, meta.BaseName(), meta.AssetURL)
	switch {
	case err != nil:
		c.logger.WithError(err).WithField("url", url).Error("Failed to archive asset")
		report.Failed++
	case stored == nil:
		report.Failed++
	default:
		report.Saved++
		report.Files = append(report.Files, *stored)
	}
	return nil
}

func (c *Crawler) extractMetadata(ctx context.Context, url string) (*AssetMetadata, error) {
	title, err := c.findText(ctx, c.selectors.title)
	if err != nil {
		return nil, fmt.Errorf("title: %w", err)
	}

	date, err := c.findText(ctx, c.selectors.date)
	if err != nil {
		return nil, fmt.Errorf("date: %w", err)
	}

	asset, err := c.nav.FindOne(ctx, c.selectors.asset)
	if err != nil {
		return nil, fmt.Errorf("asset: %w", err)
	}
	assetURL, _ := c.extractor.ExtractAssetURL(asset, url)

	meta := &AssetMetadata{Title: title, DateLabel: date, AssetURL: assetURL}
	c.logger.DebugWithFields("Extracted asset metadata", map[string]interface{}{
		"url":       url,
		"title":     meta.Title,
		"date":      meta.DateLabel,
		"asset_url": meta.AssetURL,
	})
	return meta, nil
}

func (c *Crawler) findText(ctx context.Context, sel navigator.Selector) (string, error) {
	el, err := c.nav.FindOne(ctx, sel)
	if err != nil {
		return "", err
	}
	return c.extractor.ExtractText(el)
}

// isItemLocal reports whether err only concerns the page being processed.
// Errors without a type, such as a backend query failure, are treated as
// local too.
func isItemLocal(err error) bool {
	t := errors.TypeOf(err)
	return t == errors.ErrorTypeUnknown || errors.IsItemLocal(t)
}
