package crawler

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photoarchiver/internal/downloader"
	"photoarchiver/pkg/config"
	"photoarchiver/pkg/errors"
	"photoarchiver/pkg/extractor"
	"photoarchiver/pkg/logger"
	"photoarchiver/pkg/navigator"
	"photoarchiver/pkg/ratelimit"
	"photoarchiver/pkg/storage"
)

const storageRoot = "/archive/images"

// mockSite serves a listing page, detail pages and their assets
type mockSite struct {
	server *httptest.Server
	mu     sync.Mutex
	hits   map[string]int
}

func detailPage(title, date, assetSrc string) string {
	page := "<html><body>"
	if title != "" {
		page += fmt.Sprintf(`<div class="info title">%s</div>`, title)
	}
	if date != "" {
		page += fmt.Sprintf(`<span class="tltp-wrap rytltp-wrap">%s</span>`, date)
	}
	if assetSrc != "" {
		page += fmt.Sprintf(`<img class="photoImg" src="%s">`, assetSrc)
	}
	return page + "</body></html>"
}

func newMockSite(t *testing.T) *mockSite {
	t.Helper()
	site := &mockSite{hits: make(map[string]int)}

	pages := map[string]string{
		"/list": `<html><body>
			<a class="photoBox" href="/p/1"></a>
			<a class="photoBox" href="/p/2"></a>
			<div class="photoBox">advert</div>
			<a class="photoBox" href="/p/3"></a>
			<a class="photoBox" href="/p/4"></a>
			<a class="photoBox" href="/p/gone"></a>
			<a class="photoBox" href="/p/5"></a>
		</body></html>`,
		"/p/1": detailPage("Old bridge", "1910", "/img/1.jpg"),
		"/p/2": detailPage("", "1911", "/img/2.jpg"),
		"/p/3": detailPage("Lost photo", "1912", "/img/missing.jpg"),
		"/p/4": detailPage("Old bridge", "1910", "/img/4.jpg"),
		"/p/5": `<html><body><div class="info title">No image</div>` +
			`<span class="tltp-wrap rytltp-wrap">1913</span><img class="photoImg"></body></html>`,
	}
	assets := map[string]string{
		"/img/1.jpg": "bytes-of-1",
		"/img/2.jpg": "bytes-of-2",
		"/img/4.jpg": "bytes-of-4",
	}

	site.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		site.mu.Lock()
		site.hits[r.URL.Path]++
		site.mu.Unlock()

		if page, ok := pages[r.URL.Path]; ok {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(page))
			return
		}
		if asset, ok := assets[r.URL.Path]; ok {
			w.Header().Set("Content-Type", "image/jpeg")
			_, _ = w.Write([]byte(asset))
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(site.server.Close)
	return site
}

func (s *mockSite) url(path string) string {
	return s.server.URL + path
}

func (s *mockSite) hitCount(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

type harness struct {
	crawler *Crawler
	limiter *ratelimit.Recorder
	log     *logger.TestLogger
	fs      afero.Fs
}

func newHarness(t *testing.T, site *mockSite, mutate func(cfg *config.Config)) *harness {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Crawl.BaseURLs = []string{site.url("/list")}
	cfg.Crawl.URLScheme = "http"
	cfg.Browser.Engine = config.EngineHTTP
	if mutate != nil {
		mutate(cfg)
	}

	log := logger.NewTestLogger()
	limiter := &ratelimit.Recorder{}
	fs := afero.NewMemMapFs()

	manager := storage.NewManager(fs, storageRoot)
	manager.SetClock(func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 6, time.UTC) })

	factory := func(ctx context.Context) (navigator.Session, error) {
		return navigator.NewStaticSession(site.server.Client(), cfg.Browser.UserAgent), nil
	}
	nav := navigator.New(factory, limiter, log)
	ex := extractor.New(cfg.Crawl.PageSize, cfg.Crawl.URLScheme, log)
	dl := downloader.NewWithClient(site.server.Client(), manager, cfg.Browser.UserAgent, log)

	return &harness{
		crawler: New(cfg, nav, ex, dl, log),
		limiter: limiter,
		log:     log,
		fs:      fs,
	}
}

func TestRunArchivesListing(t *testing.T) {
	site := newMockSite(t)
	h := newHarness(t, site, nil)

	report, err := h.crawler.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Listings)
	assert.Equal(t, 6, report.Details)
	assert.Equal(t, 2, report.Saved)
	assert.Equal(t, 3, report.Skipped, "missing title, 404 detail page, missing src")
	assert.Equal(t, 1, report.Failed, "asset 404")

	first := filepath.Join(storageRoot, "Old bridge-1910.jpg")
	second := filepath.Join(storageRoot, "Old bridge-1910-20240102T030405.000000006Z.jpg")
	require.Len(t, report.Files, 2)
	assert.Equal(t, first, report.Files[0].Path)
	assert.Equal(t, site.url("/img/1.jpg"), report.Files[0].SourceURL)
	assert.Equal(t, second, report.Files[1].Path)

	content, err := afero.ReadFile(h.fs, first)
	require.NoError(t, err)
	assert.Equal(t, "bytes-of-1", string(content))
	content, err = afero.ReadFile(h.fs, second)
	require.NoError(t, err)
	assert.Equal(t, "bytes-of-4", string(content))

	entries, err := afero.ReadDir(h.fs, storageRoot)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	// one pacing wait per navigation
	assert.Equal(t, 7, h.limiter.Calls())
	for _, path := range []string{"/list", "/p/1", "/p/2", "/p/3", "/p/4", "/p/gone", "/p/5"} {
		assert.Equal(t, 1, site.hitCount(path), path)
	}
	assert.Zero(t, site.hitCount("/img/2.jpg"), "skipped page must not download")
	assert.Equal(t, 1, site.hitCount("/img/missing.jpg"), "single attempt")
}

func TestRunLogsPerItemFailures(t *testing.T) {
	site := newMockSite(t)
	h := newHarness(t, site, nil)

	_, err := h.crawler.Run(context.Background())
	require.NoError(t, err)

	var skippedTypes []errors.ErrorType
	for _, msg := range h.log.GetMessagesByLevel("WARN") {
		if msg.Message == "Skipping detail page" {
			skippedTypes = append(skippedTypes, errors.TypeOf(msg.Error))
		}
	}
	assert.Equal(t, []errors.ErrorType{errors.ErrorTypeElementNotFound, errors.ErrorTypeElementNotFound}, skippedTypes)

	assert.True(t, h.log.HasMessage("Failed to navigate to URL"))
	assert.True(t, h.log.HasMessage("Failed to fetch asset"))
	assert.True(t, h.log.HasMessage("Detail page has no asset URL"))
	assert.True(t, h.log.HasMessage("No asset URL on page"))
}

func TestRunRespectsPageSize(t *testing.T) {
	site := newMockSite(t)
	h := newHarness(t, site, func(cfg *config.Config) {
		cfg.Crawl.PageSize = 3
	})

	report, err := h.crawler.Run(context.Background())
	require.NoError(t, err)

	// the third listing item has no href, so only two links survive
	assert.Equal(t, 2, report.Details)
	assert.Equal(t, 1, report.Saved)
	assert.Equal(t, 1, report.Skipped)
	assert.Zero(t, site.hitCount("/p/3"))
}

func TestRunContinuesAfterUnreachableListing(t *testing.T) {
	site := newMockSite(t)
	h := newHarness(t, site, func(cfg *config.Config) {
		cfg.Crawl.BaseURLs = []string{"http://127.0.0.1:1/list", site.url("/list")}
	})

	report, err := h.crawler.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Listings)
	assert.Equal(t, 6, report.Details)
	assert.Equal(t, 2, report.Saved)
	assert.Equal(t, 8, h.limiter.Calls())
}

func TestRunSessionFailureIsFatal(t *testing.T) {
	cfg := config.DefaultConfig()
	log := logger.NewTestLogger()
	factory := func(ctx context.Context) (navigator.Session, error) {
		return nil, stderrors.New("chromium not found")
	}
	nav := navigator.New(factory, &ratelimit.Recorder{}, log)
	saver := &recordingSaver{}
	c := New(cfg, nav, extractor.New(0, "", log), saver, log)

	report, err := c.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrorTypeNotInitialized))
	require.NotNil(t, report)
	assert.Zero(t, report.Listings)
	assert.Empty(t, saver.calls)
}

func TestRunStopsOnCancel(t *testing.T) {
	site := newMockSite(t)
	h := newHarness(t, site, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := h.crawler.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, report.Details)
	assert.Zero(t, site.hitCount("/list"))
}

type recordingSaver struct {
	calls []string
	err   error
}

func (s *recordingSaver) Save(ctx context.Context, baseName, url string) (*downloader.StoredFile, error) {
	s.calls = append(s.calls, baseName+" <- "+url)
	if s.err != nil {
		return nil, s.err
	}
	return &downloader.StoredFile{Path: baseName, SourceURL: url}, nil
}

func TestRunPersistFailureDoesNotAbort(t *testing.T) {
	site := newMockSite(t)
	cfg := config.DefaultConfig()
	cfg.Crawl.BaseURLs = []string{site.url("/list")}
	cfg.Crawl.URLScheme = "http"

	log := logger.NewTestLogger()
	factory := func(ctx context.Context) (navigator.Session, error) {
		return navigator.NewStaticSession(site.server.Client(), ""), nil
	}
	saver := &recordingSaver{err: errors.New(errors.ErrorTypePersist, "disk full")}
	c := New(cfg, navigator.New(factory, &ratelimit.Recorder{}, log), extractor.New(0, "http", log), saver, log)

	report, err := c.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, report.Failed)
	assert.Zero(t, report.Saved)
	assert.Equal(t, []string{
		"Old bridge-1910 <- " + site.url("/img/1.jpg"),
		"Lost photo-1912 <- " + site.url("/img/missing.jpg"),
		"Old bridge-1910 <- " + site.url("/img/4.jpg"),
	}, saver.calls)
}

func TestAssetMetadataBaseName(t *testing.T) {
	meta := AssetMetadata{Title: "Old bridge", DateLabel: "1910"}
	assert.Equal(t, "Old bridge-1910", meta.BaseName())
}
