package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"photoarchiver/pkg/errors"
	"photoarchiver/pkg/logger"
	"photoarchiver/pkg/storage"
)

// StoredFile describes an asset written to the storage folder
type StoredFile struct {
	Path      string
	SourceURL string
	Size      int64
}

// Downloader fetches assets with a single GET each and streams them to disk
type Downloader struct {
	client    *http.Client
	storage   *storage.Manager
	userAgent string
	logger    logger.Logger
}

// New creates a Downloader writing through storage. A zero timeout leaves
// the client without a deadline.
func New(storageManager *storage.Manager, timeout time.Duration, userAgent string, log logger.Logger) *Downloader {
	return NewWithClient(&http.Client{Timeout: timeout}, storageManager, userAgent, log)
}

// NewWithClient creates a Downloader using the given HTTP client
func NewWithClient(client *http.Client, storageManager *storage.Manager, userAgent string, log logger.Logger) *Downloader {
	if client == nil {
		client = http.DefaultClient
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &Downloader{
		client:    client,
		storage:   storageManager,
		userAgent: userAgent,
		logger:    log.WithField("component", "downloader"),
	}
}

// Fetch opens a streaming GET for url. A transport error or non-2xx status
// is logged and reported as (nil, false); there is no retry.
func (d *Downloader) Fetch(ctx context.Context, url string) (io.ReadCloser, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		d.logFetchFailure(url, errors.Wrap(errors.ErrorTypeDownload, "invalid asset URL", err))
		return nil, false
	}
	if d.userAgent != "" {
		req.Header.Set("User-Agent", d.userAgent)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		d.logFetchFailure(url, errors.Wrap(errors.ErrorTypeDownload, "request failed", err))
		return nil, false
	}

	if !errors.IsSuccessStatusCode(resp.StatusCode) {
		resp.Body.Close()
		d.logFetchFailure(url, errors.WithCode(errors.ErrorTypeDownload,
			fmt.Sprintf("unexpected status %s", resp.Status), resp.StatusCode))
		return nil, false
	}

	return resp.Body, true
}

// Save downloads url into the storage folder as baseName plus the URL's
// extension. A failed fetch is a skip and returns (nil, nil). A failed copy
// returns a persist error and may leave a truncated file behind.
func (d *Downloader) Save(ctx context.Context, baseName, url string) (*StoredFile, error) {
	ext, ok := storage.ExtensionFromURL(url)
	if !ok {
		d.logger.WithFields(map[string]interface{}{
			"source_url": url,
			"extension":  ext,
		}).Warn("Asset URL has no file extension")
	}

	body, ok := d.Fetch(ctx, url)
	if !ok {
		logger.LogDownload(d.logger, url, "", 0, nil)
		return nil, nil
	}
	defer body.Close()

	path, err := d.storage.BuildTargetPath(baseName, ext)
	if err != nil {
		err = errors.Wrap(errors.ErrorTypePersist, "failed to build target path", err)
		logger.LogDownload(d.logger, url, "", 0, err)
		return nil, err
	}

	file, err := d.storage.Create(path)
	if err != nil {
		err = errors.Wrap(errors.ErrorTypePersist, "failed to open target file", err)
		logger.LogDownload(d.logger, url, path, 0, err)
		return nil, err
	}

	size, err := io.Copy(file, body)
	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		err = errors.Wrap(errors.ErrorTypePersist, "failed to write "+path, err)
		logger.LogDownload(d.logger, url, path, size, err)
		return nil, err
	}

	logger.LogDownload(d.logger, url, path, size, nil)
	return &StoredFile{Path: path, SourceURL: url, Size: size}, nil
}

func (d *Downloader) logFetchFailure(url string, err error) {
	d.logger.WithError(err).WithField("source_url", url).Error("Failed to fetch asset")
}
