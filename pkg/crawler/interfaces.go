package crawler

import (
	"context"

	"photoarchiver/internal/downloader"
)

// AssetSaver persists the asset behind url under baseName. A nil file with a
// nil error means the fetch failed and the asset was skipped.
type AssetSaver interface {
	Save(ctx context.Context, baseName, url string) (*downloader.StoredFile, error)
}
