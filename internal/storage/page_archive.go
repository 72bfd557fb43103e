package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

const htmlContentType = "text/html; charset=utf-8"

// ObjectWriter is the subset of S3Client the page archive writes through
type ObjectWriter interface {
	PutObject(ctx context.Context, key, contentType string, body []byte, metadata map[string]string) error
}

// SourceURLMetadataKey names the user metadata entry holding the page URL
const SourceURLMetadataKey = "source-url"

// PageArchive stores raw retailer pages the scraper could not parse so
// selectors can be fixed against real markup later.
type PageArchive struct {
	store ObjectWriter
	now   func() time.Time
}

func NewPageArchive(store ObjectWriter) *PageArchive {
	return &PageArchive{store: store, now: func() time.Time { return time.Now().UTC() }}
}

// Archive writes body under pages/<yyyy>/<mm>/<dd>/<sha256(url)>.html
func (a *PageArchive) Archive(ctx context.Context, pageURL string, body []byte) error {
	key := PageKey(pageURL, a.now())
	meta := map[string]string{SourceURLMetadataKey: pageURL}
	if err := a.store.PutObject(ctx, key, htmlContentType, body, meta); err != nil {
		return fmt.Errorf("archive %s: %w", pageURL, err)
	}
	return nil
}

// PageKey returns the object key for a page fetched at t
func PageKey(pageURL string, t time.Time) string {
	sum := sha256.Sum256([]byte(pageURL))
	return fmt.Sprintf("pages/%s/%s.html", t.UTC().Format("2006/01/02"), hex.EncodeToString(sum[:]))
}
