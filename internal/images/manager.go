// Package images moves product imagery between platforms: download from the
// source CDN to a local cache, then upload into the target media library,
// reusing existing attachments wherever possible.
package images

import (
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/nokel/shopify-migration-tool/internal/common"
	"github.com/nokel/shopify-migration-tool/internal/httpc"
	"github.com/nokel/shopify-migration-tool/internal/woocommerce"
	"github.com/nokel/shopify-migration-tool/internal/wordpress"
)

// MediaClient is the slice of the CMS client the pipeline needs.
type MediaClient interface {
	SearchMedia(ctx context.Context, stem string) ([]wordpress.Media, error)
	UploadMedia(ctx context.Context, filename, mimeType string, data []byte, altText, title string) (*wordpress.Media, error)
}

// Manager downloads source images into a local cache directory and uploads
// them to the target media library. Local files are keyed by sanitized
// product name plus index, so re-runs reuse earlier downloads.
type Manager struct {
	dir      string
	media    MediaClient
	download *resty.Client
	logger   *common.Logger

	// Cancelled, when set, is polled before each download and upload.
	Cancelled func() bool
}

// NewManager creates the cache directory if needed.
func NewManager(dir string, media MediaClient, tlsConfig *tls.Config) (*Manager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create image cache dir: %w", err)
	}
	h := httpc.Httpc{TlsConfig: tlsConfig, Timeout: httpc.DefaultMediaTimeout}
	return &Manager{
		dir:      dir,
		media:    media,
		download: h.New(),
		logger:   common.GetLogger().WithComponent("images"),
	}, nil
}

func (m *Manager) cancelled() bool {
	return m.Cancelled != nil && m.Cancelled()
}

// sanitizeName reduces a product name to a filesystem-safe stem.
func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	s := strings.TrimSpace(b.String())
	s = strings.ReplaceAll(s, " ", "_")
	if len(s) > 50 {
		s = s[:50]
	}
	return s
}

// localFilename derives the cache filename for one product image.
func localFilename(imageURL, productName string, index int) string {
	ext := ".jpg"
	if u, err := url.Parse(imageURL); err == nil {
		if e := path.Ext(u.Path); e != "" {
			ext = e
		}
	}
	return fmt.Sprintf("%s_%d%s", sanitizeName(productName), index, ext)
}

// Download fetches one image into the cache, reusing an existing file when
// present. Returns the local path.
func (m *Manager) Download(ctx context.Context, imageURL, productName string, index int) (string, error) {
	filename := localFilename(imageURL, productName, index)
	filePath := filepath.Join(m.dir, filename)

	if _, err := os.Stat(filePath); err == nil {
		m.logger.Debug("image already cached", "file", filename)
		return filePath, nil
	}

	resp, err := m.download.R().SetContext(ctx).Get(imageURL)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", imageURL, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("download %s: status %d", imageURL, resp.StatusCode())
	}

	if err := os.WriteFile(filePath, resp.Body(), 0o644); err != nil {
		return "", fmt.Errorf("save image %s: %w", filename, err)
	}

	m.logger.Info("downloaded image", "file", filename, "bytes", len(resp.Body()))
	return filePath, nil
}

// findExisting searches the media library for an attachment whose filename
// or title contains the local file's stem. Matching ignores suffixes the
// target platform appends on storage (-1, -scaled and the like).
func (m *Manager) findExisting(ctx context.Context, filename string) *woocommerce.Image {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))

	items, err := m.media.SearchMedia(ctx, stem)
	if err != nil {
		m.logger.Debug("media search failed", "stem", stem, "error", err)
		return nil
	}

	for _, item := range items {
		if strings.Contains(item.MediaDetails.File, stem) || strings.Contains(item.Title.Rendered, stem) {
			m.logger.Info("found existing media", "file", filename, "media_id", item.ID)
			return &woocommerce.Image{
				ID:   item.ID,
				Src:  item.SourceURL,
				Name: item.Title.Rendered,
				Alt:  item.AltText,
			}
		}
	}
	return nil
}

// upload pushes a cached file into the media library, short-circuiting to an
// existing attachment with the same filename stem.
func (m *Manager) upload(ctx context.Context, filePath, altText, title string) (*woocommerce.Image, error) {
	filename := filepath.Base(filePath)

	if existing := m.findExisting(ctx, filename); existing != nil {
		return existing, nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read image %s: %w", filename, err)
	}

	mimeType := mime.TypeByExtension(filepath.Ext(filename))
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	media, err := m.media.UploadMedia(ctx, filename, mimeType, data, altText, title)
	if err != nil {
		// the upload may have landed server-side despite the error
		if existing := m.findExisting(ctx, filename); existing != nil {
			m.logger.Info("upload failed but media exists, using it", "file", filename, "media_id", existing.ID)
			return existing, nil
		}
		return nil, fmt.Errorf("upload %s: %w", filename, err)
	}

	m.logger.Info("uploaded image", "file", filename, "media_id", media.ID)
	return &woocommerce.Image{
		ID:   media.ID,
		Src:  media.SourceURL,
		Name: title,
		Alt:  altText,
	}, nil
}

// ProcessProductImages runs the download-then-upload pipeline for every
// image of one product. Individual image failures are logged and skipped;
// the caller gets whatever subset made it through.
func (m *Manager) ProcessProductImages(ctx context.Context, productName string, images []woocommerce.Image) ([]woocommerce.Image, error) {
	var result []woocommerce.Image

	for i, img := range images {
		if m.cancelled() {
			return result, context.Canceled
		}
		if img.Src == "" {
			continue
		}

		localPath, err := m.Download(ctx, img.Src, productName, i)
		if err != nil {
			m.logger.Warn("skipping image, download failed", "product", productName, "index", i, "error", err)
			continue
		}

		if m.cancelled() {
			return result, context.Canceled
		}

		title := fmt.Sprintf("%s - Image %d", productName, i+1)
		uploaded, err := m.upload(ctx, localPath, img.Alt, title)
		if err != nil {
			m.logger.Warn("skipping image, upload failed", "product", productName, "index", i, "error", err)
			continue
		}
		result = append(result, *uploaded)
	}

	return result, nil
}

// Cleanup removes cached files older than maxAge and reports how many were
// deleted.
func (m *Manager) Cleanup(maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	removed := 0

	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return 0, fmt.Errorf("read image cache dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(m.dir, entry.Name())); err == nil {
				removed++
			}
		}
	}

	if removed > 0 {
		m.logger.Info("cleaned up old cached images", "removed", removed)
	}
	return removed, nil
}
