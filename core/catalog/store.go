// Package catalog persists the product catalog as a single JSON document plus
// a flat directory of image files. The whole document is rewritten on every
// mutation; there is no locking, which is acceptable under the single-admin
// usage assumption but means concurrent writers can race.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/xomakone3/storebot/core/logger"
	"log/slog"
)

// Store reads and writes the catalog file and resolves image paths.
type Store struct {
	file      string
	imagesDir string
}

// NewStore binds a store to the catalog file path and image directory.
func NewStore(file, imagesDir string) *Store {
	return &Store{file: file, imagesDir: imagesDir}
}

// File returns the catalog file path.
func (s *Store) File() string { return s.file }

// ImagesDir returns the image directory path.
func (s *Store) ImagesDir() string { return s.imagesDir }

// ImagePath resolves an image filename from a Product.Images entry to its
// on-disk location.
func (s *Store) ImagePath(filename string) string {
	return filepath.Join(s.imagesDir, filename)
}

// EnsureDirs creates the catalog and image directories if they are missing.
func (s *Store) EnsureDirs() error {
	if dir := filepath.Dir(s.file); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("catalog dir: %w", err)
		}
	}
	if err := os.MkdirAll(s.imagesDir, 0o755); err != nil {
		return fmt.Errorf("images dir: %w", err)
	}
	return nil
}

// Load reads all products from the catalog file. A missing file or a file
// that fails to parse yields an empty catalog; parse failures are logged,
// never returned.
func (s *Store) Load(ctx context.Context) []Product {
	data, err := os.ReadFile(s.file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.LogEvent(ctx, logger.STORE, slog.LevelDebug, "store.load.missing",
				slog.String("file", s.file),
			)
		} else {
			logger.LogEvent(ctx, logger.STORE, slog.LevelError, "store.load.failed",
				slog.String("status", logger.Status(err)),
				slog.String("file", s.file),
				slog.String("err", err.Error()),
			)
		}
		return []Product{}
	}

	var products []Product
	if err := json.Unmarshal(data, &products); err != nil {
		logger.LogEvent(ctx, logger.STORE, slog.LevelError, "store.decode.failed",
			slog.String("status", logger.Status(err)),
			slog.String("file", s.file),
			slog.String("err", err.Error()),
		)
		return []Product{}
	}
	return products
}

// Save serializes the full product sequence back to the catalog file,
// overwriting it. Output uses two-space indentation and keeps non-ASCII
// characters literal so the storefront file stays human-readable.
func (s *Store) Save(ctx context.Context, products []Product) error {
	if products == nil {
		products = []Product{}
	}

	start := time.Now()
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(products); err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}

	if err := os.WriteFile(s.file, buf.Bytes(), 0o644); err != nil {
		logger.LogEvent(ctx, logger.STORE, slog.LevelError, "store.save.failed",
			slog.String("status", logger.Status(err)),
			slog.String("file", s.file),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("write catalog: %w", err)
	}

	logger.LogEvent(ctx, logger.STORE, slog.LevelDebug, "store.save",
		slog.String("status", logger.Status(nil)),
		slog.String("file", s.file),
		slog.Int("count", len(products)),
		slog.Duration("duration", logger.Took(start)),
	)
	return nil
}

// RemoveImages deletes every image file referenced by the product.
// Removal is best-effort: failures are logged per file and never propagated.
func (s *Store) RemoveImages(ctx context.Context, p Product) {
	for _, image := range p.Images {
		if err := os.Remove(s.ImagePath(image)); err != nil {
			logger.LogEvent(ctx, logger.STORE, slog.LevelWarn, "store.image.remove.failed",
				slog.String("product_id", p.ID),
				slog.String("image", image),
				slog.String("err", err.Error()),
			)
		}
	}
}
