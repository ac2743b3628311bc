// Package filesystem ingests local files into the vector store:
// single files, directory trees, and a watch mode that re-ingests
// files as they change.
package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/forage-dev/forage/internal/core/domain"
	"github.com/forage-dev/forage/internal/core/ports/driving"
	"github.com/forage-dev/forage/internal/logger"
	"github.com/forage-dev/forage/internal/normalisers"
)

// debounceWindow coalesces bursts of write events for the same file.
const debounceWindow = 500 * time.Millisecond

// Connector ingests local files into the store through the normaliser
// registry.
type Connector struct {
	store    driving.StoreService
	registry *normalisers.Registry
}

// New creates a filesystem connector.
func New(store driving.StoreService, registry *normalisers.Registry) *Connector {
	return &Connector{store: store, registry: registry}
}

// IngestFile normalises and ingests a single file, returning the
// number of chunks added. Files with an unsupported extension are an
// error; files that normalise to empty content add zero chunks.
func (c *Connector) IngestFile(ctx context.Context, path string) (int, error) {
	normaliser, ok := c.registry.ForPath(path)
	if !ok {
		return 0, fmt.Errorf("%w: unsupported file type %q (supported: %v)",
			domain.ErrInvalidInput, filepath.Ext(path), c.registry.Extensions())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}

	doc, err := normaliser.Normalise(path, data)
	if err != nil {
		return 0, err
	}
	if doc.Content == "" {
		logger.Debug("Skipping %s: no extractable content", path)
		return 0, nil
	}

	return c.store.AddDocuments(ctx, []domain.Document{doc})
}

// IngestDirectory walks dir recursively and ingests every supported
// file, returning the number of files ingested and chunks added.
// Files that fail to normalise are logged and skipped so one bad file
// does not abort the walk.
func (c *Connector) IngestDirectory(ctx context.Context, dir string) (files, chunks int, err error) {
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := c.registry.ForPath(path); !ok {
			return nil
		}

		added, err := c.IngestFile(ctx, path)
		if err != nil {
			logger.Warn("Skipping %s: %v", path, err)
			return nil
		}
		if added > 0 {
			files++
			chunks += added
		}
		return nil
	})
	if err != nil {
		return files, chunks, fmt.Errorf("walking %s: %w", dir, err)
	}
	return files, chunks, nil
}

// Watch ingests dir, then blocks re-ingesting files as they are
// created or modified, until ctx is cancelled. New subdirectories are
// watched as they appear.
func (c *Connector) Watch(ctx context.Context, dir string) error {
	if _, _, err := c.IngestDirectory(ctx, dir); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := addRecursive(watcher, dir); err != nil {
		return err
	}
	logger.Info("Watching %s", dir)

	// Pending paths wait out the debounce window before re-ingestion.
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(debounceWindow)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !shouldProcess(event.Op) {
				continue
			}

			if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
				if err := addRecursive(watcher, event.Name); err != nil {
					logger.Warn("Watching %s failed: %v", event.Name, err)
				}
				continue
			}

			if _, supported := c.registry.ForPath(event.Name); supported {
				pending[event.Name] = time.Now()
			}

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", watchErr)

		case now := <-ticker.C:
			for path, seen := range pending {
				if now.Sub(seen) < debounceWindow {
					continue
				}
				delete(pending, path)

				added, err := c.IngestFile(ctx, path)
				if err != nil {
					logger.Warn("Re-ingesting %s failed: %v", path, err)
					continue
				}
				logger.Info("Re-ingested %s (%d chunks)", path, added)
			}
		}
	}
}

// shouldProcess reports whether a watch event warrants re-ingestion.
func shouldProcess(op fsnotify.Op) bool {
	return op.Has(fsnotify.Create) || op.Has(fsnotify.Write)
}

// addRecursive watches dir and all its subdirectories.
func addRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
