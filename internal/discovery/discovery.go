// Package discovery finds source videos in the working directory and
// prepares the directory segments are written to.
package discovery

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZacxDev/clipsplit/internal/logging"
	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// List returns the regular files directly under root whose extension
// matches one of exts, ignoring case. Paths are joined to root and sorted.
func List(root string, exts []string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, errors.Wrapf(err, "read directory %s", root)
	}

	var videos []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if matchExt(entry.Name(), exts) {
			videos = append(videos, filepath.Join(root, entry.Name()))
		}
	}
	slices.Sort(videos)
	return videos, nil
}

func matchExt(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return false
	}
	for _, e := range exts {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

// PrepareOutput creates dir, first removing everything in it when clean is
// set.
func PrepareOutput(dir string, clean bool) error {
	if clean {
		if err := os.RemoveAll(dir); err != nil {
			return errors.Wrapf(err, "clean output directory %s", dir)
		}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "create output directory %s", dir)
	}
	return nil
}

// Watch signals on the returned channel whenever a file is created, removed
// or renamed directly under root. Bursts of events collapse into a single
// pending signal. The channel is closed once ctx is done.
func Watch(ctx context.Context, root string, logger hclog.Logger) (<-chan struct{}, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create file watcher")
	}
	if err := watcher.Add(root); err != nil {
		watcher.Close()
		return nil, errors.Wrapf(err, "watch %s", root)
	}

	changed := make(chan struct{}, 1)
	go func() {
		defer close(changed)
		defer watcher.Close()

		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
					continue
				}
				logger.Debug("directory changed", "path", event.Name, "op", event.Op.String())
				select {
				case changed <- struct{}{}:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("file watcher error", "error", err)
			case <-ctx.Done():
				return
			}
		}
	}()
	return changed, nil
}
