package inventory

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/dmagro/sitesettings/internal/selector"
)

// DefaultDebounce coalesces the burst of events an editor or provisioning
// run produces when rewriting a vhost file.
const DefaultDebounce = 250 * time.Millisecond

// Watch sends one report immediately and another after every change to one
// of the project's vhost files, until ctx is done. Events for other files in
// the directory are ignored.
func Watch(ctx context.Context, sel *selector.Selector, debounce time.Duration, logger *zap.Logger, onReport func(Report)) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(sel.VhostDir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", sel.VhostDir, err)
	}

	names := make(map[string]bool, len(selector.Environments))
	for _, e := range selector.Environments {
		names[sel.FileName(e)] = true
	}

	report, err := Inspect(ctx, sel)
	if err != nil {
		return err
	}
	onReport(report)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !names[filepath.Base(event.Name)] {
				continue
			}
			logger.Debug("vhost file changed",
				zap.String("path", event.Name),
				zap.String("op", event.Op.String()))
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("vhost watcher error", zap.Error(err))

		case <-fire:
			fire = nil
			report, err := Inspect(ctx, sel)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			onReport(report)
		}
	}
}
