package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce is how long the watcher waits after the last filesystem
// event before re-running ingestion, so a file still being copied in is not
// picked up half-written.
const watchDebounce = 2 * time.Second

// Watch runs ingestion once, then re-runs it whenever files are created or
// written in folder, until ctx is cancelled. Failures of individual runs are
// logged and watching continues.
func (p *Pipeline) Watch(ctx context.Context, folder string) error {
	if _, err := p.Run(ctx, folder); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(folder); err != nil {
		return fmt.Errorf("watch %s: %w", folder, err)
	}
	p.logger.Info("watching for new documents", "folder", folder)

	var timer *time.Timer
	pending := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			p.logger.Warn("watcher error", "error", err)

		case <-pending:
			if _, err := p.Run(ctx, folder); err != nil {
				p.logger.Warn("ingestion run failed", "error", err)
			}
		}
	}
}
