package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/forcegraph/pkg/graph"
)

// reloadDebounce coalesces the burst of events a single save produces.
const reloadDebounce = 100 * time.Millisecond

// watchGraph rereads the graph file at path after every change and hands
// the result to send until ctx is done.
func watchGraph(ctx context.Context, path string, send func(tea.Msg), logger *log.Logger) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	// Editors often save by renaming over the file, which drops a watch on
	// the file itself; watch its directory instead.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", path, err)
	}

	go func() {
		defer watcher.Close()

		debounce := time.NewTimer(0)
		<-debounce.C

		for {
			select {
			case <-ctx.Done():
				debounce.Stop()
				return

			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != abs || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				debounce.Reset(reloadDebounce)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("file watcher error", "path", path, "err", err)

			case <-debounce.C:
				g, err := graph.ReadGraphFile(abs)
				if err != nil {
					logger.Debug("reload failed", "path", path, "err", err)
				} else {
					logger.Debug("reloaded graph", "path", path, "nodes", g.NodeCount())
				}
				send(reloadMsg{graph: g, err: err})
			}
		}
	}()
	return nil
}
