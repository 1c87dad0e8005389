package ingest

import (
	"context"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/receipts-inbox/internal/common"
)

type WatchConfig struct {
	Roots       []string      // directories to watch (recursive)
	Exts        []string      // DefaultExts when empty
	InitialScan bool          // emit files already present
	Debounce    time.Duration // coalesce rapid write bursts
}

// StartWatcher emits paths of matching files created or written under the
// roots until ctx is done. Both channels are closed on exit.
func StartWatcher(ctx context.Context, cfg WatchConfig, logger *zap.Logger) (<-chan string, <-chan error, error) {
	logger = common.OrNop(logger)
	if len(cfg.Roots) == 0 {
		return nil, nil, eris.New("ingest: no roots provided")
	}
	exts := extSet(cfg.Exts)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, eris.Wrap(err, "ingest: create watcher")
	}

	var initial []string
	for _, root := range cfg.Roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() {
				return w.Add(path)
			}
			if cfg.InitialScan && allowed(path, exts) {
				initial = append(initial, path)
			}
			return nil
		})
		if err != nil {
			_ = w.Close()
			return nil, nil, eris.Wrapf(err, "ingest: watch %s", root)
		}
	}

	evCh := make(chan string, 256)
	errCh := make(chan error, 1)

	go func() {
		defer close(evCh)
		defer close(errCh)
		defer func() { _ = w.Close() }()

		emit := func(p string) bool {
			select {
			case evCh <- p:
				return true
			case <-ctx.Done():
				return false
			}
		}
		for _, p := range initial {
			if !emit(p) {
				return
			}
		}

		pending := map[string]struct{}{}
		var fire <-chan time.Time
		flush := func() bool {
			for p := range pending {
				delete(pending, p)
				if !emit(p) {
					return false
				}
			}
			return true
		}

		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if e.Has(fsnotify.Create) {
					// new sub-directories are watched too; files fail silently
					_ = w.Add(e.Name)
				}
				if !allowed(e.Name, exts) || !(e.Has(fsnotify.Create) || e.Has(fsnotify.Write) || e.Has(fsnotify.Rename)) {
					continue
				}
				pending[e.Name] = struct{}{}
				if cfg.Debounce <= 0 {
					if !flush() {
						return
					}
					continue
				}
				fire = time.After(cfg.Debounce)
			case <-fire:
				fire = nil
				if !flush() {
					return
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Error("ingest.watcher.error", zap.Error(err))
				select {
				case errCh <- err:
				default:
				}
			}
		}
	}()

	return evCh, errCh, nil
}
