// Package watch tails a capture spool file and feeds appended lines into
// the overlay as content samples. External capture tools (clipboard
// bridges, share-sheet shims) append one sample per line; the watcher
// picks them up without the tools needing to speak the CLI or MCP surface.
package watch

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/avelius/halo/internal/config"
	"github.com/avelius/halo/internal/ops"
)

// Watcher follows a spool file and ingests lines appended to it. Lines
// already present when Run starts are skipped; only new appends count.
type Watcher struct {
	db       *sql.DB
	cfg      *config.Config
	path     string
	debounce time.Duration

	// OnIngest, if set, is called after each successfully ingested line.
	OnIngest func(line string, out *ops.IngestOutput)

	mu     sync.Mutex
	offset int64
}

// New creates a watcher for the given spool file. The file does not need
// to exist yet; it is picked up when created.
func New(db *sql.DB, cfg *config.Config, path string) *Watcher {
	return &Watcher{
		db:       db,
		cfg:      cfg,
		path:     filepath.Clean(path),
		debounce: time.Duration(cfg.WatchDebounceMs) * time.Millisecond,
	}
}

// Run blocks until ctx is cancelled, ingesting appended lines as they
// settle past the debounce window.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	// Watch the parent directory so create and rename of the spool file
	// itself are seen.
	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	if err := w.skipExisting(); err != nil {
		return err
	}

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			// Restart the quiet period on every burst of writes.
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				fire = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Printf("watch: %v", err)

		case <-fire:
			timer = nil
			fire = nil
			if err := w.drain(ctx); err != nil {
				log.Printf("watch: drain: %v", err)
			}
		}
	}
}

// skipExisting positions the read offset at the current end of the spool
// file, so only samples appended after startup are ingested.
func (w *Watcher) skipExisting() error {
	info, err := os.Stat(w.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat spool: %w", err)
	}
	w.mu.Lock()
	w.offset = info.Size()
	w.mu.Unlock()
	return nil
}

// drain reads everything appended since the last offset and ingests each
// complete line. A partial trailing line (no newline yet) stays in the
// file for the next round.
func (w *Watcher) drain(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := os.Open(w.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open spool: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat spool: %w", err)
	}
	// Truncated or rotated: start over from the top.
	if info.Size() < w.offset {
		w.offset = 0
	}

	if _, err := f.Seek(w.offset, io.SeekStart); err != nil {
		return fmt.Errorf("seek spool: %w", err)
	}

	reader := bufio.NewReader(f)
	consumed := w.offset
	for {
		line, err := reader.ReadString('\n')
		if err == io.EOF {
			// Incomplete line, wait for more writes.
			break
		}
		if err != nil {
			return fmt.Errorf("read spool: %w", err)
		}
		consumed += int64(len(line))

		sample := strings.TrimSpace(line)
		if sample == "" {
			continue
		}
		out, err := ops.Ingest(ctx, w.db, w.cfg, ops.IngestInput{
			Content: sample,
			Source:  "watch",
		})
		if err != nil {
			log.Printf("watch: ingest: %v", err)
			continue
		}
		if w.OnIngest != nil {
			w.OnIngest(sample, out)
		}
	}

	w.offset = consumed
	return nil
}
