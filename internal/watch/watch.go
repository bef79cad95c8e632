// Package watch reports when a file changes on disk. Notifications are
// coalesced: the consumer (the render loop) drains at most one pending
// notification per poll, however many writes happened in between.
package watch

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

var watchLogger *log.Logger = log.New(io.Discard, "", 0)

func init() {
	if os.Getenv("LIGHTBOX_DEBUG_WATCH") == "1" {
		watchLogger = log.New(os.Stdout, "[watch] ", log.Ltime|log.Lmsgprefix)
	}
}

// Watcher watches a single file.
type Watcher struct {
	fsw     *fsnotify.Watcher
	name    string // cleaned absolute path of the watched file
	changed chan struct{}
	done    chan struct{}
}

// New starts watching path. The parent directory is watched rather than the
// file itself so that editors which save by renaming over the file keep
// producing notifications.
func New(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}

	w := &Watcher{
		fsw:     fsw,
		name:    filepath.Clean(abs),
		changed: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Poll reports, without blocking, whether the file was written, created or
// replaced since the last call.
func (w *Watcher) Poll() bool {
	select {
	case <-w.changed:
		return true
	default:
		return false
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	err := w.fsw.Close()
	<-w.done
	return err
}

func (w *Watcher) run() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.name {
				continue // some other file in the directory
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			watchLogger.Printf("%s: %s", ev.Op, ev.Name)
			select {
			case w.changed <- struct{}{}:
			default: // already pending
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("WARNING: watching %s: %v", w.name, err)
		}
	}
}
