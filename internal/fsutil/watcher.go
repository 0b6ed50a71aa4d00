package fsutil

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// NiftiEvent reports a NIfTI file written into a watched directory.
type NiftiEvent struct {
	Path string
	Dir  string
	Base string
	Ext  string
	Time time.Time
}

// DefaultSettle is how long a file must go without writes before it is reported.
const DefaultSettle = 500 * time.Millisecond

// Watcher reports NIfTI files created or moved into a set of directories.
// A file is reported once, after Settle has passed since its last write.
type Watcher struct {
	Settle time.Duration

	watcher *fsnotify.Watcher
	dirs    []string
	log     *slog.Logger
}

// NewWatcher creates a watcher over dirs.
func NewWatcher(dirs []string, log *slog.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			w.Close()
			return nil, err
		}
	}
	return &Watcher{Settle: DefaultSettle, watcher: w, dirs: dirs, log: log}, nil
}

// Run delivers events to fn until ctx is done or the watcher fails.
// Non-NIfTI files and removals are ignored.
func (w *Watcher) Run(ctx context.Context, fn func(NiftiEvent)) error {
	defer w.watcher.Close()

	settle := w.Settle
	if settle <= 0 {
		settle = DefaultSettle
	}
	tick := time.NewTicker(settle / 4)
	defer tick.Stop()

	// last Create or Write per path
	pending := make(map[string]time.Time)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			// a rename into the directory arrives as Create on the new name
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if IsNifti(event.Name) {
				pending[event.Name] = time.Now()
			}
		case now := <-tick.C:
			for name, last := range pending {
				if now.Sub(last) < settle {
					continue
				}
				delete(pending, name)
				if !IsFile(name) {
					continue
				}
				dir, base, ext := ParseFilename(filepath.ToSlash(name))
				fn(NiftiEvent{Path: name, Dir: dir, Base: base, Ext: ext, Time: now})
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			if w.log != nil {
				w.log.Warn("watch error", "dirs", w.dirs, "error", err)
			}
		}
	}
}
