package reader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/tablekit/dmn"
)

var extensions = []string{".yaml", ".yml"}

// LoadDir reads every *.yaml and *.yml file of the directory (not recursively).
// Hidden files are skipped. Decision ids must be unique across all files.
func LoadDir(dir string) ([]*dmn.Decision, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	all := []*dmn.Decision{}
	seen := map[string]string{}
	for _, e := range entries {
		if e.IsDir() || !watched(e.Name()) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		ds, err := ReadFile(path)
		if err != nil {
			return nil, err
		}
		for _, d := range ds {
			if other, dup := seen[d.ID()]; dup {
				return nil, fmt.Errorf("%w: decision %s defined in %s and %s", ErrRead, d.ID(), other, path)
			}
			seen[d.ID()] = path
		}
		all = append(all, ds...)
	}
	return all, nil
}

func watched(name string) bool {
	base := filepath.Base(name)
	return !strings.HasPrefix(base, ".") && slices.Contains(extensions, strings.ToLower(filepath.Ext(base)))
}

// Watcher keeps a Vault in sync with a directory of decision files.
// Bursts of file events are collapsed into one reload.
type Watcher struct {
	dir      string
	vault    *dmn.Vault
	log      zerolog.Logger
	debounce time.Duration

	// reloaded, if set, is called after every reload attempt.
	reloaded func(err error)
}

// WatcherOption configures a Watcher.
type WatcherOption func(w *Watcher)

// WithLogger sets the logger for reload events.
func WithLogger(l zerolog.Logger) WatcherOption {
	return func(w *Watcher) {
		w.log = l
	}
}

// WithDebounce sets how long the Watcher waits for further events before
// reloading. Default: 100ms.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// OnReload registers a function called after each reload, with the reload error.
func OnReload(f func(err error)) WatcherOption {
	return func(w *Watcher) {
		w.reloaded = f
	}
}

// NewWatcher returns a Watcher for the directory, storing decisions in v.
func NewWatcher(dir string, v *dmn.Vault, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		dir:      dir,
		vault:    v,
		log:      zerolog.Nop(),
		debounce: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Load replaces the content of the vault with the decisions of the directory.
// If the directory can not be read, the vault is left unchanged.
func (w *Watcher) Load() error {
	ds, err := LoadDir(w.dir)
	if err == nil {
		err = w.vault.Replace(ds...)
	}
	if err != nil {
		w.log.Error().Err(err).Str("dir", w.dir).Msg("reloading decisions failed, keeping previous decisions")
	} else {
		w.log.Info().Str("dir", w.dir).Int("decisions", len(ds)).Msg("decisions loaded")
	}
	if w.reloaded != nil {
		w.reloaded(err)
	}
	return err
}

// Watch reloads the directory whenever a decision file changes, until ctx is done.
// It does not load the directory initially; call Load first.
func (w *Watcher) Watch(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}
	w.log.Info().Str("dir", w.dir).Dur("debounce", w.debounce).Msg("watching decisions")

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if ev.Op == fsnotify.Chmod || !watched(ev.Name) {
				continue
			}
			w.log.Debug().Str("file", ev.Name).Stringer("op", ev.Op).Msg("decision file changed")
			timer.Reset(w.debounce)

		case <-timer.C:
			_ = w.Load()

		case err, ok := <-fw.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.log.Error().Err(err).Msg("file watcher error")
		}
	}
}
