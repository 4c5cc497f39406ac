// Package watch renumbers ordered lists in markdown files whenever they are
// written.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/gubarz/mdassist/internal/config"
	"github.com/gubarz/mdassist/internal/host"
	"github.com/gubarz/mdassist/internal/lists"
	"github.com/gubarz/mdassist/internal/scan"
)

// DefaultDebounce is how long a file must stay quiet before it is fixed
const DefaultDebounce = 100 * time.Millisecond

// Options configures a Watcher
type Options struct {
	Fs       afero.Fs
	Settings config.Settings
	Logger   *zap.Logger
	Debounce time.Duration
	OnFixed  func(path string) // Called after a file was rewritten
}

// Watcher fixes list numbering in watched markdown files
type Watcher struct {
	fs       afero.Fs
	settings config.Settings
	logger   *zap.Logger
	debounce time.Duration
	onFixed  func(string)

	watcher *fsnotify.Watcher
	dirs    map[string]bool // Every markdown file inside is handled
	files   map[string]bool // Only these files are handled
}

// New creates a watcher. Close it when done.
func New(opts Options) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	return &Watcher{
		fs:       opts.Fs,
		settings: opts.Settings,
		logger:   opts.Logger,
		debounce: opts.Debounce,
		onFixed:  opts.OnFixed,
		watcher:  fw,
		dirs:     make(map[string]bool),
		files:    make(map[string]bool),
	}, nil
}

// Add watches a markdown file or every markdown file in a directory.
// Files are watched through their directory so editors that replace the
// file on save are still seen.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}

	dir := abs
	if info.IsDir() {
		w.dirs[abs] = true
	} else {
		if !IsMarkdown(abs) {
			return fmt.Errorf("watch %s: not a markdown file", path)
		}
		w.files[abs] = true
		dir = filepath.Dir(abs)
	}
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.logger.Info("watching", zap.String("path", abs))
	return nil
}

// Close stops watching
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// Run handles file events until ctx is canceled
func (w *Watcher) Run(ctx context.Context) error {
	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if !w.handles(ev.Name) {
				continue
			}
			pending[ev.Name] = struct{}{}
			timer.Reset(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))

		case <-timer.C:
			for path := range pending {
				if _, err := w.FixFile(path); err != nil {
					w.logger.Warn("fix failed", zap.String("path", path), zap.Error(err))
				}
			}
			clear(pending)
		}
	}
}

// FixFile renumbers every list in a file and writes it back when anything
// changed. Front matter overrides of the file apply.
func (w *Watcher) FixFile(path string) (bool, error) {
	b, err := host.Open(w.fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	before := b.Text()

	settings := w.settings
	if o, err := scan.FrontMatter([]byte(before)); err != nil {
		w.logger.Debug("front matter ignored", zap.String("path", path), zap.Error(err))
	} else {
		settings = o.Apply(settings)
	}

	rn := lists.NewRenumberer(lists.Settings{
		AutoRenumber: settings.AutoRenumber,
		Marker:       settings.ListMarker,
	}, w.logger)
	if err := rn.FixAll(b); err != nil {
		return false, fmt.Errorf("fix %s: %w", path, err)
	}

	// Unchanged files are not rewritten so our own writes settle
	if b.Text() == before {
		return false, nil
	}
	if err := b.Save(); err != nil {
		return false, err
	}
	w.logger.Info("renumbered", zap.String("path", path))
	if w.onFixed != nil {
		w.onFixed(path)
	}
	return true, nil
}

func (w *Watcher) handles(path string) bool {
	if !IsMarkdown(path) {
		return false
	}
	return w.files[path] || w.dirs[filepath.Dir(path)]
}

// IsMarkdown reports whether path has a markdown extension
func IsMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}
