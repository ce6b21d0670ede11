package config

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/opencode-ai/discode/internal/logging"
	"github.com/opencode-ai/discode/pkg/types"
)

// Watcher reloads configuration when a loaded config file changes.
type Watcher struct {
	watcher   *fsnotify.Watcher
	directory string
	files     map[string]bool
	onReload  func(*types.Config)
	stopCh    chan struct{}
	doneCh    chan struct{}
	started   bool
	mu        sync.Mutex
}

// NewWatcher creates a watcher over the given config files. The onReload
// callback receives the re-loaded configuration after each change.
// Returns nil if there are no files to watch.
func NewWatcher(directory string, files []string, onReload func(*types.Config)) (*Watcher, error) {
	if len(files) == 0 {
		return nil, nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	tracked := make(map[string]bool, len(files))
	dirs := make(map[string]bool)
	for _, f := range files {
		tracked[f] = true
		dirs[filepath.Dir(f)] = true
	}

	// Watch parent directories rather than files; editors often replace
	// files on save, which drops file-level watches.
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			w.Close()
			return nil, err
		}
	}

	return &Watcher{
		watcher:   w,
		directory: directory,
		files:     tracked,
		onReload:  onReload,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}, nil
}

// Start begins watching for config changes.
func (w *Watcher) Start() {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return
	}
	w.started = true
	w.mu.Unlock()
	go w.run()
}

func (w *Watcher) run() {
	defer close(w.doneCh)

	for {
		select {
		case <-w.stopCh:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !w.files[ev.Name] {
				continue
			}
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Error().Err(err).Msg("config watcher error")
		}
	}
}

func (w *Watcher) reload() {
	cfg, _, err := Load(w.directory)
	if err != nil {
		logging.Error().Err(err).Msg("config reload failed")
		return
	}

	logging.Info().Msg("config reloaded")
	if cfg.LogLevel != "" {
		logging.SetLevel(logging.ParseLevel(cfg.LogLevel))
	}
	if w.onReload != nil {
		w.onReload(cfg)
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	started := w.started
	w.mu.Unlock()

	select {
	case <-w.stopCh:
	default:
		close(w.stopCh)
	}

	if started {
		<-w.doneCh
	}

	return w.watcher.Close()
}
