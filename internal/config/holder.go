package config

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Holder provides thread-safe access to configuration with hot reload.
// Listeners registered with OnChange apply the reloadable sections
// (branding, logging level).
type Holder struct {
	mu       sync.RWMutex
	config   *Config
	path     string
	logger   zerolog.Logger
	watcher  *fsnotify.Watcher
	onChange []func(*Config)
	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewHolder loads the configuration at path and wraps it.
func NewHolder(path string, logger zerolog.Logger) (*Holder, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	absPath := path
	if path != "" {
		absPath, err = filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("config: absolute path: %w", err)
		}
	}
	return &Holder{
		config: cfg,
		path:   absPath,
		logger: logger,
		stopCh: make(chan struct{}),
	}, nil
}

// Get returns the current configuration.
func (h *Holder) Get() *Config {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.config
}

// Reload re-reads the configuration. On failure the previous one is kept.
func (h *Holder) Reload() error {
	newCfg, err := Load(h.path)
	if err != nil {
		h.logger.Error().Err(err).Msg("config reload failed, keeping old config")
		return err
	}

	h.mu.Lock()
	oldCfg := h.config
	h.config = newCfg
	listeners := append([]func(*Config){}, h.onChange...)
	h.mu.Unlock()

	h.logChanges(oldCfg, newCfg)
	for _, fn := range listeners {
		fn(newCfg)
	}
	return nil
}

// OnChange registers a callback invoked after each successful reload.
func (h *Holder) OnChange(fn func(*Config)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onChange = append(h.onChange, fn)
}

// WatchFile reloads the configuration whenever the file, or the branding
// logo it points at, is written.
func (h *Holder) WatchFile() error {
	if h.path == "" {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: create watcher: %w", err)
	}
	// Watch directories; editors replace files on save.
	dirs := map[string]struct{}{filepath.Dir(h.path): {}}
	if logo := h.Get().Branding.LogoPath; logo != "" {
		if abs, err := filepath.Abs(logo); err == nil {
			dirs[filepath.Dir(abs)] = struct{}{}
		}
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return fmt.Errorf("config: watch %s: %w", dir, err)
		}
	}
	h.watcher = watcher
	go h.watchLoop()
	h.logger.Info().Str("path", h.path).Msg("watching config for changes")
	return nil
}

// Stop ends file watching.
func (h *Holder) Stop() {
	h.stopOnce.Do(func() {
		close(h.stopCh)
		if h.watcher != nil {
			h.watcher.Close()
		}
	})
}

func (h *Holder) watchLoop() {
	for {
		select {
		case event, ok := <-h.watcher.Events:
			if !ok {
				return
			}
			if !h.isWatched(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			h.logger.Debug().Str("event", event.Op.String()).Str("file", event.Name).Msg("config file changed")
			if err := h.Reload(); err != nil {
				h.logger.Error().Err(err).Msg("file watch reload failed")
			}
		case err, ok := <-h.watcher.Errors:
			if !ok {
				return
			}
			h.logger.Error().Err(err).Msg("file watcher error")
		case <-h.stopCh:
			return
		}
	}
}

func (h *Holder) isWatched(name string) bool {
	if filepath.Clean(name) == h.path {
		return true
	}
	logo := h.Get().Branding.LogoPath
	if logo == "" {
		return false
	}
	abs, err := filepath.Abs(logo)
	if err != nil {
		return false
	}
	return filepath.Clean(name) == abs
}

func (h *Holder) logChanges(old, new *Config) {
	if old.Logging.Level != new.Logging.Level {
		h.logger.Info().Str("old", old.Logging.Level).Str("new", new.Logging.Level).Msg("log level changed")
	}
	if old.Branding != new.Branding {
		h.logger.Info().Str("title", new.Branding.Title).Str("logo", new.Branding.LogoPath).Msg("branding changed")
	}
	if old.Backend.BaseURL != new.Backend.BaseURL {
		h.logger.Warn().Msg("backend.base_url changed; restart required to apply")
	}
}
