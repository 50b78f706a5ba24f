package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// reloadDelay collapses the burst of events editors emit on save.
const reloadDelay = 100 * time.Millisecond

// Watcher holds the active config and reloads it when the file changes.
// Callbacks registered with OnChange run after every successful reload.
type Watcher struct {
	path     string
	mu       sync.RWMutex
	config   *Config
	watcher  *fsnotify.Watcher
	onChange []func(*Config)
	done     chan struct{}
	once     sync.Once
}

// NewWatcher starts from initial, which is usually what LoadConfigWithPriority returned.
func NewWatcher(path string, initial *Config) *Watcher {
	if initial == nil {
		initial = DefaultConfig()
	}
	return &Watcher{
		path:   path,
		config: initial,
		done:   make(chan struct{}),
	}
}

// Config returns the current configuration. Treat it as read-only.
func (w *Watcher) Config() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.config
}

// Path returns the watched file, empty when running on builtin defaults.
func (w *Watcher) Path() string {
	return w.path
}

// OnChange registers cb. Register before Start.
func (w *Watcher) OnChange(cb func(*Config)) {
	w.mu.Lock()
	w.onChange = append(w.onChange, cb)
	w.mu.Unlock()
}

// Start watches the directory holding the config file. The directory, not the
// file, is watched so atomic rename-over saves are seen too.
func (w *Watcher) Start() error {
	if w.path == "" {
		return nil
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		fw.Close()
		return fmt.Errorf("watch directory: %w", err)
	}
	w.watcher = fw
	go w.loop()
	log.Debugf("Watching config file: %s", w.path)
	return nil
}

func (w *Watcher) loop() {
	var timer *time.Timer
	for {
		select {
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(reloadDelay, func() {
				if err := w.Reload(); err != nil {
					log.Warnf("Config reload failed, keeping previous config: %v", err)
				}
			})
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warnf("Config watcher error: %v", err)
		}
	}
}

// Reload reads the file again and swaps it in if it is valid.
func (w *Watcher) Reload() error {
	if w.path == "" {
		return fmt.Errorf("no config file, running on builtin defaults")
	}
	cfg, err := LoadConfig(w.path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.config = cfg
	callbacks := slices.Clone(w.onChange)
	w.mu.Unlock()

	for _, cb := range callbacks {
		cb(cfg)
	}
	log.Debugf("Reloaded config from %s", w.path)
	return nil
}

// Close stops watching.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		if w.watcher != nil {
			err = w.watcher.Close()
		}
	})
	return err
}
