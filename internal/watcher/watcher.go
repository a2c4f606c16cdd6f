// Package watcher reloads the config file when it changes on disk.
package watcher

import (
	"context"
	"os"
	"time"

	"github.com/FeelPulse/flightpulse/internal/config"
	"github.com/FeelPulse/flightpulse/internal/logger"
)

var log = logger.Component("watcher")

// DefaultPollInterval is how often the file is checked
const DefaultPollInterval = 5 * time.Second

// Watcher polls a config file and hands every successfully parsed
// revision to its callback
type Watcher struct {
	path     string
	interval time.Duration
	onChange func(*config.Config)

	lastModTime time.Time
	lastSize    int64
}

// New creates a watcher for path (config.DefaultPath when empty)
func New(path string, interval time.Duration, onChange func(*config.Config)) *Watcher {
	if path == "" {
		path = config.DefaultPath()
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	w := &Watcher{path: path, interval: interval, onChange: onChange}
	w.snapshot()
	return w
}

// Run polls until ctx is done
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.poll()
		}
	}
}

// poll reloads the file if it changed and reports whether it did
func (w *Watcher) poll() bool {
	if !w.changed() {
		return false
	}
	w.snapshot()
	if _, err := os.Stat(w.path); os.IsNotExist(err) {
		log.Warn("config %s removed, keeping current settings", w.path)
		return false
	}

	cfg, err := config.Load(w.path)
	if err != nil {
		log.Warn("ignoring config change in %s: %v", w.path, err)
		return false
	}
	log.Info("config %s reloaded", w.path)
	if w.onChange != nil {
		w.onChange(cfg)
	}
	return true
}

func (w *Watcher) snapshot() {
	info, err := os.Stat(w.path)
	if err != nil {
		w.lastModTime = time.Time{}
		w.lastSize = 0
		return
	}
	w.lastModTime = info.ModTime()
	w.lastSize = info.Size()
}

func (w *Watcher) changed() bool {
	info, err := os.Stat(w.path)
	if err != nil {
		// a deleted file is noticed once so a recreated one reloads
		return !w.lastModTime.IsZero()
	}
	if w.lastModTime.IsZero() {
		return true
	}
	return !info.ModTime().Equal(w.lastModTime) || info.Size() != w.lastSize
}
