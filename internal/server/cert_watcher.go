package server

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"veracity/internal/errors"
)

const defaultDebounceDelay = time.Second

// CertWatcher watches certificate files and calls reload once a burst of
// changes has settled
type CertWatcher struct {
	mu sync.Mutex

	files         []string
	lastModTime   map[string]time.Time
	fsWatcher     *fsnotify.Watcher
	debounceDelay time.Duration
	debounceTimer *time.Timer

	stopChan   chan struct{}
	reloadChan chan struct{}
	reload     func()
	logger     *errors.Logger
	running    bool
}

// NewCertWatcher creates a watcher for the non-empty paths in files
func NewCertWatcher(files []string, debounceDelay time.Duration, reload func(), logger *errors.Logger) *CertWatcher {
	if debounceDelay <= 0 {
		debounceDelay = defaultDebounceDelay
	}
	if logger == nil {
		logger = errors.NewDiscardLogger()
	}
	return &CertWatcher{
		files:         slices.DeleteFunc(slices.Clone(files), func(f string) bool { return f == "" }),
		lastModTime:   make(map[string]time.Time),
		debounceDelay: debounceDelay,
		stopChan:      make(chan struct{}),
		reloadChan:    make(chan struct{}, 1),
		reload:        reload,
		logger:        logger,
	}
}

// Start begins watching the certificate files
func (cw *CertWatcher) Start() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if cw.running {
		return fmt.Errorf("certificate watcher is already running")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	cw.fsWatcher = watcher

	for _, file := range cw.files {
		if stat, err := os.Stat(file); err == nil {
			cw.lastModTime[file] = stat.ModTime()
		}
		// the directory catches atomic rename-into-place updates
		if err := watcher.Add(filepath.Dir(file)); err != nil {
			cw.logger.Warn("Failed to watch certificate directory", "file", file, "error", err)
		}
	}

	cw.running = true
	go cw.watchLoop()

	cw.logger.Info("Certificate file watcher started",
		"files", cw.files,
		"debounce_delay", cw.debounceDelay)
	return nil
}

// Stop stops the certificate file watcher
func (cw *CertWatcher) Stop() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if !cw.running {
		return nil
	}
	close(cw.stopChan)
	if cw.debounceTimer != nil {
		cw.debounceTimer.Stop()
	}
	cw.running = false

	if err := cw.fsWatcher.Close(); err != nil {
		return fmt.Errorf("failed to close file watcher: %w", err)
	}
	cw.logger.Info("Certificate file watcher stopped")
	return nil
}

func (cw *CertWatcher) watchLoop() {
	for {
		select {
		case event, ok := <-cw.fsWatcher.Events:
			if !ok {
				return
			}
			if cw.isRelevant(event) {
				cw.scheduleReload()
			}

		case err, ok := <-cw.fsWatcher.Errors:
			if !ok {
				return
			}
			cw.logger.LogError(err, "File watcher error")

		case <-cw.reloadChan:
			if cw.anyFileChanged() {
				cw.logger.Info("Certificate files changed, triggering reload")
				cw.reload()
			}

		case <-cw.stopChan:
			return
		}
	}
}

// isRelevant reports whether event touches a watched file
func (cw *CertWatcher) isRelevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	return slices.ContainsFunc(cw.files, func(f string) bool {
		return filepath.Clean(event.Name) == filepath.Clean(f) || filepath.Base(event.Name) == filepath.Base(f)
	})
}

// anyFileChanged compares modification times with the last seen ones
func (cw *CertWatcher) anyFileChanged() bool {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	changed := false
	for _, file := range cw.files {
		stat, err := os.Stat(file)
		if err != nil {
			if _, seen := cw.lastModTime[file]; seen && os.IsNotExist(err) {
				delete(cw.lastModTime, file)
				changed = true
			}
			continue
		}
		if last, seen := cw.lastModTime[file]; !seen || stat.ModTime().After(last) {
			cw.lastModTime[file] = stat.ModTime()
			changed = true
		}
	}
	return changed
}

// scheduleReload restarts the debounce timer
func (cw *CertWatcher) scheduleReload() {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if cw.debounceTimer != nil {
		cw.debounceTimer.Stop()
	}
	cw.debounceTimer = time.AfterFunc(cw.debounceDelay, func() {
		select {
		case cw.reloadChan <- struct{}{}:
		default:
		}
	})
}

// IsRunning returns whether the watcher is currently running
func (cw *CertWatcher) IsRunning() bool {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	return cw.running
}

// GetWatchedFiles returns the list of files being watched
func (cw *CertWatcher) GetWatchedFiles() []string {
	return slices.Clone(cw.files)
}
