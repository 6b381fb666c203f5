package watcher

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before a change batch is delivered.
const DefaultDebounce = 500 * time.Millisecond

// fileWatcher implements FileWatcher on fsnotify.
type fileWatcher struct {
	watcher       *fsnotify.Watcher
	dirs          []string             // Directories to watch recursively
	extensions    map[string]bool      // Extensions to monitor (.py, .pyi)
	debounceTime  time.Duration        // Quiet period before firing callback
	callback      func(files []string) // Callback to invoke with changed files
	ctx           context.Context      // Context for lifecycle management
	cancel        context.CancelFunc   // Cancel function for internal context
	paused        bool                 // Whether watching is paused
	pausedMu      sync.RWMutex         // Protects paused flag
	accumulated   map[string]bool      // Accumulated file changes
	accumulatedMu sync.Mutex           // Protects accumulated map
	debounceTimer *time.Timer          // Current debounce timer
	timerMu       sync.Mutex           // Protects debounce timer
	stopOnce      sync.Once            // Ensures Stop() is idempotent
	doneCh        chan struct{}        // Signals watch goroutine has finished
}

// NewFileWatcher creates a watcher over dirs for the given extensions
// (e.g. []string{".py"}). A non-positive debounce falls back to
// DefaultDebounce.
func NewFileWatcher(dirs []string, extensions []string, debounce time.Duration) (FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	// Convert extensions slice to map for O(1) lookup
	extMap := make(map[string]bool)
	for _, ext := range extensions {
		extMap[ext] = true
	}

	fw := &fileWatcher{
		watcher:      watcher,
		dirs:         dirs,
		extensions:   extMap,
		debounceTime: debounce,
		accumulated:  make(map[string]bool),
		doneCh:       make(chan struct{}),
	}

	for _, dir := range dirs {
		if err := fw.addDirectoriesRecursively(dir); err != nil {
			watcher.Close()
			return nil, err
		}
	}

	return fw, nil
}

// Start begins watching for file changes.
func (fw *fileWatcher) Start(ctx context.Context, callback func(files []string)) error {
	if callback == nil {
		return nil
	}

	fw.callback = callback
	fw.ctx, fw.cancel = context.WithCancel(ctx)

	go fw.watch()
	return nil
}

// Stop stops the file watcher.
func (fw *fileWatcher) Stop() error {
	var err error
	fw.stopOnce.Do(func() {
		if fw.cancel != nil {
			fw.cancel()

			// Wait for goroutine to finish (only if Start() was called)
			<-fw.doneCh
		} else {
			// Never started, close doneCh manually
			close(fw.doneCh)
		}

		err = fw.watcher.Close()
	})
	return err
}

// Pause stops firing callbacks but continues accumulating events.
func (fw *fileWatcher) Pause() {
	fw.pausedMu.Lock()
	defer fw.pausedMu.Unlock()
	fw.paused = true
}

// Resume resumes firing callbacks. If events accumulated during pause, fires immediately.
func (fw *fileWatcher) Resume() {
	fw.pausedMu.Lock()
	wasPaused := fw.paused
	fw.paused = false
	fw.pausedMu.Unlock()

	if wasPaused {
		fw.accumulatedMu.Lock()
		if len(fw.accumulated) > 0 {
			files := make([]string, 0, len(fw.accumulated))
			for file := range fw.accumulated {
				files = append(files, file)
			}
			fw.accumulated = make(map[string]bool)
			fw.accumulatedMu.Unlock()

			if fw.callback != nil {
				fw.callback(files)
			}
		} else {
			fw.accumulatedMu.Unlock()
		}
	}
}

// watch is the main event loop.
func (fw *fileWatcher) watch() {
	defer close(fw.doneCh)

	batchCh := make(chan struct{}, 1)

	for {
		select {
		case <-fw.ctx.Done():
			fw.stopDebounceTimer()
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}

			// Handle new directories - add them to watcher
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := fw.addDirectoriesRecursively(event.Name); err != nil {
						log.Printf("Warning: failed to watch new directory %s: %v", event.Name, err)
					}
				}
			}

			if !fw.shouldProcessEvent(event) {
				continue
			}

			fw.accumulatedMu.Lock()
			fw.accumulated[event.Name] = true
			fw.accumulatedMu.Unlock()

			fw.resetDebounceTimer(batchCh)

		case <-batchCh:
			// Debounce period expired - fire callback if not paused
			fw.handleDebounceExpired()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("File watcher error: %v", err)
		}
	}
}

// handleDebounceExpired is called when the debounce timer expires.
func (fw *fileWatcher) handleDebounceExpired() {
	fw.pausedMu.RLock()
	paused := fw.paused
	fw.pausedMu.RUnlock()

	if paused {
		// Paused - keep accumulating, don't fire callback
		return
	}

	fw.accumulatedMu.Lock()
	if len(fw.accumulated) == 0 {
		fw.accumulatedMu.Unlock()
		return
	}

	files := make([]string, 0, len(fw.accumulated))
	for file := range fw.accumulated {
		files = append(files, file)
	}
	fw.accumulated = make(map[string]bool)
	fw.accumulatedMu.Unlock()

	if fw.callback != nil {
		fw.callback(files)
	}
}

// resetDebounceTimer resets the debounce timer, properly stopping the old one.
func (fw *fileWatcher) resetDebounceTimer(batchCh chan struct{}) {
	fw.timerMu.Lock()
	defer fw.timerMu.Unlock()

	if fw.debounceTimer != nil {
		if !fw.debounceTimer.Stop() {
			// Timer already fired, drain the channel
			select {
			case <-fw.debounceTimer.C:
			default:
			}
		}
	}

	fw.debounceTimer = time.AfterFunc(fw.debounceTime, func() {
		// Send batch signal (non-blocking)
		select {
		case batchCh <- struct{}{}:
		default:
		}
	})
}

// stopDebounceTimer stops the debounce timer if it exists.
func (fw *fileWatcher) stopDebounceTimer() {
	fw.timerMu.Lock()
	defer fw.timerMu.Unlock()

	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
		fw.debounceTimer = nil
	}
}

// shouldProcessEvent checks if an event should be processed based on extension.
func (fw *fileWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	// Only care about WRITE, CREATE, and REMOVE events
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove) == 0 {
		return false
	}

	ext := filepath.Ext(event.Name)
	return fw.extensions[ext]
}

// addDirectoriesRecursively adds all directories in the tree to the watcher.
// Hidden trees Python tooling generates (__pycache__, .venv, .git) are
// skipped; nothing worth labeling lives there.
func (fw *fileWatcher) addDirectoriesRecursively(rootPath string) error {
	return filepath.Walk(rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			// If it's the root path, fail immediately
			if path == rootPath {
				return err
			}
			// For subdirectories, log but continue
			log.Printf("Warning: error accessing %s: %v", path, err)
			return nil
		}

		if !info.IsDir() {
			return nil
		}

		switch info.Name() {
		case "__pycache__", ".venv", ".git":
			if path != rootPath {
				return filepath.SkipDir
			}
		}

		if err := fw.watcher.Add(path); err != nil {
			log.Printf("Warning: failed to watch directory %s: %v", path, err)
			return nil // Continue anyway
		}

		return nil
	})
}
