package watch

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const DefaultDebounce = 200 * time.Millisecond

// SkipDirs are never watched.
var SkipDirs = map[string]bool{
	".git": true, ".hg": true, ".svn": true,
	".codechunk":   true,
	"node_modules": true,
	"dist":         true,
	"build":        true,
	"coverage":     true,
	"__pycache__":  true,
	".venv":        true,
	"venv":         true,
	"vendor":       true,
	"target":       true,
}

type Config struct {
	Paths    []string
	Debounce time.Duration
	// Filter, when set, limits reported files to those it accepts.
	Filter func(path string) bool
	Logger *log.Logger
}

// Handler receives the files changed during one debounce period.
type Handler interface {
	OnChanges(files map[string]fsnotify.Op)
}

type HandlerFunc func(files map[string]fsnotify.Op)

func (f HandlerFunc) OnChanges(files map[string]fsnotify.Op) {
	f(files)
}

// Watcher reports source file changes below a set of directories, batching
// the events of each debounce period into one handler call.
type Watcher struct {
	fsnotify *fsnotify.Watcher
	config   Config
	handlers []Handler
	log      *log.Logger
	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	mu           sync.Mutex
	pending      map[string]fsnotify.Op
	debounceOnce sync.Once
	dirsWatched  int
}

func New(config Config, handlers ...Handler) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if config.Debounce <= 0 {
		config.Debounce = DefaultDebounce
	}
	logger := config.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Watcher{
		fsnotify: fsWatcher,
		config:   config,
		handlers: handlers,
		log:      logger,
		stop:     make(chan struct{}),
		pending:  make(map[string]fsnotify.Op),
	}, nil
}

func skipDir(name string) bool {
	return SkipDirs[name] || (len(name) > 1 && name[0] == '.')
}

func (w *Watcher) Start() error {
	paths := w.config.Paths
	if len(paths) == 0 {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		paths = []string{cwd}
	}

	for _, root := range paths {
		err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if !d.IsDir() {
				return nil
			}
			if path != root && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			if err := w.fsnotify.Add(path); err == nil {
				w.mu.Lock()
				w.dirsWatched++
				w.mu.Unlock()
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	w.wg.Add(1)
	go w.processEvents()

	w.log.Printf("watching %d directories in %v (debounce: %v)", w.DirsWatched(), paths, w.config.Debounce)
	return nil
}

func (w *Watcher) Stop() error {
	w.stopOnce.Do(func() { close(w.stop) })
	w.wg.Wait()
	return w.fsnotify.Close()
}

func (w *Watcher) DirsWatched() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dirsWatched
}

func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.stop:
			return

		case event, ok := <-w.fsnotify.Events:
			if !ok {
				return
			}

			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if !skipDir(filepath.Base(event.Name)) {
						if err := w.fsnotify.Add(event.Name); err == nil {
							w.mu.Lock()
							w.dirsWatched++
							w.mu.Unlock()
							w.log.Printf("watching new directory: %s", event.Name)
						}
					}
					continue
				}
			}

			name := filepath.Base(event.Name)
			if strings.HasPrefix(name, ".") || strings.HasSuffix(name, "~") ||
				strings.HasSuffix(name, ".swp") || strings.HasSuffix(name, ".tmp") {
				continue
			}
			if w.config.Filter != nil && !w.config.Filter(event.Name) {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				w.queueChange(event.Name, event.Op)
			}

		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return
			}
			w.log.Printf("error: %v", err)
		}
	}
}

func (w *Watcher) queueChange(path string, op fsnotify.Op) {
	w.mu.Lock()
	w.pending[path] |= op
	w.debounceOnce.Do(func() {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			select {
			case <-time.After(w.config.Debounce):
				w.flushPending()
			case <-w.stop:
			}
		}()
	})
	w.mu.Unlock()
}

func (w *Watcher) flushPending() {
	w.mu.Lock()
	pending := w.pending
	w.pending = make(map[string]fsnotify.Op)
	w.debounceOnce = sync.Once{}
	w.mu.Unlock()

	if len(pending) == 0 {
		return
	}

	w.log.Printf("processing %d file changes", len(pending))

	for _, h := range w.handlers {
		h.OnChanges(pending)
	}
}

// IsRemove reports whether op may have left the file gone. Editors that save
// by rename produce Rename|Create for a file that still exists.
func IsRemove(op fsnotify.Op) bool {
	return op&(fsnotify.Remove|fsnotify.Rename) != 0
}
