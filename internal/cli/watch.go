package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"codechunk/internal/adapter/fs"
	"codechunk/internal/adapter/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Keep cached parse results current while files change",
	Long: `Watch a directory and re-parse changed files incrementally against their
cached text. Files without a cache entry are parsed in full.

Examples:
  codechunk watch .
  codechunk watch src --config codechunk.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	path := GetRootDir()
	if len(args) > 0 {
		var err error
		if path, err = filepath.Abs(args[0]); err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}
	}

	cfg := GetConfig()
	logger := newLogger("watch")

	sess, err := openSession(GetRootDir())
	if err != nil {
		return err
	}
	defer sess.Close()

	walker := fs.NewWalker(cfg.Index.Includes, cfg.Index.Excludes)
	filter := func(name string) bool {
		rel, err := filepath.Rel(path, name)
		return err == nil && walker.Match(rel)
	}

	handler := watch.HandlerFunc(func(files map[string]fsnotify.Op) {
		for name, op := range files {
			if watch.IsRemove(op) {
				if _, err := os.Stat(name); errors.Is(err, os.ErrNotExist) {
					if err := sess.reparser.Invalidate(name); err != nil {
						logger.Printf("invalidate %s: %v", name, err)
					}
					continue
				}
			}
			result, err := sess.edit.ApplyFile(name)
			if err != nil {
				logger.Printf("parse %s: %v", name, err)
				continue
			}
			rep := sess.reparser.LastReport()
			logger.Printf("%s: %d chunks (windows %v, full %v)", name, len(result.Chunks), rep.Windows, rep.Full)
		}
	})

	w, err := watch.New(watch.Config{
		Paths:    []string{path},
		Debounce: cfg.Watch.Debounce,
		Filter:   filter,
		Logger:   logger,
	}, handler)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Start(); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sig:
	case <-cmd.Context().Done():
	}
	logger.Printf("stopping")
	return w.Stop()
}
