package cli

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"codechunk/config"
	"codechunk/internal/adapter/cache"
	"codechunk/internal/adapter/chunker"
	"codechunk/internal/adapter/fs"
	"codechunk/internal/adapter/incremental"
	"codechunk/internal/adapter/store"
	"codechunk/internal/port"
	"codechunk/internal/usecase"
)

var (
	cfgFile string
	cfg     *config.Config
	rootDir string
)

var rootCmd = &cobra.Command{
	Use:   "codechunk",
	Short: "Extract functions, classes and components from source files",
	Long: `codechunk splits source files into semantic chunks (functions, methods,
classes, React components and hooks) together with their imports and exports,
and keeps the results cached so edits re-parse only what they touch.

Example usage:
  codechunk parse app.tsx --json   # Chunks of one file
  codechunk index .                # Parse and cache a directory
  codechunk watch .                # Keep the cache current while editing`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}
		rootDir, err = filepath.Abs(rootDir)
		if err != nil {
			return err
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./codechunk.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "root directory (default is current directory)")
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}

func newLogger(component string) *log.Logger {
	if cfg != nil && cfg.Quiet() {
		return log.New(io.Discard, "", 0)
	}
	return log.New(os.Stderr, "[codechunk:"+component+"] ", log.Ltime)
}

// session wires the chunker, the cache entry store and the use cases for
// one command run.
type session struct {
	chunker  *chunker.CompositeChunker
	store    port.CacheStore
	reparser *incremental.Reparser
	index    *usecase.IndexUseCase
	edit     *usecase.EditUseCase
	dbPath   string
}

func openSession(dir string) (*session, error) {
	cfg := GetConfig()
	logger := newLogger("cache")

	chk, err := chunker.NewCompositeChunker(cfg.Chunker)
	if err != nil {
		return nil, err
	}

	var (
		st     port.CacheStore
		dbPath string
	)
	front := cache.NewMemoryStore(cfg.Cache.MaxEntries)
	if cfg.Cache.Persist {
		if err := config.EnsureDir(dir); err != nil {
			return nil, fmt.Errorf("failed to create .codechunk directory: %w", err)
		}
		dbPath = config.CacheDBPath(dir)
		bolt, err := store.NewBoltStore(dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open cache store: %w", err)
		}

		migration, err := bolt.CheckMigration(cfg)
		if err != nil {
			bolt.Close()
			return nil, fmt.Errorf("failed to check migration: %w", err)
		}
		if migration.NeedsRebuild {
			logger.Printf("cache rebuild required: %s", migration.Reason)
			if err := bolt.Clear(); err != nil {
				bolt.Close()
				return nil, fmt.Errorf("failed to clear cache: %w", err)
			}
		} else if migration.NeedsMigration {
			logger.Printf("running schema migration: %s", migration.Reason)
		}
		if migration.NeedsRebuild || migration.NeedsMigration {
			if err := bolt.Migrate(cfg); err != nil {
				bolt.Close()
				return nil, fmt.Errorf("migration failed: %w", err)
			}
		}
		st = cache.NewTieredStore(front, bolt)
	} else {
		st = front
	}

	reader := fs.Reader{}
	reparser := incremental.New(chk, st, incremental.WithLoader(reader))
	walker := fs.NewWalker(cfg.Index.Includes, cfg.Index.Excludes)

	return &session{
		chunker:  chk,
		store:    st,
		reparser: reparser,
		index:    usecase.NewIndexUseCase(chk, reparser, st, walker, reader, cfg.Index.Workers),
		edit:     usecase.NewEditUseCase(reparser, reader),
		dbPath:   dbPath,
	}, nil
}

func (s *session) Close() error {
	return s.store.Close()
}

// absPath resolves a file argument against the root directory.
func absPath(arg string) (string, error) {
	if filepath.IsAbs(arg) {
		return filepath.Clean(arg), nil
	}
	return filepath.Abs(filepath.Join(GetRootDir(), arg))
}
