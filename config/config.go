package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"codechunk/internal/adapter/chunker"
)

// Config holds all configuration for the codechunk tool.
type Config struct {
	Chunker chunker.Config `yaml:"chunker"`
	Index   IndexConfig    `yaml:"index"`
	Cache   CacheConfig    `yaml:"cache"`
	Watch   WatchConfig    `yaml:"watch"`
	Search  SearchConfig   `yaml:"search"`
	Logging LoggingConfig  `yaml:"logging"`
}

// IndexConfig holds directory walking configuration.
type IndexConfig struct {
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
	Workers  int      `yaml:"workers"` // 0 = one per CPU
}

// CacheConfig holds cache entry storage configuration.
type CacheConfig struct {
	MaxEntries int  `yaml:"max_entries"`
	Persist    bool `yaml:"persist"` // keep entries in .codechunk/cache.db
}

// WatchConfig holds file watcher configuration.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// SearchConfig holds BM25 ranking parameters for searching cached chunks.
type SearchConfig struct {
	K1        float64 `yaml:"k1"`
	B         float64 `yaml:"b"`
	NameBoost float64 `yaml:"name_boost"` // weight of query terms found in a chunk's name
	TopK      int     `yaml:"top_k"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"` // "info" or "quiet"
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Chunker: chunker.DefaultConfig(),
		Index: IndexConfig{
			Includes: []string{"**/*.py", "**/*.js", "**/*.jsx", "**/*.mjs", "**/*.cjs", "**/*.ts", "**/*.tsx", "**/*.go", "**/*.rs", "**/*.sol"},
			Excludes: []string{"**/node_modules/**", "**/vendor/**", "**/.git/**", "**/dist/**", "**/build/**", "**/target/**", "**/__pycache__/**", "**/*.min.js"},
		},
		Cache: CacheConfig{
			MaxEntries: 1000,
			Persist:    true,
		},
		Watch: WatchConfig{
			Debounce: 200 * time.Millisecond,
		},
		Search: SearchConfig{
			K1:        1.2,
			B:         0.75,
			NameBoost: 1.0,
			TopK:      10,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks the configuration for values no component accepts.
func (c *Config) Validate() error {
	if err := c.Chunker.Validate(); err != nil {
		return err
	}
	if c.Index.Workers < 0 {
		return fmt.Errorf("index.workers must not be negative, got %d", c.Index.Workers)
	}
	if c.Cache.MaxEntries < 0 {
		return fmt.Errorf("cache.max_entries must not be negative, got %d", c.Cache.MaxEntries)
	}
	if c.Search.K1 < 0 || c.Search.B < 0 || c.Search.B > 1 {
		return fmt.Errorf("search.k1 must not be negative and search.b must be in [0, 1], got %v and %v", c.Search.K1, c.Search.B)
	}
	return nil
}

// Quiet reports whether adapter logging is suppressed.
func (c *Config) Quiet() bool {
	return strings.EqualFold(c.Logging.Level, "quiet")
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for codechunk.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "codechunk.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".codechunk", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ForUseCase returns a chunker configuration tuned for a language and use
// case, such as "typescript"/"react" or "go"/"performance". Unknown pairs get
// the defaults.
func ForUseCase(language, useCase string) chunker.Config {
	cfg := chunker.DefaultConfig()
	switch strings.ToLower(language) + "/" + strings.ToLower(useCase) {
	case "typescript/react", "javascript/react":
		cfg.MinChunkSize = 20
		cfg.LanguageSpecific = map[string]map[string]any{
			strings.ToLower(language): {"detect_react": true},
		}
	case "solidity/contract":
		cfg.MaxChunkSize = 15000
		cfg.ConfidenceThreshold = 0.5
	case "go/performance":
		cfg.IncludeComments = false
		cfg.LanguageSpecific = map[string]map[string]any{
			"go": {"detect_concurrency": true},
		}
	case "python/documentation":
		cfg.MaxChunkSize = 20000
		cfg.LanguageSpecific = map[string]map[string]any{
			"python": {"include_docstrings": true},
		}
	}
	return cfg
}

// CacheDBPath returns the path to the persistent cache database.
func CacheDBPath(dir string) string {
	return filepath.Join(dir, ".codechunk", "cache.db")
}

// EnsureDir ensures the .codechunk directory exists.
func EnsureDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".codechunk"), 0755)
}
