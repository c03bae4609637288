package port

import "codechunk/internal/domain"

// CacheStore holds one Cache Entry per source id. Get returns
// domain.ErrCacheMiss for unknown ids.
type CacheStore interface {
	Get(id string) (*domain.CacheEntry, error)

	Put(entry *domain.CacheEntry) error

	Delete(id string) error

	IDs() ([]string, error)

	Close() error
}

// SourceLoader reads the current text of a source id when the cache has no
// entry for it.
type SourceLoader interface {
	Load(id string) (string, error)
}
