package usecase

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"codechunk/internal/adapter/incremental"
	"codechunk/internal/domain"
	"codechunk/internal/port"
)

// ProgressFunc is called after each file is processed.
type ProgressFunc func(processed, total int, currentFile string)

// IndexUseCase parses every supported file under a directory and keeps one
// cache entry per file, so later edits to it re-parse incrementally.
type IndexUseCase struct {
	chunker  port.Chunker
	reparser *incremental.Reparser
	store    port.CacheStore
	walker   port.FileWalker
	reader   port.FileReader
	workers  int
}

func NewIndexUseCase(
	chunker port.Chunker,
	reparser *incremental.Reparser,
	store port.CacheStore,
	walker port.FileWalker,
	reader port.FileReader,
	workers int,
) *IndexUseCase {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &IndexUseCase{
		chunker:  chunker,
		reparser: reparser,
		store:    store,
		walker:   walker,
		reader:   reader,
		workers:  workers,
	}
}

// IndexResult contains the results of an indexing operation.
type IndexResult struct {
	FilesIndexed  int
	FilesSkipped  int
	FilesDeleted  int
	ChunksCreated int
	ByLanguage    map[string]int
	ByKind        map[domain.ChunkKind]int
	Errors        []string
}

func (r *IndexResult) count(res *domain.ParseResult) {
	r.ChunksCreated += len(res.Chunks)
	r.ByLanguage[res.Language]++
	for kind, n := range res.KindCounts() {
		r.ByKind[kind] += n
	}
}

// Index parses the files under root. Files whose cache entry is newer than
// the file are skipped; entries for files that no longer exist are removed.
func (u *IndexUseCase) Index(ctx context.Context, root string, progress ProgressFunc) (*IndexResult, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	files, err := u.walker.Walk(root)
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	result := &IndexResult{
		ByLanguage: make(map[string]int),
		ByKind:     make(map[domain.ChunkKind]int),
	}
	seen := make(map[string]bool, len(files))

	var (
		mu        sync.Mutex
		processed int
	)
	done := func(path string) {
		processed++
		if progress != nil {
			progress(processed, len(files), path)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.workers)

	for _, file := range files {
		seen[file.Path] = true
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, skipped, err := u.indexFile(file)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", file.Path, err))
			case skipped:
				result.FilesSkipped++
				result.count(res)
			default:
				result.FilesIndexed++
				result.count(res)
			}
			done(file.Path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ids, err := u.store.IDs()
	if err != nil {
		return nil, fmt.Errorf("failed to list cache entries: %w", err)
	}
	prefix := root + string(filepath.Separator)
	for _, id := range ids {
		if seen[id] || !strings.HasPrefix(id, prefix) {
			continue
		}
		if err := u.reparser.Invalidate(id); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to delete %s: %v", id, err))
			continue
		}
		result.FilesDeleted++
	}

	sort.Strings(result.Errors)
	return result, nil
}

func (u *IndexUseCase) indexFile(file port.FileInfo) (*domain.ParseResult, bool, error) {
	entry, err := u.store.Get(file.Path)
	switch {
	case err == nil && entry.UpdatedAt.Unix() >= file.ModTime:
		return entry.Result, true, nil
	case err != nil && !errors.Is(err, domain.ErrCacheMiss):
		return nil, false, err
	}

	content, err := u.reader.ReadFile(file.Path)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read file: %w", err)
	}
	res, err := u.reparser.FullParse(file.Path, string(file.Language), content)
	if err != nil {
		return nil, false, err
	}
	return res, false, nil
}

// ParseFile parses one file without touching the cache. The language comes
// from the file extension.
func (u *IndexUseCase) ParseFile(path string) (*domain.ParseResult, error) {
	lang, ok := domain.LanguageForPath(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedLanguage, filepath.Ext(path))
	}
	content, err := u.reader.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	res, err := u.chunker.Parse(content, string(lang))
	if err != nil {
		return nil, err
	}
	res.FilePath = path
	return res, nil
}
