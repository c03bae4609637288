package search

import (
	"testing"

	"codechunk/internal/adapter/cache"
	"codechunk/internal/domain"
)

func testChunks() map[string][]domain.Chunk {
	return map[string][]domain.Chunk{
		"a.go": {{
			Kind: domain.KindFunction, Name: "parseConfig", StartLine: 3, EndLine: 5,
			Code: "func parseConfig(path string) (*Config, error) {\n\treturn load(path)\n}",
		}},
		"b.go": {{
			Kind: domain.KindFunction, Name: "openDatabase", StartLine: 1, EndLine: 3,
			Code: "func openDatabase(dsn string) (*DB, error) {\n\treturn sql.Open(dsn)\n}",
		}},
		"c.py": {{
			Kind: domain.KindFunction, Name: "load_config", StartLine: 1, EndLine: 2,
			Code: "def load_config(path):\n    return yaml.safe_load(open(path))",
		}},
	}
}

func newTestIndex() *Index {
	ix := NewIndex(NewTokenizer(), 1.2, 0.75, 1.0)
	for _, path := range []string{"a.go", "b.go", "c.py"} {
		ix.Add(path, testChunks()[path])
	}
	return ix
}

func TestBM25Scoring(t *testing.T) {
	ix := newTestIndex()
	if ix.Len() != 3 {
		t.Fatalf("expected 3 indexed chunks, got %d", ix.Len())
	}

	hits := ix.Search("config", 10)
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits for 'config', got %d", len(hits))
	}
	for _, h := range hits {
		if h.Path == "b.go" {
			t.Errorf("b.go should not match 'config'")
		}
		if h.Score <= 0 {
			t.Errorf("expected positive score, got %f for %s", h.Score, h.Path)
		}
	}

	hits = ix.Search("database connection", 10)
	if len(hits) != 1 || hits[0].Chunk.Name != "openDatabase" {
		t.Errorf("expected only openDatabase, got %v", hits)
	}
}

func TestBM25_NameBoost(t *testing.T) {
	ix := newTestIndex()

	hits := ix.Search("load", 10)
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits for 'load', got %d", len(hits))
	}
	if hits[0].Chunk.Name != "load_config" {
		t.Errorf("expected load_config first, got %s", hits[0].Chunk.Name)
	}
	if hits[0].Score <= hits[1].Score {
		t.Errorf("expected descending scores, got %f then %f", hits[0].Score, hits[1].Score)
	}
}

func TestBM25_TopKAndEmptyQuery(t *testing.T) {
	ix := newTestIndex()

	if hits := ix.Search("path", 1); len(hits) != 1 {
		t.Errorf("expected top-1 result, got %d", len(hits))
	}
	if hits := ix.Search("the", 10); hits != nil {
		t.Errorf("expected no results for a stopword query, got %v", hits)
	}
	if hits := ix.Search("zzzz", 10); len(hits) != 0 {
		t.Errorf("expected no results, got %v", hits)
	}
	if hits := NewIndex(NewTokenizer(), 1.2, 0.75, 0).Search("config", 10); hits != nil {
		t.Errorf("expected no results from an empty index, got %v", hits)
	}
}

func TestIndex_AddStore(t *testing.T) {
	store := cache.NewMemoryStore(10)
	for path, chunks := range testChunks() {
		err := store.Put(&domain.CacheEntry{
			ID:       path,
			Language: "go",
			Result:   &domain.ParseResult{Chunks: chunks},
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	ix := NewIndex(NewTokenizer(), 1.2, 0.75, 1.0)
	if err := ix.AddStore(store); err != nil {
		t.Fatal(err)
	}
	if ix.Len() != 3 {
		t.Errorf("expected 3 chunks, got %d", ix.Len())
	}

	hits := ix.Search("yaml", 10)
	if len(hits) != 1 || hits[0].Path != "c.py" {
		t.Errorf("expected c.py, got %v", hits)
	}
}
