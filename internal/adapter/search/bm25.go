package search

import (
	"fmt"
	"math"
	"sort"

	"codechunk/internal/domain"
	"codechunk/internal/port"
)

// Hit is one ranked chunk.
type Hit struct {
	Path  string       `json:"path"`
	Chunk domain.Chunk `json:"chunk"`
	Score float64      `json:"score"`
}

type document struct {
	path   string
	chunk  domain.Chunk
	length int
	name   map[string]struct{}
}

type posting struct {
	doc int
	tf  int
}

// Index ranks chunks against free-text queries with BM25. Query terms that
// also occur in a chunk's name raise its score by up to nameBoost.
type Index struct {
	tokenizer   *Tokenizer
	k1          float64
	b           float64
	nameBoost   float64
	docs        []document
	postings    map[string][]posting
	totalTokens int
}

func NewIndex(tokenizer *Tokenizer, k1, b, nameBoost float64) *Index {
	return &Index{
		tokenizer: tokenizer,
		k1:        k1,
		b:         b,
		nameBoost: nameBoost,
		postings:  make(map[string][]posting),
	}
}

// Add indexes the chunks of one file.
func (ix *Index) Add(path string, chunks []domain.Chunk) {
	for _, c := range chunks {
		tokens := ix.tokenizer.Tokenize(c.Code)
		name := make(map[string]struct{})
		for _, t := range ix.tokenizer.Tokenize(c.Name) {
			name[t] = struct{}{}
		}

		id := len(ix.docs)
		ix.docs = append(ix.docs, document{path: path, chunk: c, length: len(tokens), name: name})
		ix.totalTokens += len(tokens)

		tf := make(map[string]int)
		for _, t := range tokens {
			tf[t]++
		}
		for term, count := range tf {
			ix.postings[term] = append(ix.postings[term], posting{doc: id, tf: count})
		}
	}
}

// AddStore indexes every cached parse result.
func (ix *Index) AddStore(store port.CacheStore) error {
	ids, err := store.IDs()
	if err != nil {
		return fmt.Errorf("failed to list cache entries: %w", err)
	}
	for _, id := range ids {
		entry, err := store.Get(id)
		if err != nil {
			return fmt.Errorf("failed to read cache entry %s: %w", id, err)
		}
		if entry.Result != nil {
			ix.Add(id, entry.Result.Chunks)
		}
	}
	return nil
}

func (ix *Index) Len() int {
	return len(ix.docs)
}

// Search returns the k best chunks for query, all of them when k <= 0.
func (ix *Index) Search(query string, k int) []Hit {
	queryTokens := ix.tokenizer.Tokenize(query)
	if len(queryTokens) == 0 || len(ix.docs) == 0 {
		return nil
	}

	queryTokenSet := make(map[string]struct{}, len(queryTokens))
	for _, t := range queryTokens {
		queryTokenSet[t] = struct{}{}
	}

	N := float64(len(ix.docs))
	avgDl := float64(ix.totalTokens) / N
	if avgDl == 0 {
		avgDl = 1
	}

	scores := make(map[int]float64)
	for term := range queryTokenSet {
		postings := ix.postings[term]
		n := float64(len(postings))
		idf := math.Log((N-n+0.5)/(n+0.5) + 1)

		for _, p := range postings {
			dl := float64(ix.docs[p.doc].length)
			tf := float64(p.tf)
			scores[p.doc] += idf * (tf * (ix.k1 + 1)) / (tf + ix.k1*(1-ix.b+ix.b*dl/avgDl))
		}
	}

	hits := make([]Hit, 0, len(scores))
	for id, score := range scores {
		doc := ix.docs[id]
		if ix.nameBoost > 0 {
			score *= 1 + nameMatch(doc.name, queryTokenSet)*ix.nameBoost
		}
		hits = append(hits, Hit{Path: doc.path, Chunk: doc.chunk, Score: score})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		if hits[i].Path != hits[j].Path {
			return hits[i].Path < hits[j].Path
		}
		return hits[i].Chunk.StartLine < hits[j].Chunk.StartLine
	})

	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

// nameMatch is the fraction of query terms found in a chunk's name.
func nameMatch(name, queryTokenSet map[string]struct{}) float64 {
	if len(name) == 0 || len(queryTokenSet) == 0 {
		return 0
	}
	matches := 0
	for t := range queryTokenSet {
		if _, ok := name[t]; ok {
			matches++
		}
	}
	return float64(matches) / float64(len(queryTokenSet))
}
