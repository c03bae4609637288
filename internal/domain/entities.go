package domain

import (
	"sort"
	"strings"
	"time"
)

type ChunkKind string

const (
	KindFunction  ChunkKind = "function"
	KindMethod    ChunkKind = "method"
	KindClass     ChunkKind = "class"
	KindInterface ChunkKind = "interface"
	KindComponent ChunkKind = "component"
	KindHook      ChunkKind = "hook"
	KindContext   ChunkKind = "context"
	KindProvider  ChunkKind = "provider"
	KindHOC       ChunkKind = "hoc"

	// KindBinding marks a const-style binding whose initializer is a
	// recognized wrapper call (memo, forwardRef, createContext) that no
	// framework annotator claimed.
	KindBinding ChunkKind = "binding"
)

var chunkKinds = map[ChunkKind]bool{
	KindFunction:  true,
	KindMethod:    true,
	KindClass:     true,
	KindInterface: true,
	KindComponent: true,
	KindHook:      true,
	KindContext:   true,
	KindProvider:  true,
	KindHOC:       true,
	KindBinding:   true,
}

func (k ChunkKind) Valid() bool {
	return chunkKinds[k]
}

// Chunk is one extracted construct. Code is always the exact text of lines
// StartLine..EndLine (1-based, inclusive) of the parsed source.
type Chunk struct {
	Kind       ChunkKind
	Name       string
	StartLine  int
	EndLine    int
	Code       string
	Confidence float64
	Oversized  bool
	Meta       Metadata
}

func (c Chunk) Lines() int {
	return c.EndLine - c.StartLine + 1
}

// ClassName returns the enclosing class link carried by member metadata.
func (c Chunk) ClassName() string {
	if c.Meta == nil {
		return ""
	}
	return c.Meta.EnclosingClass()
}

// Contains reports whether other lies within c's span.
func (c Chunk) Contains(other Chunk) bool {
	return c.StartLine <= other.StartLine && other.EndLine <= c.EndLine
}

// StrictlyContains reports whether other lies within c's span and the two
// spans differ.
func (c Chunk) StrictlyContains(other Chunk) bool {
	return c.Contains(other) && (c.StartLine != other.StartLine || c.EndLine != other.EndLine)
}

func (c Chunk) Shift(delta int) Chunk {
	c.StartLine += delta
	c.EndLine += delta
	return c
}

type ImportRecord struct {
	Module string            `json:"module"`
	Names  []string          `json:"names"`
	Alias  map[string]string `json:"alias,omitempty"`
}

type ExportRecord struct {
	Module    string            `json:"module,omitempty"`
	Names     []string          `json:"names"`
	Alias     map[string]string `json:"alias,omitempty"`
	IsDefault bool              `json:"is_default,omitempty"`
}

// ParseResult is never mutated once returned; an edit produces a new one.
type ParseResult struct {
	Language string         `json:"language"`
	FilePath string         `json:"file_path,omitempty"`
	Chunks   []Chunk        `json:"chunks"`
	Imports  []ImportRecord `json:"imports"`
	Exports  []ExportRecord `json:"exports"`
}

func (r *ParseResult) ChunksOfKind(kind ChunkKind) []Chunk {
	var out []Chunk
	for _, c := range r.Chunks {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

func (r *ParseResult) FindChunk(kind ChunkKind, name string) (Chunk, bool) {
	for _, c := range r.Chunks {
		if c.Kind == kind && c.Name == name {
			return c, true
		}
	}
	return Chunk{}, false
}

// KindCounts tallies chunks per kind.
func (r *ParseResult) KindCounts() map[ChunkKind]int {
	counts := make(map[ChunkKind]int)
	for _, c := range r.Chunks {
		counts[c.Kind]++
	}
	return counts
}

// SortChunks orders chunks by start line; enclosing chunks come before the
// chunks they contain.
func SortChunks(chunks []Chunk) {
	sort.SliceStable(chunks, func(i, j int) bool {
		if chunks[i].StartLine != chunks[j].StartLine {
			return chunks[i].StartLine < chunks[j].StartLine
		}
		return chunks[i].EndLine > chunks[j].EndLine
	})
}

// NameSet returns the sorted, de-duplicated form of names.
func NameSet(names []string) []string {
	if len(names) == 0 {
		return []string{}
	}
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Edit replaces lines StartLine..EndLine (1-based, inclusive) of the cached
// text with Text. EndLine == StartLine-1 inserts before StartLine without
// replacing anything. An empty Text deletes the range.
type Edit struct {
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
	Text      string `json:"text"`
}

func (e Edit) IsInsert() bool {
	return e.EndLine == e.StartLine-1
}

func (e Edit) NewLines() []string {
	if e.Text == "" {
		return nil
	}
	return strings.Split(e.Text, "\n")
}

// Delta is the change in line count the edit causes.
func (e Edit) Delta() int {
	return len(e.NewLines()) - (e.EndLine - e.StartLine + 1)
}

type CacheEntry struct {
	ID        string       `json:"id"`
	Language  string       `json:"language"`
	Text      string       `json:"text"`
	Result    *ParseResult `json:"result"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func (e *CacheEntry) Lines() []string {
	return strings.Split(e.Text, "\n")
}

// SplitLines is the line model shared by every parser: text split on "\n"
// with no terminator stripping, so a trailing newline yields a final empty
// line.
func SplitLines(text string) []string {
	return strings.Split(text, "\n")
}

func JoinLines(lines []string) string {
	return strings.Join(lines, "\n")
}
