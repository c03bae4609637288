package incremental

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"codechunk/internal/domain"
	"codechunk/internal/port"
)

// Window is a re-scanned range of the edited text, 1-based and inclusive.
type Window struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Report describes how the last ParseIncremental call reached its result.
type Report struct {
	ID          string   `json:"id"`
	Full        bool     `json:"full"`
	Windows     []Window `json:"windows"`
	Unaffected  int      `json:"unaffected"`
	Shifted     int      `json:"shifted"`
	Invalidated int      `json:"invalidated"`
	Reparsed    int      `json:"reparsed"`
}

type Option func(*Reparser)

// WithLoader lets ParseIncremental recover from a cache miss by loading the
// id's current text.
func WithLoader(loader port.SourceLoader) Option {
	return func(r *Reparser) {
		r.loader = loader
	}
}

// Reparser keeps one Cache Entry per source id and updates it from line
// edits, re-scanning only the windows the edits can affect.
type Reparser struct {
	chunker port.Chunker
	store   port.CacheStore
	loader  port.SourceLoader

	mu    sync.Mutex
	locks map[string]*sync.Mutex
	last  Report
}

func New(chunker port.Chunker, store port.CacheStore, opts ...Option) *Reparser {
	r := &Reparser{
		chunker: chunker,
		store:   store,
		locks:   make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Reparser) lock(id string) func() {
	r.mu.Lock()
	l, ok := r.locks[id]
	if !ok {
		l = &sync.Mutex{}
		r.locks[id] = l
	}
	r.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// LastReport returns the report of the most recent ParseIncremental call.
func (r *Reparser) LastReport() Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

func (r *Reparser) setReport(rep Report) {
	r.mu.Lock()
	r.last = rep
	r.mu.Unlock()
}

func (r *Reparser) Entry(id string) (*domain.CacheEntry, error) {
	return r.store.Get(id)
}

// FullParse scans text from scratch and replaces the cache entry for id.
func (r *Reparser) FullParse(id, language, text string) (*domain.ParseResult, error) {
	defer r.lock(id)()
	return r.fullParse(id, language, text)
}

func (r *Reparser) fullParse(id, language, text string) (*domain.ParseResult, error) {
	result, err := r.chunker.Parse(text, language)
	if err != nil {
		return nil, err
	}
	result.FilePath = id
	entry := &domain.CacheEntry{
		ID:        id,
		Language:  result.Language,
		Text:      text,
		Result:    result,
		UpdatedAt: time.Now(),
	}
	if err := r.store.Put(entry); err != nil {
		return nil, fmt.Errorf("store %s: %w", id, err)
	}
	return result, nil
}

// Invalidate drops the cache entry for id so the next call parses in full.
func (r *Reparser) Invalidate(id string) error {
	defer r.lock(id)()
	return r.store.Delete(id)
}

// ParseIncremental applies edits, all numbered against the cached text, and
// returns the result for the edited text. Invalid or overlapping edits leave
// the cache untouched.
func (r *Reparser) ParseIncremental(id string, edits []domain.Edit) (*domain.ParseResult, error) {
	defer r.lock(id)()

	entry, err := r.store.Get(id)
	if errors.Is(err, domain.ErrCacheMiss) {
		return r.parseMissing(id, edits)
	}
	if err != nil {
		return nil, err
	}

	oldLines := entry.Lines()
	sorted, err := normalize(edits, len(oldLines))
	if err != nil {
		return nil, err
	}
	if len(sorted) == 0 {
		r.setReport(Report{ID: id, Unaffected: len(entry.Result.Chunks)})
		return entry.Result, nil
	}

	lang := domain.Language(entry.Language)
	newLines := splice(oldLines, sorted)
	newText := domain.JoinLines(newLines)

	rep := Report{ID: id}
	kept, anchors := r.carry(entry, sorted, newLines, lang, &rep)
	windows := initialWindows(sorted, anchors, len(newLines))

	chunks, windows, ok, err := r.rescan(newLines, windows, anchors, lang)
	if err != nil {
		return nil, err
	}
	if !ok {
		result, err := r.fullParse(id, entry.Language, newText)
		if err != nil {
			return nil, err
		}
		r.setReport(Report{ID: id, Full: true, Invalidated: len(entry.Result.Chunks), Reparsed: len(result.Chunks)})
		return result, nil
	}

	merged := make([]domain.Chunk, 0, len(kept)+len(chunks))
	for _, k := range kept {
		if inAny(windows, k.chunk) {
			rep.Invalidated++
			continue
		}
		if k.delta == 0 {
			rep.Unaffected++
		} else {
			rep.Shifted++
		}
		merged = append(merged, k.chunk)
	}
	merged = append(merged, chunks...)
	domain.SortChunks(merged)
	rep.Windows = windows
	rep.Reparsed = len(chunks)

	imports, exports, err := r.chunker.ExtractSymbols(newText, lang)
	if err != nil {
		return nil, err
	}
	result := &domain.ParseResult{
		Language: entry.Language,
		FilePath: id,
		Chunks:   merged,
		Imports:  imports,
		Exports:  exports,
	}
	next := &domain.CacheEntry{
		ID:        id,
		Language:  entry.Language,
		Text:      newText,
		Result:    result,
		UpdatedAt: time.Now(),
	}
	if err := r.store.Put(next); err != nil {
		return nil, fmt.Errorf("store %s: %w", id, err)
	}
	r.setReport(rep)
	return result, nil
}

// parseMissing handles a cache miss: with a loader the edits are applied to
// the loaded text and the result parsed in full.
func (r *Reparser) parseMissing(id string, edits []domain.Edit) (*domain.ParseResult, error) {
	if r.loader == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrCacheMiss, id)
	}
	lang, ok := domain.LanguageForPath(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedLanguage, id)
	}
	text, err := r.loader.Load(id)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", id, err)
	}
	lines := domain.SplitLines(text)
	sorted, err := normalize(edits, len(lines))
	if err != nil {
		return nil, err
	}
	result, err := r.fullParse(id, string(lang), domain.JoinLines(splice(lines, sorted)))
	if err != nil {
		return nil, err
	}
	r.setReport(Report{ID: id, Full: true, Reparsed: len(result.Chunks)})
	return result, nil
}

// normalize validates edits against a text of n lines and returns them
// ordered by position, inserts before replacements at the same line.
func normalize(edits []domain.Edit, n int) ([]domain.Edit, error) {
	sorted := make([]domain.Edit, len(edits))
	copy(sorted, edits)
	for _, e := range sorted {
		switch {
		case e.StartLine < 1:
			return nil, fmt.Errorf("%w: start line %d", domain.ErrInvalidEdit, e.StartLine)
		case e.IsInsert():
			if e.StartLine > n+1 {
				return nil, fmt.Errorf("%w: insert at %d past end %d", domain.ErrInvalidEdit, e.StartLine, n)
			}
		case e.EndLine < e.StartLine || e.EndLine > n:
			return nil, fmt.Errorf("%w: range %d-%d of %d lines", domain.ErrInvalidEdit, e.StartLine, e.EndLine, n)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].StartLine != sorted[j].StartLine {
			return sorted[i].StartLine < sorted[j].StartLine
		}
		return sorted[i].IsInsert() && !sorted[j].IsInsert()
	})
	for i := 1; i < len(sorted); i++ {
		a, b := sorted[i-1], sorted[i]
		if b.StartLine <= a.EndLine || (a.IsInsert() && b.IsInsert() && a.StartLine == b.StartLine) {
			return nil, fmt.Errorf("%w: %d-%d and %d-%d", domain.ErrConflictingEdits, a.StartLine, a.EndLine, b.StartLine, b.EndLine)
		}
	}
	return sorted, nil
}

func splice(lines []string, edits []domain.Edit) []string {
	out := make([]string, 0, len(lines))
	next := 1
	for _, e := range edits {
		out = append(out, lines[next-1:e.StartLine-1]...)
		out = append(out, e.NewLines()...)
		next = e.EndLine + 1
	}
	return append(out, lines[next-1:]...)
}

// shiftAt is the line delta applied to an old line that no edit touches.
func shiftAt(edits []domain.Edit, line int) int {
	d := 0
	for _, e := range edits {
		if e.EndLine < line {
			d += e.Delta()
		}
	}
	return d
}

func touches(e domain.Edit, start, end int) bool {
	if e.IsInsert() {
		return start < e.StartLine && e.StartLine <= end
	}
	return start <= e.EndLine && e.StartLine <= end
}

type keptChunk struct {
	chunk domain.Chunk
	delta int
}

// carry renumbers the cached chunks no edit touches and collects the
// re-scan anchors, both in edited-text line numbers.
func (r *Reparser) carry(entry *domain.CacheEntry, edits []domain.Edit, newLines []string, lang domain.Language, rep *Report) ([]keptChunk, []int) {
	old := entry.Result.Chunks
	oldLines := entry.Lines()
	var kept []keptChunk
	anchorSet := map[int]bool{1: true}

	for i, c := range old {
		hit := false
		for _, e := range edits {
			if touches(e, c.StartLine, c.EndLine) {
				hit = true
				break
			}
		}
		if hit {
			rep.Invalidated++
			continue
		}
		delta := shiftAt(edits, c.StartLine)
		kept = append(kept, keptChunk{chunk: c.Shift(delta), delta: delta})

		if !r.isAnchor(old, i, oldLines, lang) {
			continue
		}
		inside := false
		for _, e := range edits {
			if !e.IsInsert() && e.StartLine <= c.StartLine && c.StartLine <= e.EndLine {
				inside = true
				break
			}
		}
		if line := c.StartLine + delta; !inside && line <= len(newLines) {
			anchorSet[line] = true
		}
	}

	anchors := make([]int, 0, len(anchorSet))
	for a := range anchorSet {
		anchors = append(anchors, a)
	}
	sort.Ints(anchors)
	return kept, anchors
}

// isAnchor reports whether chunk i starts at a point where a scan of the
// text can begin in its initial state: a top-level chunk whose first line
// is unindented and accepted by the language.
func (r *Reparser) isAnchor(chunks []domain.Chunk, i int, lines []string, lang domain.Language) bool {
	c := chunks[i]
	for j, other := range chunks {
		if j != i && other.Contains(c) && (other.StartLine != c.StartLine || other.EndLine != c.EndLine || j < i) {
			return false
		}
	}
	if c.StartLine < 1 || c.StartLine > len(lines) {
		return false
	}
	first := lines[c.StartLine-1]
	if strings.TrimSpace(first) == "" || strings.TrimLeft(first, " \t") != first {
		return false
	}
	return r.chunker.SafeAnchor(lang, first)
}

// initialWindows maps each edit to the span between the anchor before it
// and the anchor after it, merging spans that meet.
func initialWindows(edits []domain.Edit, anchors []int, n int) []Window {
	var windows []Window
	shift := 0
	for _, e := range edits {
		ns := e.StartLine + shift
		ne := ns + len(e.NewLines()) - 1
		shift += e.Delta()

		w := Window{Start: 1, End: n}
		for _, a := range anchors {
			if a < ns {
				w.Start = a
			}
		}
		for _, a := range anchors {
			if a > ne && a > w.Start {
				w.End = a - 1
				break
			}
		}
		windows = append(windows, w)
	}
	return mergeWindows(windows)
}

func mergeWindows(windows []Window) []Window {
	sort.Slice(windows, func(i, j int) bool { return windows[i].Start < windows[j].Start })
	var out []Window
	for _, w := range windows {
		if len(out) > 0 && w.Start <= out[len(out)-1].End+1 {
			last := &out[len(out)-1]
			last.End = max(last.End, w.End)
			continue
		}
		out = append(out, w)
	}
	return out
}

func nextAnchorEnd(anchors []int, end, n int) int {
	for _, a := range anchors {
		if a > end+1 {
			return a - 1
		}
	}
	return n
}

// rescan parses every window, widening a window to the next anchor while its
// scan ends unsettled. ok is false when a window other than the whole text
// reaches the end unsettled, in which case only a full parse is safe.
func (r *Reparser) rescan(lines []string, windows []Window, anchors []int, lang domain.Language) ([]domain.Chunk, []Window, bool, error) {
	n := len(lines)
	var done []Window
	var chunks []domain.Chunk

	for len(windows) > 0 {
		w := windows[0]
		windows = windows[1:]

		region := domain.JoinLines(lines[w.Start-1 : w.End])
		parsed, settled, err := r.chunker.ParseRegion(region, lang)
		if err != nil {
			return nil, nil, false, err
		}
		if !settled {
			if w.End >= n {
				if w.Start > 1 {
					return nil, nil, false, nil
				}
			} else {
				w.End = nextAnchorEnd(anchors, w.End, n)
				for len(windows) > 0 && windows[0].Start <= w.End+1 {
					w.End = max(w.End, windows[0].End)
					windows = windows[1:]
				}
				windows = append([]Window{w}, windows...)
				continue
			}
		}
		for _, c := range parsed {
			chunks = append(chunks, c.Shift(w.Start-1))
		}
		done = append(done, w)
	}
	return chunks, done, true, nil
}

func inAny(windows []Window, c domain.Chunk) bool {
	for _, w := range windows {
		if c.StartLine <= w.End && w.Start <= c.EndLine {
			return true
		}
	}
	return false
}
