package chunker

import (
	"strings"

	"codechunk/internal/domain"
)

// Extraction is the chunk list of one scan plus whether the scanner finished
// in its initial state, with nothing open that text after the scanned region
// could still extend.
type Extraction struct {
	Chunks  []domain.Chunk
	Settled bool
}

// LanguageParser is the capability every language processor implements.
type LanguageParser interface {
	Language() domain.Language

	ExtractChunks(content string) Extraction

	ExtractImports(content string) []domain.ImportRecord

	ExtractExports(content string) []domain.ExportRecord
}

// anchorable is implemented by processors that restrict which top-level
// chunk starts are safe re-scan boundaries beyond the zero-indent rule.
type anchorable interface {
	SafeAnchor(line string) bool
}

// decl is a declaration found by a signature matcher, in 0-based lines.
type decl struct {
	kind       domain.ChunkKind
	name       string
	start      int
	end        int
	confidence float64
	meta       domain.Metadata
	open       bool

	container bool
	bodyLine  int
	bodyOpen  int
	bodyDepth int
	frameName string
}

// frame is one level of the brace-depth-scoped stack: the top-level scope,
// a class-like body whose declarations become methods, or a plain block
// (module, type group) scanned with the top-level rules.
type frame struct {
	class   string
	module  bool
	depth   int
	endLine int
}

// matcher recognizes a declaration on line, reading its masked text from
// column col.
type matcher func(s *source, line, col int, top frame) *decl

// textAt returns masked line i from column col without its leading blanks,
// and the position in the masked text where it starts.
func (s *source) textAt(i, col int) (string, int) {
	line := s.mlines[i][col:]
	indent := len(line) - len(strings.TrimLeft(line, " \t"))
	return line[indent:], s.starts[i] + col + indent
}

// scanFrames walks lines with an explicit frame stack, handing each line that
// sits directly inside the innermost frame to match. A member sharing a line
// with the brace that opens its container is matched from just after that
// brace.
func scanFrames(s *source, match matcher) ([]domain.Chunk, bool) {
	var chunks []domain.Chunk
	open := false
	stack := []frame{{depth: 0, endLine: len(s.lines) - 1}}
	consumed := -1

	for i := 0; i < len(s.lines); i++ {
		for len(stack) > 1 && i > stack[len(stack)-1].endLine {
			stack = stack[:len(stack)-1]
		}
		if i <= consumed {
			continue
		}
		top := stack[len(stack)-1]
		if s.depth[i] != top.depth || s.states[i].inComment || s.states[i].inString || s.blank(i) {
			continue
		}

		line, col := i, 0
		for {
			d := match(s, line, col, top)
			if d == nil {
				break
			}
			if d.open {
				open = true
			}
			if d.kind != "" {
				start := d.start
				if col == 0 {
					start = s.foldLeading(d.start)
				}
				chunks = append(chunks, s.newChunk(d.kind, d.name, start, d.end, d.confidence, d.meta))
			}
			if !d.container || d.open {
				consumed = max(consumed, d.end)
				break
			}
			top = frame{
				class:   d.frameName,
				module:  d.kind == "",
				depth:   d.bodyDepth,
				endLine: d.end,
			}
			stack = append(stack, top)
			consumed = d.bodyLine
			line, col = d.bodyLine, d.bodyOpen+1-s.starts[d.bodyLine]
			if d.end == d.bodyLine || strings.TrimSpace(s.mlines[line][col:]) == "" {
				break
			}
		}
	}
	return chunks, !open
}

// depthAt returns the bracket depth just before pos.
func (s *source) depthAt(pos int) int {
	line := s.lineOf(pos)
	d := s.depth[line]
	for i := s.starts[line]; i < pos; i++ {
		switch s.masked[i] {
		case '{', '(', '[':
			d++
		case '}', ')', ']':
			d--
		}
	}
	return d
}

// blockDecl finishes a declaration whose body opens with the brace at open.
func (s *source) blockDecl(d *decl, open int) *decl {
	closePos := s.matchClose(open)
	if closePos < 0 {
		d.end = len(s.lines) - 1
		d.confidence = confidenceFloor
		d.open = true
		return d
	}
	d.end = s.lineOf(closePos)
	d.confidence = confidenceExact
	d.bodyLine = s.lineOf(open)
	d.bodyOpen = open
	d.bodyDepth = s.depthAt(open) + 1
	return d
}

// bodyDecl resolves the body of a signature starting at from.
func (s *source) bodyDecl(d *decl, from int, typeBrace func(int) bool, newlineEnds bool) *decl {
	kind, pos := s.findBody(from, typeBrace, newlineEnds)
	switch kind {
	case bodyBlock:
		return s.blockDecl(d, pos)
	case bodyTerminator:
		d.end = s.lineOf(pos)
		if d.end < d.start {
			d.end = d.start
		}
		d.confidence = confidenceExact
		d.container = false
		return d
	}
	d.container = false
	d.confidence = confidenceFloor
	if pos >= len(s.masked) {
		d.open = true
		d.end = len(s.lines) - 1
		return d
	}
	d.end = s.lineOf(pos)
	if d.end > d.start && (s.masked[pos] == '}' || s.masked[pos] == ')' || s.masked[pos] == ']') {
		d.end--
	}
	if d.end < d.start {
		d.end = d.start
	}
	return d
}

// exprDecl finishes a declaration whose value is an expression starting at
// from, scaling confidence down for each nested arrow body.
func (s *source) exprDecl(d *decl, from int, base float64) *decl {
	endPos, stop := s.exprEnd(from)
	d.end = s.lineOf(endPos)
	if d.end < d.start {
		d.end = d.start
	}
	switch stop {
	case stopUnterminated:
		d.confidence = confidenceFloor
		d.open = true
		return d
	case stopSemicolon:
		d.confidence = base
	default:
		d.confidence = base - (confidenceExpression - confidenceLineEnd)
	}
	for n := s.countNested(from, endPos, "=>"); n > 0; n-- {
		d.confidence *= nestedArrowFactor
	}
	if d.confidence < confidenceFloor {
		d.confidence = confidenceFloor
	}
	return d
}
