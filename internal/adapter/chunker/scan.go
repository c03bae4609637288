package chunker

import (
	"sort"
	"strings"

	"codechunk/internal/domain"
)

const (
	confidenceExact      = 1.0
	confidenceExpression = 0.8
	confidenceLineEnd    = 0.7
	confidenceBinding    = 0.9
	confidenceFloor      = 0.3
	nestedArrowFactor    = 0.9
)

// stmtStart anchors a pattern on masked text to the start of a statement:
// the start of a line or just after a semicolon.
const stmtStart = `(?m)(?:^|;)[ \t]*`

// statementEnds reports whether the masked text at pos ends a statement.
func statementEnds(m string, pos int) bool {
	return pos >= len(m) || m[pos] == ';' || m[pos] == '\n' || m[pos] == '\r'
}

// lineStatements splits masked line i at the semicolons outside brackets
// opened on that line and returns the column range of each piece.
func (s *source) lineStatements(i int) [][2]int {
	line := s.mlines[i]
	var out [][2]int
	d, from := 0, 0
	for k := 0; k < len(line); k++ {
		switch line[k] {
		case '{', '(', '[':
			d++
		case '}', ')', ']':
			d--
		case ';':
			if d <= 0 {
				out = append(out, [2]int{from, k})
				from = k + 1
			}
		}
	}
	return append(out, [2]int{from, len(line)})
}

// lexicon describes the lexical surface a scanner must mask before it can
// count delimiters.
type lexicon struct {
	lineComments    []string
	blockComments   bool
	nestedBlocks    bool
	quotes          string
	multilineQuotes string
	rawQuote        byte
	tripleQuotes    bool
	templates       bool
	rustChars       bool
	rustRaw         bool
	regexLiterals   bool
	attachments     []string
}

type lexMode int

const (
	modeCode lexMode = iota
	modeLineComment
	modeBlockComment
	modeString
	modeTriple
	modeTemplate
	modeRaw
	modeRustRaw
)

type lineState struct {
	inString  bool
	inComment bool
}

// source is a text split into raw and masked lines. Masked text has the
// same byte layout as the raw text, with comment bodies and string contents
// replaced by spaces, so delimiter counting never sees them.
type source struct {
	lex        *lexicon
	lines      []string
	masked     string
	mlines     []string
	states     []lineState
	depth      []int
	starts     []int
	openAtEOF  bool
	finalDepth int
	minDepth   int
}

func newSource(text string, lex *lexicon) *source {
	s := &source{lex: lex, lines: domain.SplitLines(text)}
	s.mask(text)
	s.mlines = strings.Split(s.masked, "\n")
	s.starts = make([]int, len(s.lines))
	pos := 0
	for i, l := range s.lines {
		s.starts[i] = pos
		pos += len(l) + 1
	}
	return s
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

func (s *source) mask(text string) {
	b := []byte(text)
	out := make([]byte, len(b))
	copy(out, b)
	lex := s.lex

	mode := modeCode
	var quote byte
	multiline := false
	escapedNewline := false
	blockLevel := 0
	rawHashes := 0
	var tmpl []int
	depth := 0
	var prev byte

	blank := func(i int) {
		if i < len(out) && out[i] != '\n' {
			out[i] = ' '
		}
	}

	s.states = append(s.states, lineState{})
	s.depth = append(s.depth, 0)

	for i := 0; i < len(b); i++ {
		c := b[i]
		if c == '\n' {
			switch mode {
			case modeLineComment:
				mode = modeCode
			case modeString:
				if !multiline && !escapedNewline {
					mode = modeCode
				}
			}
			escapedNewline = false
			s.states = append(s.states, lineState{
				inString:  mode == modeString || mode == modeTriple || mode == modeTemplate || mode == modeRaw || mode == modeRustRaw,
				inComment: mode == modeBlockComment,
			})
			s.depth = append(s.depth, depth)
			continue
		}

		switch mode {
		case modeCode:
			next := byte(0)
			if i+1 < len(b) {
				next = b[i+1]
			}
			if lex.blockComments && c == '/' && next == '*' {
				mode = modeBlockComment
				blockLevel = 1
				blank(i)
				blank(i + 1)
				i++
				continue
			}
			if lex.lineCommentAt(b, i) {
				mode = modeLineComment
				blank(i)
				continue
			}
			if lex.tripleQuotes && (c == '"' || c == '\'') && i+2 < len(b) && b[i+1] == c && b[i+2] == c {
				mode = modeTriple
				quote = c
				blank(i)
				blank(i + 1)
				blank(i + 2)
				i += 2
				prev = 'a'
				continue
			}
			if lex.rustRaw && (c == 'r' || c == 'b') && (i == 0 || !isIdentByte(b[i-1])) {
				j := i + 1
				if c == 'b' && j < len(b) && b[j] == 'r' {
					j++
				} else if c == 'b' {
					j = -1
				}
				if j > 0 {
					hashes := 0
					for j < len(b) && b[j] == '#' {
						hashes++
						j++
					}
					if j < len(b) && b[j] == '"' {
						mode = modeRustRaw
						rawHashes = hashes
						i = j
						prev = 'a'
						continue
					}
				}
			}
			if lex.rustChars && c == '\'' {
				if end := rustCharEnd(b, i); end > 0 {
					for k := i + 1; k < end; k++ {
						blank(k)
					}
					i = end
					prev = 'a'
					continue
				}
				prev = 'a'
				continue
			}
			if lex.rawQuote != 0 && c == lex.rawQuote {
				mode = modeRaw
				quote = c
				continue
			}
			if lex.templates && c == '`' {
				mode = modeTemplate
				continue
			}
			if strings.IndexByte(lex.quotes, c) >= 0 {
				mode = modeString
				quote = c
				multiline = strings.IndexByte(lex.multilineQuotes, c) >= 0
				continue
			}
			if lex.regexLiterals && c == '/' && regexAllowed(b, i, prev) {
				if end := regexEnd(b, i); end > 0 {
					for k := i + 1; k < end; k++ {
						blank(k)
					}
					i = end
					prev = 'a'
					continue
				}
			}
			if len(tmpl) > 0 {
				top := len(tmpl) - 1
				if c == '{' {
					tmpl[top]++
				} else if c == '}' {
					if tmpl[top] == 0 {
						tmpl = tmpl[:top]
						mode = modeTemplate
						blank(i)
						continue
					}
					tmpl[top]--
				}
			}
			switch c {
			case '{', '(', '[':
				depth++
			case '}', ')', ']':
				depth--
				s.minDepth = min(s.minDepth, depth)
			}
			if c != ' ' && c != '\t' && c != '\r' {
				prev = c
			}

		case modeLineComment:
			blank(i)

		case modeBlockComment:
			next := byte(0)
			if i+1 < len(b) {
				next = b[i+1]
			}
			if lex.nestedBlocks && c == '/' && next == '*' {
				blockLevel++
				blank(i)
				blank(i + 1)
				i++
				continue
			}
			if c == '*' && next == '/' {
				blockLevel--
				blank(i)
				blank(i + 1)
				i++
				if blockLevel == 0 {
					mode = modeCode
				}
				continue
			}
			blank(i)

		case modeString:
			if c == '\\' {
				blank(i)
				if i+1 < len(b) {
					if b[i+1] == '\n' {
						escapedNewline = true
					} else {
						blank(i + 1)
						i++
					}
				}
				continue
			}
			if c == quote {
				mode = modeCode
				prev = c
				continue
			}
			blank(i)

		case modeTriple:
			blank(i)
			if c == '\\' && i+1 < len(b) && b[i+1] != '\n' {
				blank(i + 1)
				i++
				continue
			}
			if c == quote && i+2 < len(b) && b[i+1] == quote && b[i+2] == quote {
				blank(i + 1)
				blank(i + 2)
				i += 2
				mode = modeCode
			}

		case modeRaw:
			if c == quote {
				mode = modeCode
				prev = 'a'
				continue
			}
			blank(i)

		case modeRustRaw:
			if c == '"' && i+rawHashes < len(b) && strings.Count(string(b[i+1:i+1+rawHashes]), "#") == rawHashes {
				i += rawHashes
				mode = modeCode
				continue
			}
			blank(i)

		case modeTemplate:
			if c == '\\' {
				blank(i)
				if i+1 < len(b) && b[i+1] != '\n' {
					blank(i + 1)
					i++
				}
				continue
			}
			if c == '`' {
				mode = modeCode
				prev = 'a'
				continue
			}
			if c == '$' && i+1 < len(b) && b[i+1] == '{' {
				blank(i)
				blank(i + 1)
				i++
				tmpl = append(tmpl, 0)
				mode = modeCode
				continue
			}
			blank(i)
		}
	}

	s.masked = string(out)
	s.openAtEOF = (mode != modeCode && mode != modeLineComment) || len(tmpl) > 0
	s.finalDepth = depth
}

func (lex *lexicon) lineCommentAt(b []byte, i int) bool {
	for _, marker := range lex.lineComments {
		if i+len(marker) <= len(b) && string(b[i:i+len(marker)]) == marker {
			return true
		}
	}
	return false
}

// rustCharEnd returns the index of the closing quote of a char literal, or
// -1 when the quote starts a lifetime.
func rustCharEnd(b []byte, i int) int {
	if i+2 < len(b) && b[i+1] == '\\' {
		for j := i + 2; j < len(b) && j < i+12; j++ {
			if b[j] == '\'' {
				return j
			}
			if b[j] == '\n' {
				return -1
			}
		}
		return -1
	}
	if i+2 < len(b) && b[i+2] == '\'' && b[i+1] != '\n' {
		return i + 2
	}
	// multi-byte utf-8 char literal
	for j := i + 1; j < len(b) && j <= i+5; j++ {
		if b[j] == '\'' {
			if j > i+2 && b[i+1] >= 0x80 {
				return j
			}
			return -1
		}
		if b[j] < 0x80 {
			if j > i+1 {
				return -1
			}
		}
	}
	return -1
}

var regexKeywords = map[string]bool{
	"return": true, "typeof": true, "case": true, "do": true, "else": true,
	"in": true, "of": true, "void": true, "yield": true, "await": true,
}

func regexAllowed(b []byte, i int, prev byte) bool {
	if i+1 < len(b) && (b[i+1] == '/' || b[i+1] == '*') {
		return false
	}
	if prev == 0 {
		return true
	}
	if prev == '<' {
		return false
	}
	if strings.IndexByte("(,=:[!&|?{};+-*%>~^", prev) >= 0 {
		return true
	}
	j := i - 1
	for j >= 0 && (b[j] == ' ' || b[j] == '\t') {
		j--
	}
	end := j + 1
	for j >= 0 && isIdentByte(b[j]) {
		j--
	}
	return regexKeywords[string(b[j+1:end])]
}

func regexEnd(b []byte, i int) int {
	inClass := false
	for j := i + 1; j < len(b); j++ {
		switch b[j] {
		case '\n':
			return -1
		case '\\':
			j++
		case '[':
			inClass = true
		case ']':
			inClass = false
		case '/':
			if !inClass {
				return j
			}
		}
	}
	return -1
}

func (s *source) lineOf(pos int) int {
	return sort.Search(len(s.starts), func(i int) bool { return s.starts[i] > pos }) - 1
}

func (s *source) lineEnd(i int) int {
	return s.starts[i] + len(s.lines[i])
}

func (s *source) code(start, end int) string {
	return strings.Join(s.lines[start:end+1], "\n")
}

// newChunk builds a chunk from 0-based line indexes.
func (s *source) newChunk(kind domain.ChunkKind, name string, start, end int, confidence float64, meta domain.Metadata) domain.Chunk {
	return domain.Chunk{
		Kind:       kind,
		Name:       name,
		StartLine:  start + 1,
		EndLine:    end + 1,
		Code:       s.code(start, end),
		Confidence: confidence,
		Meta:       meta,
	}
}

func (s *source) blank(i int) bool {
	return strings.TrimSpace(s.mlines[i]) == ""
}

func (s *source) isCommentLine(i int) bool {
	if s.states[i].inString || !s.blank(i) {
		return false
	}
	raw := strings.TrimSpace(s.lines[i])
	if raw == "" {
		return false
	}
	if s.states[i].inComment {
		return true
	}
	if s.lex.blockComments && strings.HasPrefix(raw, "/*") {
		return true
	}
	for _, marker := range s.lex.lineComments {
		if strings.HasPrefix(raw, marker) {
			return true
		}
	}
	return false
}

func (s *source) isAttachment(i int) bool {
	m := strings.TrimSpace(s.mlines[i])
	for _, prefix := range s.lex.attachments {
		if strings.HasPrefix(m, prefix) {
			return true
		}
	}
	return false
}

// foldLeading extends a declaration starting at line start upward over the
// comment and attachment lines directly above it at the same indentation.
func (s *source) foldLeading(start int) int {
	indent := indentOf(s.lines[start])
	top := start
	for i := start - 1; i >= 0; i-- {
		if s.isCommentLine(i) {
			if s.states[i].inComment || indentOf(s.lines[i]) == indent {
				top = i
				continue
			}
			break
		}
		if s.isAttachment(i) && indentOf(s.lines[i]) == indent {
			top = i
			continue
		}
		break
	}
	for top < start && s.states[top].inComment {
		top++
	}
	return top
}

// lastContent returns the index of the last line with code or comment text.
func (s *source) lastContent() int {
	for i := len(s.lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(s.lines[i]) != "" {
			return i
		}
	}
	return -1
}

// trailingAttachable reports whether the final non-blank line would fold
// into a declaration that follows it.
func (s *source) trailingAttachable() bool {
	i := s.lastContent()
	if i < 0 {
		return false
	}
	return s.isCommentLine(i) || s.isAttachment(i)
}

func indentOf(line string) int {
	n := 0
	for _, c := range line {
		switch c {
		case ' ':
			n++
		case '\t':
			n += 4
		default:
			return n
		}
	}
	return n
}

// matchClose returns the position of the bracket closing the one at open,
// or -1 when the text ends first.
func (s *source) matchClose(open int) int {
	d := 0
	for i := open; i < len(s.masked); i++ {
		switch s.masked[i] {
		case '{', '(', '[':
			d++
		case '}', ')', ']':
			d--
			if d == 0 {
				return i
			}
		}
	}
	return -1
}

type bodyKind int

const (
	bodyNone bodyKind = iota
	bodyBlock
	bodyTerminator
)

// findBody scans forward from a signature for the opening brace of its body
// or the terminator of a body-less declaration. typeBrace reports whether a
// brace at pos opens a type literal rather than the body.
func (s *source) findBody(from int, typeBrace func(pos int) bool, newlineEnds bool) (bodyKind, int) {
	p := 0
	m := s.masked
	for i := from; i < len(m); i++ {
		switch m[i] {
		case '(', '[':
			p++
		case ')', ']':
			p--
			if p < 0 {
				return bodyNone, i
			}
		case '{':
			if p > 0 || (typeBrace != nil && typeBrace(i)) {
				j := s.matchClose(i)
				if j < 0 {
					return bodyNone, len(m)
				}
				i = j
				continue
			}
			return bodyBlock, i
		case '}':
			if p == 0 {
				return bodyNone, i
			}
			p--
		case ';':
			if p == 0 {
				return bodyTerminator, i
			}
		case '\n':
			if p == 0 && newlineEnds && !continues(s.mlines[s.lineOf(i)]) {
				return bodyTerminator, i - 1
			}
		}
	}
	return bodyNone, len(m)
}

type exprStop int

const (
	stopSemicolon exprStop = iota
	stopLineEnd
	stopEnclosing
	stopEOF
	stopUnterminated
)

// exprEnd finds where an expression starting at from ends: a terminator at
// depth zero, the end of a line that does not continue, or a closer that
// belongs to an enclosing construct.
func (s *source) exprEnd(from int) (int, exprStop) {
	d := 0
	m := s.masked
	for i := from; i < len(m); i++ {
		switch m[i] {
		case '{', '(', '[':
			d++
		case '}', ')', ']':
			d--
			if d < 0 {
				return i - 1, stopEnclosing
			}
		case ';':
			if d == 0 {
				return i, stopSemicolon
			}
		case ',':
			if d == 0 {
				return i, stopEnclosing
			}
		case '\n':
			if d != 0 {
				continue
			}
			line := s.lineOf(i)
			upto := m[s.starts[line]:i]
			if s.starts[line] < from {
				upto = m[from:i]
			}
			if strings.TrimSpace(upto) == "" || continues(upto) || s.continuedBelow(line) {
				continue
			}
			return i - 1, stopLineEnd
		}
	}
	if d == 0 {
		return len(m) - 1, stopEOF
	}
	return len(m) - 1, stopUnterminated
}

// continues reports whether a masked line ends in a token that requires the
// expression to carry on to the next line.
func continues(line string) bool {
	t := strings.TrimRight(line, " \t\r")
	if t == "" {
		return false
	}
	return strings.IndexByte("=({[,+-*/%&|^!~?:<>.\\", t[len(t)-1]) >= 0
}

// continuedBelow reports whether the next non-blank masked line after line
// opens with an operator that joins it to the expression above, as in a
// method chain broken before each dot.
func (s *source) continuedBelow(line int) bool {
	for j := line + 1; j < len(s.mlines); j++ {
		t := strings.TrimLeft(s.mlines[j], " \t\r")
		if t == "" {
			continue
		}
		return leadsContinuation(t)
	}
	return false
}

func leadsContinuation(t string) bool {
	switch {
	case strings.HasPrefix(t, "++"), strings.HasPrefix(t, "--"):
		return false
	case t[0] == '*':
		// a generator member, not a product
		return len(t) == 1 || !isIdentByte(t[1])
	}
	return strings.IndexByte(".?:&|+-/%=<>^", t[0]) >= 0
}

// skipSpace returns the first non-whitespace position at or after i.
func (s *source) skipSpace(i int) int {
	for i < len(s.masked) {
		switch s.masked[i] {
		case ' ', '\t', '\r', '\n':
			i++
		default:
			return i
		}
	}
	return i
}

func (s *source) prevNonSpace(i int) (byte, int) {
	for j := i - 1; j >= 0; j-- {
		switch s.masked[j] {
		case ' ', '\t', '\r', '\n':
			continue
		default:
			return s.masked[j], j
		}
	}
	return 0, -1
}

func (s *source) wordBefore(i int) string {
	_, j := s.prevNonSpace(i)
	if j < 0 {
		return ""
	}
	end := j + 1
	for j >= 0 && isIdentByte(s.masked[j]) {
		j--
	}
	return s.masked[j+1 : end]
}

// settled reports whether scanning ended at top level with nothing open
// that a following line could continue, and never closed a bracket opened
// before the text began.
func (s *source) settled() bool {
	return !s.openAtEOF && s.finalDepth == 0 && s.minDepth == 0 && !s.trailingAttachable()
}

// countNested counts occurrences of sub in the masked span [from, to].
func (s *source) countNested(from, to int, sub string) int {
	if from < 0 || to >= len(s.masked) || from > to {
		return 0
	}
	return strings.Count(s.masked[from:to+1], sub)
}
