package chunker

import (
	"regexp"
	"strings"

	"codechunk/internal/domain"
)

var (
	rePythonDef       = regexp.MustCompile(`^(async\s+)?def\s+([A-Za-z_]\w*)`)
	rePythonClass     = regexp.MustCompile(`^class\s+([A-Za-z_]\w*)\s*(\(([^)]*)\))?`)
	rePythonDecorator = regexp.MustCompile(`^@\s*([\w.]+)`)
	rePythonImport    = regexp.MustCompile(`^import\s+(.+)$`)
	rePythonFrom      = regexp.MustCompile(`^from\s+([\w.]+)\s+import\s+(.+)$`)
	rePythonAll       = regexp.MustCompile(`(?m)(?:^|;[ \t]*)__all__\s*(?::[^=]*)?=\s*[\[(]([^\])]*)[\])]`)
	rePythonQuoted    = regexp.MustCompile(`['"]([^'"]+)['"]`)
)

type PythonParser struct {
	lex               *lexicon
	includeDocstrings bool
}

func NewPythonParser(opts LanguageOptions) *PythonParser {
	return &PythonParser{
		lex: &lexicon{
			lineComments: []string{"#"},
			quotes:       `"'`,
			tripleQuotes: true,
		},
		includeDocstrings: opts.Bool("include_docstrings", true),
	}
}

func (p *PythonParser) Language() domain.Language {
	return domain.LangPython
}

// SafeAnchor rejects comment lines: comments never close a Python block, so
// a re-scan may not start on one.
func (p *PythonParser) SafeAnchor(line string) bool {
	return !strings.HasPrefix(strings.TrimSpace(line), "#")
}

type pyFrame struct {
	chunk  int
	indent int
	class  bool
	name   string
	header int
}

func (p *PythonParser) ExtractChunks(content string) Extraction {
	s := newSource(content, p.lex)
	var chunks []domain.Chunk
	var frames []pyFrame
	lastCode := -1
	pendingDecorator := -1
	open := false

	closeFrame := func(f pyFrame) {
		end := max(lastCode, f.header)
		c := &chunks[f.chunk]
		c.EndLine = end + 1
		c.Code = s.code(c.StartLine-1, end)
		if end == f.header && strings.HasSuffix(strings.TrimSpace(s.mlines[f.header]), ":") {
			c.Confidence = confidenceFloor
			open = true
		}
	}

	for i := range s.lines {
		if s.blank(i) {
			continue
		}
		if p.continuation(s, i, lastCode) {
			lastCode = i
			continue
		}
		indent := indentOf(s.lines[i])
		for len(frames) > 0 && frames[len(frames)-1].indent >= indent {
			closeFrame(frames[len(frames)-1])
			frames = frames[:len(frames)-1]
		}

		text := strings.TrimSpace(s.mlines[i])
		if rePythonDecorator.MatchString(text) {
			if pendingDecorator < 0 {
				pendingDecorator = i
			}
			lastCode = i
			continue
		}

		start := i
		if pendingDecorator >= 0 && indentOf(s.lines[pendingDecorator]) == indent {
			start = pendingDecorator
		}
		decorators := p.decorators(s, pendingDecorator, i)
		pendingDecorator = -1
		lastCode = i

		var parent *pyFrame
		if len(frames) > 0 {
			parent = &frames[len(frames)-1]
		}
		header := p.headerEnd(s, i)

		if m := rePythonDef.FindStringSubmatch(text); m != nil {
			meta := &domain.PythonMeta{
				Decorators: decorators,
				IsAsync:    m[1] != "",
				Docstring:  p.docstring(s, header, indent),
			}
			kind := domain.KindFunction
			if parent != nil && parent.class {
				kind = domain.KindMethod
				meta.ClassName = parent.name
			}
			chunks = append(chunks, s.newChunk(kind, m[2], s.foldLeading(start), header, confidenceExact, meta))
			frames = append(frames, pyFrame{chunk: len(chunks) - 1, indent: indent, name: m[2], header: header})
			continue
		}
		if m := rePythonClass.FindStringSubmatch(text); m != nil {
			meta := &domain.PythonMeta{
				Decorators: decorators,
				Bases:      splitNames(m[3]),
				Docstring:  p.docstring(s, header, indent),
			}
			chunks = append(chunks, s.newChunk(domain.KindClass, m[1], s.foldLeading(start), header, confidenceExact, meta))
			frames = append(frames, pyFrame{chunk: len(chunks) - 1, indent: indent, class: true, name: m[1], header: header})
		}
	}
	for len(frames) > 0 {
		closeFrame(frames[len(frames)-1])
		frames = frames[:len(frames)-1]
	}

	settled := !open && pendingDecorator < 0 && s.settled() && !endsWithBackslash(s, lastCode)
	return Extraction{Chunks: chunks, Settled: settled}
}

// continuation reports whether line i continues the logical line before it:
// inside an open bracket, after a backslash, or after a string that spans
// lines.
func (p *PythonParser) continuation(s *source, i, lastCode int) bool {
	return s.depth[i] > 0 || s.states[i].inString || endsWithBackslash(s, lastCode)
}

func endsWithBackslash(s *source, i int) bool {
	if i < 0 {
		return false
	}
	return strings.HasSuffix(strings.TrimRight(s.mlines[i], " \t\r"), "\\")
}

// headerEnd returns the last line of the logical line starting at i.
func (p *PythonParser) headerEnd(s *source, i int) int {
	end := i
	for j := i + 1; j < len(s.lines); j++ {
		if s.blank(j) {
			continue
		}
		if !p.continuation(s, j, end) {
			break
		}
		end = j
	}
	return end
}

func (p *PythonParser) decorators(s *source, from, to int) []string {
	if from < 0 {
		return nil
	}
	var names []string
	for j := from; j < to; j++ {
		if m := rePythonDecorator.FindStringSubmatch(strings.TrimSpace(s.mlines[j])); m != nil {
			names = append(names, m[1])
		}
	}
	return names
}

// docstring returns the string literal opening the body after header, if
// any.
func (p *PythonParser) docstring(s *source, header, indent int) string {
	if !p.includeDocstrings {
		return ""
	}
	j := header + 1
	for j < len(s.lines) && strings.TrimSpace(s.lines[j]) == "" {
		j++
	}
	if j >= len(s.lines) || indentOf(s.lines[j]) <= indent {
		return ""
	}
	rest := strings.TrimSpace(strings.Join(s.lines[j:], "\n"))
	rest = strings.TrimLeft(rest, "rRuUbBfF")
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if !strings.HasPrefix(rest, q) {
			continue
		}
		end := strings.Index(rest[len(q):], q)
		if end < 0 {
			return ""
		}
		return strings.TrimSpace(rest[len(q) : len(q)+end])
	}
	return ""
}

func splitNames(list string) []string {
	var names []string
	for _, part := range strings.Split(list, ",") {
		if part = strings.TrimSpace(part); part != "" {
			names = append(names, part)
		}
	}
	return names
}

// logicalLines yields each statement's masked text with continuation lines
// joined, together with its first line index.
func (p *PythonParser) logicalLines(s *source) (starts []int, texts []string) {
	for i := 0; i < len(s.lines); i++ {
		if s.blank(i) || p.continuation(s, i, i-1) {
			continue
		}
		end := p.headerEnd(s, i)
		parts := make([]string, 0, end-i+1)
		for j := i; j <= end; j++ {
			parts = append(parts, strings.TrimRight(strings.TrimSpace(s.mlines[j]), "\\"))
		}
		starts = append(starts, i)
		texts = append(texts, strings.Join(parts, " "))
		i = end
	}
	return starts, texts
}

func (p *PythonParser) ExtractImports(content string) []domain.ImportRecord {
	s := newSource(content, p.lex)
	var imports []domain.ImportRecord
	_, lines := p.logicalLines(s)
	var texts []string
	for _, line := range lines {
		for _, stmt := range strings.Split(line, ";") {
			if stmt = strings.TrimSpace(stmt); stmt != "" {
				texts = append(texts, stmt)
			}
		}
	}
	for _, text := range texts {
		if m := rePythonFrom.FindStringSubmatch(text); m != nil {
			clause := strings.Trim(strings.TrimSpace(m[2]), "()")
			names, alias := parseNameList(clause, " as ")
			imports = append(imports, domain.ImportRecord{Module: m[1], Names: names, Alias: alias})
			continue
		}
		if strings.HasPrefix(text, "from ") {
			// relative form: from . import x
			if module, clause, ok := strings.Cut(strings.TrimPrefix(text, "from "), " import "); ok {
				names, alias := parseNameList(strings.Trim(strings.TrimSpace(clause), "()"), " as ")
				imports = append(imports, domain.ImportRecord{Module: strings.TrimSpace(module), Names: names, Alias: alias})
			}
			continue
		}
		if m := rePythonImport.FindStringSubmatch(text); m != nil {
			names, alias := parseNameList(m[1], " as ")
			imports = append(imports, domain.ImportRecord{Module: "", Names: names, Alias: alias})
		}
	}
	return imports
}

func (p *PythonParser) ExtractExports(content string) []domain.ExportRecord {
	s := newSource(content, p.lex)
	if loc := rePythonAll.FindStringSubmatchIndex(s.masked); loc != nil {
		var names []string
		for _, q := range rePythonQuoted.FindAllStringSubmatch(content[loc[2]:loc[3]], -1) {
			names = append(names, q[1])
		}
		return []domain.ExportRecord{{Names: domain.NameSet(names)}}
	}

	var exports []domain.ExportRecord
	starts, texts := p.logicalLines(s)
	for k, text := range texts {
		if indentOf(s.lines[starts[k]]) != 0 {
			continue
		}
		name := ""
		if m := rePythonDef.FindStringSubmatch(text); m != nil {
			name = m[2]
		} else if m := rePythonClass.FindStringSubmatch(text); m != nil {
			name = m[1]
		}
		if name != "" && !strings.HasPrefix(name, "_") {
			exports = append(exports, domain.ExportRecord{Names: []string{name}})
		}
	}
	return exports
}
