package chunker

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"codechunk/internal/domain"
)

var (
	reGoFunc     = regexp.MustCompile(`^func\s*(\(([^)]*)\))?\s*([A-Za-z_]\w*)\s*(\[[^\]]*\])?\s*\(`)
	reGoType     = regexp.MustCompile(`^type\s+([A-Za-z_]\w*)\s*(\[\w+\s+[^\]]+\])?\s*(=\s*)?`)
	reGoTypeSpec = regexp.MustCompile(`^([A-Za-z_]\w*)\s*(\[\w+\s+[^\]]+\])?\s*(=\s*)?`)
	reGoGroup    = regexp.MustCompile(`^type\s*\(`)
	reGoImport   = regexp.MustCompile(`^\s*(?:import\s+)?([\w.]+\s+)?["` + "`" + `]([^"` + "`" + `]+)["` + "`" + `]`)
	reGoValue    = regexp.MustCompile(`^(?:var|const)\s+([A-Z]\w*)`)
	reGoGroupVal = regexp.MustCompile(`^([A-Z]\w*)\b`)

	reGoStatement = regexp.MustCompile(`\bgo\s+[\w(]`)
	reGoChanOp    = regexp.MustCompile(`<-|\bmake\(\s*chan\b`)
	reGoMutexOp   = regexp.MustCompile(`\.(?:R?Lock|R?Unlock|TryR?Lock)\(\)`)
	reGoWaitOp    = regexp.MustCompile(`\.(?:Add\(\s*-?\d+\s*\)|Done\(\)|Wait\(\))`)
	reGoSelect    = regexp.MustCompile(`\bselect\s*\{`)
	reGoMutex     = regexp.MustCompile(`\bsync\.(?:RW)?Mutex\b`)
	reGoWaitGroup = regexp.MustCompile(`\bsync\.WaitGroup\b`)
	reGoChanType  = regexp.MustCompile(`\bchan\b`)
)

type GoParser struct {
	lex               *lexicon
	detectConcurrency bool
}

func NewGoParser(opts LanguageOptions) *GoParser {
	return &GoParser{
		lex: &lexicon{
			lineComments:  []string{"//"},
			blockComments: true,
			quotes:        `"'`,
			rawQuote:      '`',
		},
		detectConcurrency: opts.Bool("detect_concurrency", true),
	}
}

func (p *GoParser) Language() domain.Language {
	return domain.LangGo
}

// SafeAnchor accepts only lines that open a top-level declaration or its
// doc comment, never an unindented spec inside a type group.
func (p *GoParser) SafeAnchor(line string) bool {
	for _, prefix := range []string{"func", "type", "//", "/*"} {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

func (p *GoParser) ExtractChunks(content string) Extraction {
	s := newSource(content, p.lex)
	chunks, closed := scanFrames(s, p.match)
	return Extraction{Chunks: chunks, Settled: closed && s.settled()}
}

// goTypeBrace skips struct and interface literals appearing in signatures.
func goTypeBrace(s *source) func(int) bool {
	return func(pos int) bool {
		switch s.wordBefore(pos) {
		case "struct", "interface":
			return true
		}
		return false
	}
}

func (p *GoParser) match(s *source, i, col int, top frame) *decl {
	text, base := s.textAt(i, col)

	if top.module {
		if m := reGoTypeSpec.FindStringSubmatchIndex(text); m != nil {
			return p.typeDecl(s, i, text, base, m)
		}
		return nil
	}

	if m := reGoFunc.FindStringSubmatchIndex(text); m != nil {
		name := text[m[6]:m[7]]
		meta := &domain.GoMeta{GoType: "func", IsExported: exported(name)}
		if m[8] >= 0 {
			meta.TypeParams = strings.Trim(text[m[8]:m[9]], "[]")
		}
		if m[2] >= 0 {
			meta.GoType = "method"
			meta.Receiver, meta.ReceiverType = splitReceiver(s.rawSpan(base+m[4], base+m[5]))
		}
		d := &decl{kind: domain.KindFunction, name: name, start: i, meta: meta}
		d = s.bodyDecl(d, base+m[1]-1, goTypeBrace(s), true)
		if p.detectConcurrency {
			if cp := concurrencyOf(s, d.start, d.end); cp.Any() {
				meta.ConcurrencyPatterns = &cp
			}
		}
		return d
	}

	if reGoGroup.MatchString(text) {
		open := base + strings.IndexByte(text, '(')
		d := &decl{start: i, container: true}
		return s.blockDecl(d, open)
	}

	if m := reGoType.FindStringSubmatchIndex(text); m != nil {
		return p.typeDecl(s, i, text, base, m)
	}
	return nil
}

// typeDecl handles one type spec whose name/type-params/alias groups are
// located by m within text.
func (p *GoParser) typeDecl(s *source, i int, text string, base int, m []int) *decl {
	name := text[m[2]:m[3]]
	meta := &domain.GoMeta{IsExported: exported(name)}
	if m[4] >= 0 {
		meta.TypeParams = strings.Trim(text[m[4]:m[5]], "[]")
	}
	rest := text[m[1]:]
	d := &decl{kind: domain.KindClass, name: name, start: i, meta: meta}

	switch {
	case m[6] >= 0:
		meta.GoType = "alias"
	case hasWord(rest, 0, "struct"):
		meta.GoType = "struct"
	case hasWord(rest, 0, "interface"):
		meta.GoType = "interface"
		meta.IsInterface = true
	default:
		meta.GoType = "type"
	}

	var typeBrace func(int) bool
	from := base + m[1]
	if meta.GoType == "struct" || meta.GoType == "interface" {
		from += len(meta.GoType)
	} else {
		typeBrace = goTypeBrace(s)
	}
	d = s.bodyDecl(d, from, typeBrace, true)

	if meta.GoType == "struct" {
		body := strings.Join(s.mlines[d.start:d.end+1], "\n")
		meta.HasMutex = reGoMutex.MatchString(body)
		meta.HasWaitGroup = reGoWaitGroup.MatchString(body)
		meta.HasChannel = reGoChanType.MatchString(body)
	}
	return d
}

func splitReceiver(recv string) (string, string) {
	fields := strings.Fields(recv)
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return "", fields[0]
	}
	return fields[0], strings.Join(fields[1:], " ")
}

func concurrencyOf(s *source, start, end int) domain.ConcurrencyPatterns {
	body := strings.Join(s.mlines[start:end+1], "\n")
	return domain.ConcurrencyPatterns{
		Goroutines:          len(reGoStatement.FindAllStringIndex(body, -1)),
		Channels:            len(reGoChanOp.FindAllStringIndex(body, -1)),
		MutexOperations:     len(reGoMutexOp.FindAllStringIndex(body, -1)),
		WaitGroupOperations: len(reGoWaitOp.FindAllStringIndex(body, -1)),
		Selects:             len(reGoSelect.FindAllStringIndex(body, -1)),
	}
}

func exported(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}

func (p *GoParser) ExtractImports(content string) []domain.ImportRecord {
	s := newSource(content, p.lex)
	var imports []domain.ImportRecord
	inGroup := false
	for i := range s.lines {
		if !inGroup && s.depth[i] != 0 {
			continue
		}
		for _, seg := range s.lineStatements(i) {
			m := strings.TrimSpace(s.mlines[i][seg[0]:seg[1]])
			switch {
			case m == "":
				continue
			case inGroup && strings.HasPrefix(m, ")"):
				inGroup = false
				continue
			case inGroup:
			case strings.HasPrefix(m, "import") && strings.HasSuffix(m, "("):
				inGroup = true
				continue
			case !hasWord(m, 0, "import"):
				continue
			}
			if rec, ok := goImport(s.lines[i][seg[0]:seg[1]]); ok {
				imports = append(imports, rec)
			}
		}
	}
	return imports
}

func goImport(line string) (domain.ImportRecord, bool) {
	m := reGoImport.FindStringSubmatch(line)
	if m == nil {
		return domain.ImportRecord{}, false
	}
	path := m[2]
	pkg := path[strings.LastIndexByte(path, '/')+1:]
	rec := domain.ImportRecord{Module: path, Names: []string{pkg}}
	if alias := strings.TrimSpace(m[1]); alias != "" && alias != pkg {
		rec.Alias = map[string]string{pkg: alias}
	}
	return rec, true
}

func (p *GoParser) ExtractExports(content string) []domain.ExportRecord {
	s := newSource(content, p.lex)
	var exports []domain.ExportRecord
	add := func(name string) {
		exports = append(exports, domain.ExportRecord{Names: []string{name}})
	}
	group := ""
	for i := range s.lines {
		m := s.mlines[i]
		if group == "" && (s.depth[i] != 0 || strings.TrimLeft(m, " \t") != m) {
			continue
		}
		if group != "" && s.depth[i] != 1 {
			continue
		}
		for _, seg := range s.lineStatements(i) {
			t := strings.TrimSpace(m[seg[0]:seg[1]])
			if t == "" {
				continue
			}
			if group != "" {
				switch {
				case strings.HasPrefix(t, ")"):
					group = ""
				case group == "type":
					if sm := reGoTypeSpec.FindStringSubmatch(t); sm != nil && exported(sm[1]) {
						add(sm[1])
					}
				default:
					if vm := reGoGroupVal.FindStringSubmatch(t); vm != nil {
						add(vm[1])
					}
				}
				continue
			}
			switch {
			case strings.HasSuffix(t, "(") && (strings.HasPrefix(t, "type") || strings.HasPrefix(t, "var") || strings.HasPrefix(t, "const")):
				group = strings.Fields(strings.TrimSuffix(t, "("))[0]
			case reGoFunc.MatchString(t):
				fm := reGoFunc.FindStringSubmatch(t)
				if fm[1] == "" && exported(fm[3]) {
					add(fm[3])
				}
			case strings.HasPrefix(t, "type "):
				if sm := reGoTypeSpec.FindStringSubmatch(strings.TrimSpace(t[len("type"):])); sm != nil && exported(sm[1]) {
					add(sm[1])
				}
			default:
				if vm := reGoValue.FindStringSubmatch(t); vm != nil {
					add(vm[1])
				}
			}
		}
	}
	return exports
}
