package chunker

import (
	"regexp"
	"strings"

	"codechunk/internal/domain"
)

var (
	reSolContract = regexp.MustCompile(`^(abstract\s+)?(contract|library|interface)\s+([A-Za-z_]\w*)`)
	reSolType     = regexp.MustCompile(`^(struct|enum)\s+([A-Za-z_]\w*)`)
	reSolFunction = regexp.MustCompile(`^function\s+([A-Za-z_]\w*)\s*\(`)
	reSolSpecial  = regexp.MustCompile(`^(constructor|fallback|receive)\s*\(`)
	reSolModifier = regexp.MustCompile(`^modifier\s+([A-Za-z_]\w*)\s*\(?`)
	reSolEvent    = regexp.MustCompile(`^event\s+([A-Za-z_]\w*)\s*\(`)
	reSolInherits = regexp.MustCompile(`\bis\s+([^{]+)`)
	reSolToken    = regexp.MustCompile(`[A-Za-z_][\w.]*(\s*\([^)]*\))?`)

	reSolImportPath = regexp.MustCompile(stmtStart + `import\s*(["'])`)
	reSolImportAs   = regexp.MustCompile(`^\s*as\s+(\w+)`)
	reSolImportList = regexp.MustCompile(stmtStart + `import\s*\{([^}]*)\}\s*from\s*(["'])`)
	reSolImportAll  = regexp.MustCompile(stmtStart + `import\s*\*\s*as\s+(\w+)\s*from\s*(["'])`)
	reSolUnit       = regexp.MustCompile(`(?m)(?:^|[;}])[ \t]*(?:abstract\s+)?(?:contract|library|interface|struct|enum|function)\s+([A-Za-z_]\w*)`)
)

var solVisibility = map[string]bool{"public": true, "private": true, "internal": true, "external": true}

var solMutability = map[string]bool{"pure": true, "view": true, "payable": true, "constant": true, "nonpayable": true}

type SolidityParser struct {
	lex *lexicon
}

func NewSolidityParser(LanguageOptions) *SolidityParser {
	return &SolidityParser{lex: &lexicon{
		lineComments:  []string{"//"},
		blockComments: true,
		quotes:        `"'`,
	}}
}

func (p *SolidityParser) Language() domain.Language {
	return domain.LangSolidity
}

func (p *SolidityParser) ExtractChunks(content string) Extraction {
	s := newSource(content, p.lex)
	chunks, closed := scanFrames(s, p.match)
	return Extraction{Chunks: chunks, Settled: closed && s.settled()}
}

func (p *SolidityParser) match(s *source, i, col int, top frame) *decl {
	text, base := s.textAt(i, col)

	if m := reSolContract.FindStringSubmatchIndex(text); m != nil && top.class == "" {
		name := text[m[6]:m[7]]
		meta := &domain.SolidityMeta{
			SolidityType: text[m[4]:m[5]],
			IsAbstract:   m[2] >= 0,
		}
		d := &decl{kind: domain.KindClass, name: name, start: i, meta: meta, container: true, frameName: name}
		kind, open := s.findBody(base+m[1], nil, false)
		if kind == bodyBlock {
			if im := reSolInherits.FindStringSubmatch(s.masked[base+m[1] : open]); im != nil {
				for _, parent := range strings.Split(im[1], ",") {
					if parent = strings.TrimSpace(parent); parent != "" {
						meta.Inherits = append(meta.Inherits, parent)
					}
				}
			}
		}
		return s.bodyDecl(d, base+m[1], nil, false)
	}

	if m := reSolType.FindStringSubmatchIndex(text); m != nil {
		meta := &domain.SolidityMeta{SolidityType: text[m[2]:m[3]]}
		d := &decl{kind: domain.KindClass, name: text[m[4]:m[5]], start: i, meta: meta}
		return s.bodyDecl(d, base+m[1], nil, false)
	}

	var (
		name    string
		meta    = &domain.SolidityMeta{SolidityType: "function", ClassName: top.class}
		sigFrom int
	)
	switch {
	case reSolFunction.MatchString(text):
		m := reSolFunction.FindStringSubmatchIndex(text)
		name, sigFrom = text[m[2]:m[3]], base+m[1]-1
	case reSolSpecial.MatchString(text):
		m := reSolSpecial.FindStringSubmatchIndex(text)
		name, sigFrom = text[m[2]:m[3]], base+m[1]-1
		meta.SolidityType = name
		meta.IsConstructor = name == "constructor"
	case reSolModifier.MatchString(text) && top.class != "":
		m := reSolModifier.FindStringSubmatchIndex(text)
		name, sigFrom = text[m[2]:m[3]], base+m[3]
		meta.SolidityType = "modifier"
		meta.IsModifier = true
	case reSolEvent.MatchString(text) && top.class != "":
		m := reSolEvent.FindStringSubmatchIndex(text)
		meta.SolidityType = "event"
		meta.IsEvent = true
		d := &decl{kind: domain.KindMethod, name: text[m[2]:m[3]], start: i, meta: meta}
		return s.bodyDecl(d, base+m[1]-1, nil, false)
	default:
		return nil
	}

	kind := domain.KindFunction
	if top.class != "" {
		kind = domain.KindMethod
	} else {
		meta.ClassName = ""
	}
	d := &decl{kind: kind, name: name, start: i, meta: meta}
	bk, body := s.findBody(sigFrom, nil, false)
	if bk != bodyNone {
		p.applySignature(meta, s.masked[sigFrom:body])
	}
	return s.bodyDecl(d, sigFrom, nil, false)
}

// applySignature reads visibility, mutability and modifier invocations from
// the text between a function's name and its body.
func (p *SolidityParser) applySignature(meta *domain.SolidityMeta, sig string) {
	sig = strings.TrimSpace(sig)
	if strings.HasPrefix(sig, "(") {
		depth := 0
		for k := 0; k < len(sig); k++ {
			if sig[k] == '(' {
				depth++
			} else if sig[k] == ')' {
				depth--
				if depth == 0 {
					sig = sig[k+1:]
					break
				}
			}
		}
	}
	if r := strings.Index(sig, "returns"); r >= 0 {
		sig = sig[:r]
	}
	for _, tok := range reSolToken.FindAllString(sig, -1) {
		word := strings.TrimSpace(tok)
		if k := strings.IndexByte(word, '('); k >= 0 {
			word = strings.TrimSpace(word[:k])
		}
		switch {
		case solVisibility[word]:
			meta.Visibility = word
		case solMutability[word]:
			meta.StateMutability = word
			meta.IsPayable = word == "payable"
		case word == "virtual":
			meta.IsVirtual = true
		case word == "override":
			meta.IsOverride = true
		default:
			meta.Modifiers = append(meta.Modifiers, word)
		}
	}
}

func (p *SolidityParser) ExtractImports(content string) []domain.ImportRecord {
	s := newSource(content, p.lex)
	m := s.masked
	var items []positioned[domain.ImportRecord]
	for _, loc := range reSolImportPath.FindAllStringSubmatchIndex(m, -1) {
		module := stringAt(content, loc[2])
		rec := domain.ImportRecord{Module: module, Names: []string{}}
		after := loc[2] + len(module) + 2
		if after <= len(m) {
			if am := reSolImportAs.FindStringSubmatch(m[after:]); am != nil {
				rec.Names = []string{"*"}
				rec.Alias = map[string]string{"*": am[1]}
			}
		}
		items = append(items, positioned[domain.ImportRecord]{loc[0], rec})
	}
	for _, loc := range reSolImportList.FindAllStringSubmatchIndex(m, -1) {
		names, alias := parseNameList(m[loc[2]:loc[3]], " as ")
		items = append(items, positioned[domain.ImportRecord]{loc[0], domain.ImportRecord{
			Module: stringAt(content, loc[4]),
			Names:  names,
			Alias:  alias,
		}})
	}
	for _, loc := range reSolImportAll.FindAllStringSubmatchIndex(m, -1) {
		items = append(items, positioned[domain.ImportRecord]{loc[0], domain.ImportRecord{
			Module: stringAt(content, loc[4]),
			Names:  []string{"*"},
			Alias:  map[string]string{"*": m[loc[2]:loc[3]]},
		}})
	}
	return sortPositioned(items)
}

// ExtractExports lists the file-level units an importer can reference.
func (p *SolidityParser) ExtractExports(content string) []domain.ExportRecord {
	s := newSource(content, p.lex)
	m := s.masked
	var exports []domain.ExportRecord
	for _, loc := range reSolUnit.FindAllStringSubmatchIndex(m, -1) {
		start := loc[0]
		if m[start] == ';' || m[start] == '}' {
			start++
		}
		if s.depthAt(start) != 0 {
			continue
		}
		exports = append(exports, domain.ExportRecord{Names: []string{m[loc[2]:loc[3]]}})
	}
	return exports
}
