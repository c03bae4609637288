package chunker

import (
	"regexp"
	"strings"

	"codechunk/internal/domain"
)

var (
	reRustFn     = regexp.MustCompile(`^(pub(?:\s*\([^)]*\))?\s+)?((?:(?:default|const|async|unsafe|extern(?:\s+"[^"]*")?)\s+)*)fn\s+([A-Za-z_]\w*)`)
	reRustType   = regexp.MustCompile(`^(pub(?:\s*\([^)]*\))?\s+)?(unsafe\s+)?(struct|enum|union|trait|type)\s+([A-Za-z_]\w*)`)
	reRustImpl   = regexp.MustCompile(`^(unsafe\s+)?impl\b`)
	reRustMod    = regexp.MustCompile(`^(pub(?:\s*\([^)]*\))?\s+)?mod\s+([A-Za-z_]\w*)\s*\{`)
	reRustMacro  = regexp.MustCompile(`^macro_rules!\s*([A-Za-z_]\w*)`)
	reRustUse    = regexp.MustCompile(stmtStart + `(pub(?:\s*\([^)]*\))?\s+)?use\s+([^;]+)`)
	reRustCrate  = regexp.MustCompile(stmtStart + `extern\s+crate\s+(\w+)(?:\s+as\s+(\w+))?\s*`)
	reRustExport = regexp.MustCompile(`^pub\s+(?:(?:async|const|unsafe|extern\s+"[^"]*")\s+)*(fn|struct|enum|trait|type|union|mod|const|static)\s*([A-Za-z_]\w*)`)
	reGenerics   = regexp.MustCompile(`<.*>`)
)

type RustParser struct {
	lex *lexicon
}

func NewRustParser(LanguageOptions) *RustParser {
	return &RustParser{lex: &lexicon{
		lineComments:    []string{"//"},
		blockComments:   true,
		nestedBlocks:    true,
		quotes:          `"`,
		multilineQuotes: `"`,
		rustChars:       true,
		rustRaw:         true,
		attachments:     []string{"#["},
	}}
}

func (p *RustParser) Language() domain.Language {
	return domain.LangRust
}

func (p *RustParser) ExtractChunks(content string) Extraction {
	s := newSource(content, p.lex)
	chunks, closed := scanFrames(s, p.match)
	return Extraction{Chunks: chunks, Settled: closed && s.settled()}
}

func (p *RustParser) match(s *source, i, col int, top frame) *decl {
	text, base := s.textAt(i, col)

	if m := reRustFn.FindStringSubmatchIndex(text); m != nil {
		mods := text[m[4]:m[5]]
		meta := &domain.RustMeta{
			RustType: "fn",
			IsPublic: m[2] >= 0,
			IsAsync:  strings.Contains(mods, "async"),
			IsUnsafe: strings.Contains(mods, "unsafe"),
			IsConst:  strings.Contains(mods, "const"),
		}
		kind := domain.KindFunction
		if top.class != "" {
			kind = domain.KindMethod
			meta.ClassName = top.class
		}
		d := &decl{kind: kind, name: text[m[6]:m[7]], start: i, meta: meta}
		return s.bodyDecl(d, base+m[1], nil, false)
	}
	if top.class != "" {
		return nil
	}

	if m := reRustType.FindStringSubmatchIndex(text); m != nil {
		rustType := text[m[6]:m[7]]
		name := text[m[8]:m[9]]
		meta := &domain.RustMeta{RustType: rustType, IsPublic: m[2] >= 0, IsUnsafe: m[4] >= 0}
		d := &decl{kind: domain.KindClass, name: name, start: i, meta: meta}
		if rustType == "trait" {
			d.container = true
			d.frameName = name
		}
		return s.bodyDecl(d, base+m[1], nil, false)
	}

	if m := reRustImpl.FindStringIndex(text); m != nil {
		return p.implDecl(s, i, base+m[1], strings.HasPrefix(text, "unsafe"))
	}

	if m := reRustMod.FindStringSubmatchIndex(text); m != nil {
		d := &decl{start: i, container: true}
		return s.blockDecl(d, base+m[1]-1)
	}

	if m := reRustMacro.FindStringSubmatchIndex(text); m != nil {
		meta := &domain.RustMeta{RustType: "macro", IsMacro: true}
		d := &decl{kind: domain.KindFunction, name: text[m[2]:m[3]], start: i, meta: meta}
		open := s.skipSpace(base + m[1])
		if open >= len(s.masked) || strings.IndexByte("{([", s.masked[open]) < 0 {
			return nil
		}
		return s.blockDecl(d, open)
	}
	return nil
}

// implDecl parses `impl<..> Trait for Type {` or `impl<..> Type {` headers.
func (p *RustParser) implDecl(s *source, i, from int, unsafe bool) *decl {
	pos := s.skipSpace(from)
	if pos < len(s.masked) && s.masked[pos] == '<' {
		if closeAngle := s.matchAngle(pos); closeAngle >= 0 {
			pos = closeAngle + 1
		}
	}
	meta := &domain.RustMeta{RustType: "impl", IsUnsafe: unsafe}
	d := &decl{kind: domain.KindClass, start: i, meta: meta, container: true}

	kind, open := s.findBody(pos, nil, false)
	header := ""
	if kind == bodyBlock {
		header = s.rawSpan(pos, open)
	} else {
		header = s.rawSpan(pos, s.lineEnd(i))
	}
	header = strings.Join(strings.Fields(header), " ")
	if where := strings.Index(header, " where "); where >= 0 {
		header = header[:where]
	} else if strings.HasSuffix(header, " where") {
		header = strings.TrimSuffix(header, " where")
	}
	target := header
	if trait, typ, ok := strings.Cut(header, " for "); ok {
		meta.Trait = strings.TrimSpace(trait)
		target = strings.TrimSpace(typ)
	}
	meta.ImplFor = target
	d.name = strings.TrimSpace(reGenerics.ReplaceAllString(target, ""))
	d.name = strings.TrimLeft(d.name, "&*")
	if d.name == "" {
		d.container = false
	}
	d.frameName = d.name
	return s.bodyDecl(d, pos, nil, false)
}

func (p *RustParser) ExtractImports(content string) []domain.ImportRecord {
	s := newSource(content, p.lex)
	m := s.masked
	var items []positioned[domain.ImportRecord]
	for _, loc := range reRustUse.FindAllStringSubmatchIndex(m, -1) {
		if loc[1] >= len(m) || m[loc[1]] != ';' {
			continue
		}
		items = append(items, positioned[domain.ImportRecord]{loc[0], rustUse(m[loc[4]:loc[5]])})
	}
	for _, loc := range reRustCrate.FindAllStringSubmatchIndex(m, -1) {
		if loc[1] >= len(m) || m[loc[1]] != ';' {
			continue
		}
		name := m[loc[2]:loc[3]]
		rec := domain.ImportRecord{Module: name, Names: []string{name}}
		if loc[4] >= 0 {
			rec.Alias = map[string]string{name: m[loc[4]:loc[5]]}
		}
		items = append(items, positioned[domain.ImportRecord]{loc[0], rec})
	}
	return sortPositioned(items)
}

// rustUse splits a use tree into its module path and imported names.
func rustUse(tree string) domain.ImportRecord {
	tree = strings.Join(strings.Fields(tree), " ")
	if open := strings.Index(tree, "{"); open >= 0 {
		module := strings.TrimSuffix(strings.TrimSpace(tree[:open]), "::")
		inner := strings.TrimSpace(tree[open+1:])
		inner = strings.TrimSuffix(inner, "}")
		names, alias := parseNameList(splitTopLevel(inner), " as ")
		return domain.ImportRecord{Module: module, Names: names, Alias: alias}
	}
	path, as, aliased := strings.Cut(tree, " as ")
	path = strings.TrimSpace(path)
	module, name := "", path
	if k := strings.LastIndex(path, "::"); k >= 0 {
		module, name = path[:k], path[k+2:]
	}
	rec := domain.ImportRecord{Module: module, Names: []string{name}}
	if aliased && strings.TrimSpace(as) != name {
		rec.Alias = map[string]string{name: strings.TrimSpace(as)}
	}
	return rec
}

// splitTopLevel rewrites nested groups so commas inside them do not split
// the outer list: `a, b::{c, d}` becomes `a, b::{c; d}`.
func splitTopLevel(list string) string {
	var b strings.Builder
	d := 0
	for _, c := range list {
		switch c {
		case '{':
			d++
		case '}':
			d--
		case ',':
			if d > 0 {
				c = ';'
			}
		}
		b.WriteRune(c)
	}
	return b.String()
}

func (p *RustParser) ExtractExports(content string) []domain.ExportRecord {
	s := newSource(content, p.lex)
	var exports []domain.ExportRecord
	for i := range s.lines {
		if s.depth[i] != 0 {
			continue
		}
		for _, seg := range s.lineStatements(i) {
			t := strings.TrimSpace(s.mlines[i][seg[0]:seg[1]])
			if m := reRustExport.FindStringSubmatch(t); m != nil {
				exports = append(exports, domain.ExportRecord{Names: []string{m[2]}})
			}
		}
	}
	for _, loc := range reRustUse.FindAllStringSubmatchIndex(s.masked, -1) {
		if loc[2] < 0 || loc[1] >= len(s.masked) || s.masked[loc[1]] != ';' || s.depthAt(loc[0]) != 0 {
			continue
		}
		rec := rustUse(s.masked[loc[4]:loc[5]])
		exports = append(exports, domain.ExportRecord{Module: rec.Module, Names: rec.Names, Alias: rec.Alias})
	}
	return exports
}
