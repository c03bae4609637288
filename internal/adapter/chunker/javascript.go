package chunker

import (
	"regexp"
	"sort"
	"strings"

	"codechunk/internal/domain"
)

var (
	reScriptFunction  = regexp.MustCompile(`^(export\s+)?(default\s+)?(declare\s+)?(async\s+)?function\b\s*(\*)?\s*([A-Za-z_$][\w$]*)?\s*[<(]`)
	reScriptClass     = regexp.MustCompile(`^(export\s+)?(default\s+)?(declare\s+)?(abstract\s+)?class\b\s*([A-Za-z_$][\w$]*)?`)
	reScriptVar       = regexp.MustCompile(`^(export\s+)?(declare\s+)?(const|let|var)\s+([A-Za-z_$][\w$]*)`)
	reScriptInterface = regexp.MustCompile(`^(export\s+)?(default\s+)?(declare\s+)?interface\s+([A-Za-z_$][\w$]*)`)
	reScriptTypeAlias = regexp.MustCompile(`^(export\s+)?(declare\s+)?type\s+([A-Za-z_$][\w$]*)\s*(<[^=]*>)?\s*=`)
	reScriptEnum      = regexp.MustCompile(`^(export\s+)?(declare\s+)?(const\s+)?enum\s+([A-Za-z_$][\w$]*)`)
	reScriptExtends   = regexp.MustCompile(`\bextends\s+([A-Za-z_$][\w$.]*)`)
	reInterfaceExt    = regexp.MustCompile(`\bextends\s+([^{]+)`)

	reScriptMember   = regexp.MustCompile(`^((?:(?:public|private|protected|static|readonly|abstract|override|declare|async|get|set|accessor)\s+)*)(\*\s*)?(#?[A-Za-z_$][\w$]*)\s*[?!]?\s*(<[^()]*>)?\s*\(`)
	reScriptProperty = regexp.MustCompile(`^((?:(?:public|private|protected|static|readonly|override|declare)\s+)*)(#?[A-Za-z_$][\w$]*)\s*[?!]?\s*(:[^=]*)?=(?:[^=>]|$)`)
	reIdentPrefix    = regexp.MustCompile(`^[A-Za-z_$][\w$]*(\.[A-Za-z_$][\w$]*)*`)
)

var memberKeywords = map[string]bool{
	"if": true, "for": true, "while": true, "switch": true, "catch": true, "return": true,
	"new": true, "typeof": true, "await": true, "yield": true, "super": true, "this": true,
	"function": true, "do": true, "else": true, "try": true, "with": true, "delete": true,
}

// wrapperCallees are call initializers that bind a chunk-worthy value.
var wrapperCallees = map[string]bool{
	"memo":          true,
	"forwardRef":    true,
	"createContext": true,
}

func scriptLexicon(typescript bool) *lexicon {
	lex := &lexicon{
		lineComments:  []string{"//"},
		blockComments: true,
		quotes:        `"'`,
		templates:     true,
		regexLiterals: true,
	}
	if typescript {
		lex.attachments = []string{"@"}
	}
	return lex
}

type ScriptParser struct {
	lang        domain.Language
	typescript  bool
	detectReact bool
	lex         *lexicon
}

func NewJavaScriptParser(opts LanguageOptions) *ScriptParser {
	return &ScriptParser{
		lang:        domain.LangJavaScript,
		detectReact: opts.Bool("detect_react", true),
		lex:         scriptLexicon(false),
	}
}

func NewTypeScriptParser(opts LanguageOptions) *ScriptParser {
	return &ScriptParser{
		lang:        domain.LangTypeScript,
		typescript:  true,
		detectReact: opts.Bool("detect_react", true),
		lex:         scriptLexicon(true),
	}
}

func (p *ScriptParser) Language() domain.Language {
	return p.lang
}

func (p *ScriptParser) ExtractChunks(content string) Extraction {
	s := newSource(content, p.lex)
	chunks, closed := scanFrames(s, p.match)
	if p.detectReact {
		chunks = annotateReact(chunks)
	}
	return Extraction{Chunks: chunks, Settled: closed && s.settled()}
}

func (p *ScriptParser) typeBrace(s *source) func(int) bool {
	return func(pos int) bool {
		c, _ := s.prevNonSpace(pos)
		return strings.IndexByte(":|&<,=", c) >= 0
	}
}

func (p *ScriptParser) match(s *source, i, col int, top frame) *decl {
	if top.class != "" {
		return p.matchMember(s, i, col, top)
	}
	return p.matchTopLevel(s, i, col)
}

func (p *ScriptParser) matchTopLevel(s *source, i, col int) *decl {
	text, base := s.textAt(i, col)

	if m := reScriptFunction.FindStringSubmatchIndex(text); m != nil {
		meta := &domain.ScriptMeta{
			IsExported:      m[2] >= 0,
			IsDefaultExport: m[4] >= 0,
			IsAsync:         m[8] >= 0,
			IsGenerator:     m[10] >= 0,
		}
		name := ""
		if m[12] >= 0 {
			name = text[m[12]:m[13]]
		}
		d := &decl{kind: domain.KindFunction, name: name, start: i, meta: meta}
		return s.bodyDecl(d, base+m[1]-1, p.typeBrace(s), false)
	}

	if m := reScriptClass.FindStringSubmatchIndex(text); m != nil {
		name := ""
		if m[10] >= 0 {
			name = text[m[10]:m[11]]
		}
		if name == "extends" || name == "implements" {
			name = ""
		}
		meta := &domain.ScriptMeta{
			IsExported:      m[2] >= 0,
			IsDefaultExport: m[4] >= 0,
			IsAbstract:      m[8] >= 0,
		}
		return p.classDecl(s, i, name, base+m[1], meta)
	}

	if p.typescript {
		if d := p.matchTypeDecl(s, i, text, base); d != nil {
			return d
		}
	}

	if m := reScriptVar.FindStringSubmatchIndex(text); m != nil {
		name := text[m[8]:m[9]]
		return p.bindingDecl(s, i, name, base+m[1], m[2] >= 0)
	}
	return nil
}

func (p *ScriptParser) matchTypeDecl(s *source, i int, text string, base int) *decl {
	if m := reScriptInterface.FindStringSubmatchIndex(text); m != nil {
		name := text[m[8]:m[9]]
		meta := &domain.TypeDeclMeta{
			IsInterface: true,
			IsProps:     isPropsName(name),
			IsExported:  m[2] >= 0,
		}
		d := &decl{kind: domain.KindClass, name: name, start: i, meta: meta}
		d = s.bodyDecl(d, base+m[1], nil, false)
		if em := reInterfaceExt.FindStringSubmatch(s.lines[i][strings.Index(s.lines[i], name)+len(name):]); em != nil {
			for _, ext := range strings.Split(em[1], ",") {
				if ext = strings.TrimSpace(ext); ext != "" {
					meta.Extends = append(meta.Extends, ext)
				}
			}
		}
		return d
	}
	if m := reScriptTypeAlias.FindStringSubmatchIndex(text); m != nil {
		name := text[m[6]:m[7]]
		meta := &domain.TypeDeclMeta{
			IsTypeAlias: true,
			IsProps:     isPropsName(name),
			IsExported:  m[2] >= 0,
		}
		d := &decl{kind: domain.KindClass, name: name, start: i, meta: meta}
		endPos, stop := s.exprEnd(base + m[1])
		d.end = max(s.lineOf(endPos), i)
		switch stop {
		case stopUnterminated:
			d.confidence = confidenceFloor
			d.open = true
		case stopSemicolon:
			d.confidence = confidenceExact
		default:
			d.confidence = confidenceBinding
		}
		return d
	}
	if m := reScriptEnum.FindStringSubmatchIndex(text); m != nil {
		name := text[m[8]:m[9]]
		meta := &domain.TypeDeclMeta{IsEnum: true, IsExported: m[2] >= 0}
		d := &decl{kind: domain.KindClass, name: name, start: i, meta: meta}
		return s.bodyDecl(d, base+m[1], nil, false)
	}
	return nil
}

func isPropsName(name string) bool {
	return strings.HasSuffix(name, "Props")
}

// classDecl opens a class body as a container frame. Anonymous classes are
// reported but their members are not, since methods need a class to link to.
func (p *ScriptParser) classDecl(s *source, i int, name string, from int, meta *domain.ScriptMeta) *decl {
	d := &decl{kind: domain.KindClass, name: name, start: i, meta: meta, container: name != "", frameName: name}
	kind, pos := s.findBody(from, p.typeBrace(s), false)
	if kind == bodyBlock {
		header := s.masked[from:pos]
		if m := reScriptExtends.FindStringSubmatch(header); m != nil {
			meta.Extends = m[1]
		}
	}
	return s.bodyDecl(d, from, p.typeBrace(s), false)
}

// bindingDecl classifies a const/let/var declaration by its initializer.
func (p *ScriptParser) bindingDecl(s *source, i int, name string, nameEnd int, exported bool) *decl {
	eq, annotation := s.initializer(nameEnd)
	if eq < 0 {
		return nil
	}
	isDefault := strings.Contains(s.mlines[i], "export default")
	init := s.skipSpace(eq + 1)
	d := p.initializerDecl(s, i, name, init)
	if d == nil {
		return nil
	}
	switch meta := d.meta.(type) {
	case *domain.ScriptMeta:
		meta.IsExported = exported
		meta.IsDefaultExport = isDefault
		meta.Annotation = annotation
	case *domain.BindingMeta:
		meta.IsExported = exported
		meta.IsDefaultExport = isDefault
		meta.Annotation = annotation
	}
	return d
}

// initializer finds the '=' that starts a declaration's value, skipping a
// type annotation, and returns it with the annotation text.
func (s *source) initializer(from int) (int, string) {
	m := s.masked
	d, angle := 0, 0
	for i := from; i < len(m); i++ {
		c := m[i]
		switch c {
		case '{', '(', '[':
			d++
		case '}', ')', ']':
			d--
			if d < 0 {
				return -1, ""
			}
		case '<':
			angle++
		case '>':
			if i > 0 && m[i-1] == '=' {
				continue
			}
			if angle > 0 {
				angle--
			}
		case ';', ',':
			if d == 0 && angle == 0 {
				return -1, ""
			}
		case '\n':
			if d == 0 && angle == 0 && !continues(m[s.starts[s.lineOf(i)]:i]) {
				return -1, ""
			}
		case '=':
			if d != 0 || angle != 0 {
				continue
			}
			next := byte(0)
			if i+1 < len(m) {
				next = m[i+1]
			}
			if next == '=' || next == '>' {
				i++
				continue
			}
			if i > 0 && strings.IndexByte("=!<>", m[i-1]) >= 0 {
				continue
			}
			annotation := strings.TrimSpace(s.rawSpan(from, i))
			annotation = strings.TrimSpace(strings.TrimPrefix(annotation, ":"))
			return i, annotation
		}
	}
	return -1, ""
}

func (s *source) rawSpan(from, to int) string {
	if from >= to {
		return ""
	}
	var b strings.Builder
	for line := s.lineOf(from); line < len(s.lines); line++ {
		ls, le := s.starts[line], s.lineEnd(line)
		a, z := max(ls, from), min(le, to)
		if a < z {
			b.WriteString(s.lines[line][a-ls : z-ls])
		}
		if le >= to {
			break
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func hasWord(m string, at int, word string) bool {
	if !strings.HasPrefix(m[at:], word) {
		return false
	}
	end := at + len(word)
	return end >= len(m) || !isIdentByte(m[end])
}

// initializerDecl classifies the value starting at init: a function or class
// expression, an arrow function, or a recognized wrapper call.
func (p *ScriptParser) initializerDecl(s *source, i int, name string, init int) *decl {
	m := s.masked
	if init >= len(m) {
		return nil
	}
	async := false
	pos := init
	if hasWord(m, pos, "async") {
		async = true
		pos = s.skipSpace(pos + len("async"))
	}

	if hasWord(m, pos, "function") {
		meta := &domain.ScriptMeta{IsAsync: async}
		after := s.skipSpace(pos + len("function"))
		if after < len(m) && m[after] == '*' {
			meta.IsGenerator = true
		}
		d := &decl{kind: domain.KindFunction, name: name, start: i, meta: meta}
		return s.bodyDecl(d, after, p.typeBrace(s), false)
	}
	if !async && hasWord(m, pos, "class") {
		return p.classDecl(s, i, name, pos+len("class"), &domain.ScriptMeta{})
	}

	if arrow := s.arrowAt(pos); arrow >= 0 {
		meta := &domain.ScriptMeta{IsAsync: async, IsArrow: true}
		d := &decl{kind: domain.KindFunction, name: name, start: i, meta: meta}
		body := s.skipSpace(arrow + 2)
		if body < len(m) && m[body] == '{' {
			return s.blockDecl(d, body)
		}
		meta.ExpressionBody = true
		return s.exprDecl(d, body, confidenceExpression)
	}
	if async {
		return nil
	}

	callee := reIdentPrefix.FindString(m[pos:])
	if callee == "" {
		return nil
	}
	last := callee[strings.LastIndex(callee, ".")+1:]
	if !wrapperCallees[last] {
		return nil
	}
	after := s.skipSpace(pos + len(callee))
	typeArgs := ""
	if after < len(m) && m[after] == '<' {
		closeAngle := s.matchAngle(after)
		if closeAngle < 0 {
			return nil
		}
		typeArgs = s.rawSpan(after+1, closeAngle)
		after = s.skipSpace(closeAngle + 1)
	}
	if after >= len(m) || m[after] != '(' {
		return nil
	}
	meta := &domain.BindingMeta{Callee: last, TypeArgs: strings.TrimSpace(typeArgs)}
	d := &decl{kind: domain.KindBinding, name: name, start: i, meta: meta}
	return s.exprDecl(d, pos, confidenceBinding)
}

// arrowAt returns the position of the "=>" of an arrow function whose
// parameter list starts at pos, or -1.
func (s *source) arrowAt(pos int) int {
	m := s.masked
	if pos >= len(m) {
		return -1
	}
	switch {
	case m[pos] == '<':
		closeAngle := s.matchAngle(pos)
		if closeAngle < 0 {
			return -1
		}
		return s.arrowAt(s.skipSpace(closeAngle + 1))
	case m[pos] == '(':
		closeParen := s.matchClose(pos)
		if closeParen < 0 {
			return -1
		}
		after := s.skipSpace(closeParen + 1)
		if strings.HasPrefix(m[after:], "=>") {
			return after
		}
		if after < len(m) && m[after] == ':' {
			return s.arrowAfterReturnType(after + 1)
		}
		return -1
	case isIdentByte(m[pos]):
		j := pos
		for j < len(m) && isIdentByte(m[j]) {
			j++
		}
		after := s.skipSpace(j)
		if strings.HasPrefix(m[after:], "=>") {
			return after
		}
	}
	return -1
}

func (s *source) arrowAfterReturnType(from int) int {
	m := s.masked
	d := 0
	for i := from; i < len(m)-1; i++ {
		switch m[i] {
		case '{', '(', '[', '<':
			d++
		case '}', ')', ']':
			d--
			if d < 0 {
				return -1
			}
		case '>':
			if m[i-1] == '=' {
				if d == 0 {
					return i - 1
				}
				continue
			}
			d--
		case ';':
			if d == 0 {
				return -1
			}
		}
	}
	return -1
}

// matchAngle returns the position of the '>' closing the '<' at open.
func (s *source) matchAngle(open int) int {
	m := s.masked
	d, b := 0, 0
	for i := open; i < len(m); i++ {
		switch m[i] {
		case '{', '(', '[':
			b++
		case '}', ')', ']':
			b--
			if b < 0 {
				return -1
			}
		case '<':
			d++
		case '>':
			if i > 0 && m[i-1] == '=' {
				continue
			}
			d--
			if d == 0 {
				return i
			}
		case ';':
			if b == 0 {
				return -1
			}
		}
	}
	return -1
}

func (p *ScriptParser) matchMember(s *source, i, col int, top frame) *decl {
	text, base := s.textAt(i, col)

	if m := reScriptMember.FindStringSubmatchIndex(text); m != nil {
		name := text[m[6]:m[7]]
		if memberKeywords[name] {
			return nil
		}
		mods := strings.Fields(text[m[2]:m[3]])
		meta := &domain.ScriptMeta{ClassName: top.class, IsGenerator: m[4] >= 0}
		applyModifiers(meta, mods)
		if strings.HasPrefix(name, "#") {
			meta.IsPrivate = true
		}
		d := &decl{kind: domain.KindMethod, name: name, start: i, meta: meta}
		return s.bodyDecl(d, base+m[1]-1, p.typeBrace(s), false)
	}

	if m := reScriptProperty.FindStringSubmatchIndex(text); m != nil {
		name := text[m[4]:m[5]]
		eq := base + strings.LastIndexByte(text[:m[1]], '=')
		init := s.skipSpace(eq + 1)
		d := p.initializerDecl(s, i, name, init)
		if d == nil || d.kind != domain.KindFunction {
			return nil
		}
		meta := d.meta.(*domain.ScriptMeta)
		meta.ClassName = top.class
		applyModifiers(meta, strings.Fields(text[m[2]:m[3]]))
		if strings.HasPrefix(name, "#") {
			meta.IsPrivate = true
		}
		d.kind = domain.KindMethod
		return d
	}
	return nil
}

func applyModifiers(meta *domain.ScriptMeta, mods []string) {
	for _, mod := range mods {
		switch mod {
		case "static":
			meta.IsStatic = true
		case "async":
			meta.IsAsync = true
		case "get":
			meta.IsGetter = true
		case "set":
			meta.IsSetter = true
		case "private":
			meta.IsPrivate = true
		case "abstract":
			meta.IsAbstract = true
		}
	}
}

var (
	reImportFrom    = regexp.MustCompile(stmtStart + `import\s+(?:type\s+)?([\w$*{},\s]+?)\s+from\s*(['"])`)
	reImportSide    = regexp.MustCompile(stmtStart + `import\s*(['"])`)
	reRequire       = regexp.MustCompile(`(?:const|let|var)\s+([\w$]+|\{[^}]*\})\s*=\s*require\(\s*(['"])`)
	reExportDecl    = regexp.MustCompile(stmtStart + `export\s+(default\s+)?(?:declare\s+)?(?:abstract\s+)?(?:async\s+)?(?:function\s*\*?|class|const|let|var|interface|type|enum|namespace)\s+([A-Za-z_$][\w$]*)`)
	reExportDefault = regexp.MustCompile(stmtStart + `export\s+default\s+([A-Za-z_$][\w$]*)[ \t]*`)
	reExportList    = regexp.MustCompile(stmtStart + `export\s+(?:type\s+)?\{([^}]*)\}(\s*from\s*(['"]))?`)
	reExportAll     = regexp.MustCompile(stmtStart + `export\s*\*\s*(?:as\s+([\w$]+)\s*)?from\s*(['"])`)
	reCommonExport  = regexp.MustCompile(stmtStart + `(?:module\.)?exports\.([A-Za-z_$][\w$]*)\s*=`)
	reModuleExports = regexp.MustCompile(stmtStart + `module\.exports\s*=\s*(\{[^}]*\}|[A-Za-z_$][\w$]*)`)
)

// stringAt returns the raw literal whose opening quote is at pos.
func stringAt(raw string, pos int) string {
	if pos < 0 || pos >= len(raw) {
		return ""
	}
	q := raw[pos]
	end := strings.IndexByte(raw[pos+1:], q)
	if end < 0 {
		return ""
	}
	return raw[pos+1 : pos+1+end]
}

type positioned[T any] struct {
	pos    int
	record T
}

func sortPositioned[T any](items []positioned[T]) []T {
	sort.SliceStable(items, func(i, j int) bool { return items[i].pos < items[j].pos })
	out := make([]T, 0, len(items))
	for _, it := range items {
		out = append(out, it.record)
	}
	return out
}

func (p *ScriptParser) ExtractImports(content string) []domain.ImportRecord {
	s := newSource(content, p.lex)
	m := s.masked
	var items []positioned[domain.ImportRecord]

	for _, loc := range reImportFrom.FindAllStringSubmatchIndex(m, -1) {
		names, alias := parseImportClause(m[loc[2]:loc[3]])
		items = append(items, positioned[domain.ImportRecord]{loc[0], domain.ImportRecord{
			Module: stringAt(content, loc[4]),
			Names:  names,
			Alias:  alias,
		}})
	}
	for _, loc := range reImportSide.FindAllStringSubmatchIndex(m, -1) {
		items = append(items, positioned[domain.ImportRecord]{loc[0], domain.ImportRecord{
			Module: stringAt(content, loc[2]),
			Names:  []string{},
		}})
	}
	for _, loc := range reRequire.FindAllStringSubmatchIndex(m, -1) {
		binding := m[loc[2]:loc[3]]
		var names []string
		var alias map[string]string
		if strings.HasPrefix(binding, "{") {
			names, alias = parseNameList(strings.Trim(binding, "{}"), ":")
		} else {
			names = []string{binding}
		}
		items = append(items, positioned[domain.ImportRecord]{loc[0], domain.ImportRecord{
			Module: stringAt(content, loc[4]),
			Names:  domain.NameSet(names),
			Alias:  alias,
		}})
	}
	return sortPositioned(items)
}

// parseImportClause splits `Default, { a, b as c }` or `* as ns`.
func parseImportClause(clause string) ([]string, map[string]string) {
	var names []string
	alias := map[string]string{}
	clause = strings.TrimSpace(clause)

	if open := strings.Index(clause, "{"); open >= 0 {
		closeIdx := strings.Index(clause, "}")
		if closeIdx < open {
			closeIdx = len(clause)
		}
		named, namedAlias := parseNameList(clause[open+1:closeIdx], " as ")
		names = append(names, named...)
		for k, v := range namedAlias {
			alias[k] = v
		}
		clause = clause[:open] + clause[min(closeIdx+1, len(clause)):]
	}
	for _, part := range strings.Split(clause, ",") {
		part = strings.TrimSpace(part)
		switch {
		case part == "":
		case strings.HasPrefix(part, "*"):
			names = append(names, "*")
			if _, ns, ok := strings.Cut(part, " as "); ok {
				alias["*"] = strings.TrimSpace(ns)
			}
		default:
			names = append(names, part)
		}
	}
	if len(alias) == 0 {
		alias = nil
	}
	return domain.NameSet(names), alias
}

// parseNameList splits `a, b as c` style lists.
func parseNameList(list, sep string) ([]string, map[string]string) {
	var names []string
	alias := map[string]string{}
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(part), "type "))
		if part == "" {
			continue
		}
		if name, as, ok := strings.Cut(part, sep); ok {
			name, as = strings.TrimSpace(name), strings.TrimSpace(as)
			names = append(names, name)
			if as != "" && as != name {
				alias[name] = as
			}
			continue
		}
		names = append(names, part)
	}
	if len(alias) == 0 {
		alias = nil
	}
	return domain.NameSet(names), alias
}

func (p *ScriptParser) ExtractExports(content string) []domain.ExportRecord {
	s := newSource(content, p.lex)
	m := s.masked
	var items []positioned[domain.ExportRecord]

	for _, loc := range reExportDecl.FindAllStringSubmatchIndex(m, -1) {
		items = append(items, positioned[domain.ExportRecord]{loc[0], domain.ExportRecord{
			Names:     []string{m[loc[4]:loc[5]]},
			IsDefault: loc[2] >= 0,
		}})
	}
	for _, loc := range reExportDefault.FindAllStringSubmatchIndex(m, -1) {
		name := m[loc[2]:loc[3]]
		if name == "function" || name == "class" || name == "async" || !statementEnds(m, loc[1]) {
			continue
		}
		items = append(items, positioned[domain.ExportRecord]{loc[0], domain.ExportRecord{
			Names:     []string{name},
			IsDefault: true,
		}})
	}
	for _, loc := range reExportList.FindAllStringSubmatchIndex(m, -1) {
		names, alias := parseNameList(m[loc[2]:loc[3]], " as ")
		rec := domain.ExportRecord{Names: names, Alias: alias}
		if loc[6] >= 0 {
			rec.Module = stringAt(content, loc[6])
		}
		items = append(items, positioned[domain.ExportRecord]{loc[0], rec})
	}
	for _, loc := range reExportAll.FindAllStringSubmatchIndex(m, -1) {
		rec := domain.ExportRecord{Module: stringAt(content, loc[4]), Names: []string{"*"}}
		if loc[2] >= 0 {
			rec.Alias = map[string]string{"*": m[loc[2]:loc[3]]}
		}
		items = append(items, positioned[domain.ExportRecord]{loc[0], rec})
	}
	for _, loc := range reCommonExport.FindAllStringSubmatchIndex(m, -1) {
		items = append(items, positioned[domain.ExportRecord]{loc[0], domain.ExportRecord{
			Names: []string{m[loc[2]:loc[3]]},
		}})
	}
	for _, loc := range reModuleExports.FindAllStringSubmatchIndex(m, -1) {
		value := m[loc[2]:loc[3]]
		if strings.HasPrefix(value, "{") {
			names, alias := parseNameList(strings.Trim(value, "{}"), ":")
			items = append(items, positioned[domain.ExportRecord]{loc[0], domain.ExportRecord{Names: names, Alias: alias}})
			continue
		}
		items = append(items, positioned[domain.ExportRecord]{loc[0], domain.ExportRecord{
			Names:     []string{value},
			IsDefault: true,
		}})
	}
	return sortPositioned(items)
}
