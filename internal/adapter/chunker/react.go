package chunker

import (
	"regexp"
	"strings"
	"unicode"

	"codechunk/internal/domain"
)

var (
	reHookCall      = regexp.MustCompile(`\b(use[A-Z0-9][\w$]*)\s*(?:<[^()]*>)?\s*\(`)
	reHookName      = regexp.MustCompile(`^use[A-Z0-9]`)
	reJSX           = regexp.MustCompile(`(?m)(?:^|[\s(=?:&|,{\[])(?:<[A-Za-z][\w.]*[\s/>]|<>|</[A-Za-z])`)
	reProviderTag   = regexp.MustCompile(`<([A-Za-z_$][\w$]*)\.Provider\b`)
	reFCAnnotation  = regexp.MustCompile(`\b(?:React\.)?(?:FC|FunctionComponent|VFC)\s*(?:<\s*([A-Za-z_$][\w$.]*)\s*>)?`)
	reParamsType    = regexp.MustCompile(`\(\s*(?:\{[^}]*\}|[A-Za-z_$][\w$]*)\s*:\s*([A-Z][\w$.]*)`)
	reComponentType = regexp.MustCompile(`\b([A-Za-z_$][\w$]*)\s*:\s*(?:React\.)?(?:ComponentType|FC|FunctionComponent|ComponentClass|JSXElementConstructor|ElementType)\b`)
	reHOCName       = regexp.MustCompile(`^with[A-Z]`)
	reFirstParam    = regexp.MustCompile(`^[^(]*\(\s*([A-Z][\w$]*)\s*[,)]`)
)

// annotateReact re-classifies top-level function and binding chunks into
// React constructs. It only rewrites kinds and metadata; spans are kept.
func annotateReact(chunks []domain.Chunk) []domain.Chunk {
	for i := range chunks {
		switch meta := chunks[i].Meta.(type) {
		case *domain.BindingMeta:
			annotateBinding(&chunks[i], meta)
		case *domain.ScriptMeta:
			if chunks[i].Kind == domain.KindFunction && meta.ClassName == "" {
				annotateFunction(&chunks[i], meta)
			}
		}
	}
	return chunks
}

func annotateBinding(c *domain.Chunk, meta *domain.BindingMeta) {
	switch meta.Callee {
	case "createContext":
		contextType := meta.TypeArgs
		if contextType == "" {
			contextType = callArgument(c.Code, "createContext")
		}
		c.Kind = domain.KindContext
		c.Meta = &domain.ContextMeta{ContextType: contextType}
	case "memo", "forwardRef":
		if !capitalized(c.Name) {
			return
		}
		c.Kind = domain.KindComponent
		c.Meta = &domain.ComponentMeta{
			ComponentType:   meta.Callee,
			PropsType:       propsType(c.Code, meta.Annotation),
			HasJSX:          hasJSX(c.Code),
			IsDefaultExport: meta.IsDefaultExport,
			HooksUsed:       hooksUsed(c.Code, c.Name),
		}
	}
}

func annotateFunction(c *domain.Chunk, meta *domain.ScriptMeta) {
	jsx := hasJSX(c.Code)

	if param := hocParam(c); param != "" {
		c.Kind = domain.KindHOC
		c.Meta = &domain.HOCMeta{HasJSX: jsx, ComponentParam: param}
		return
	}

	hooks := hooksUsed(c.Code, c.Name)
	if reHookName.MatchString(c.Name) && len(hooks) > 0 {
		c.Kind = domain.KindHook
		c.Meta = &domain.HookMeta{UsedHooks: hooks, IsExported: meta.IsExported}
		return
	}

	if !capitalized(c.Name) || !jsx {
		return
	}
	componentType := "function"
	if reFCAnnotation.MatchString(meta.Annotation) {
		componentType = "fc"
	}
	cm := &domain.ComponentMeta{
		ComponentType:   componentType,
		PropsType:       propsType(c.Code, meta.Annotation),
		HasJSX:          true,
		IsDefaultExport: meta.IsDefaultExport,
		HooksUsed:       hooks,
	}
	c.Kind = domain.KindComponent
	if m := reProviderTag.FindStringSubmatch(c.Code); m != nil {
		c.Kind = domain.KindProvider
		cm.RelatedContext = m[1]
	}
	c.Meta = cm
}

// hocParam returns the component-typed parameter of a higher-order
// component: a generic function taking a component type whose body renders
// or returns that parameter.
func hocParam(c *domain.Chunk) string {
	header := signatureOf(c.Code)
	param := ""
	if m := reComponentType.FindStringSubmatch(header); m != nil && strings.Contains(header, "<") {
		param = m[1]
	} else if reHOCName.MatchString(c.Name) {
		if m := reFirstParam.FindStringSubmatch(header); m != nil {
			param = m[1]
		}
	}
	if param == "" {
		return ""
	}
	body := c.Code[len(header):]
	if strings.Contains(body, "<"+param) || returnsName(body, param) {
		return param
	}
	return ""
}

// returnsName reports whether code contains `return <name>` with name
// standing as a whole identifier.
func returnsName(code, name string) bool {
	for rest := code; ; {
		i := strings.Index(rest, "return")
		if i < 0 {
			return false
		}
		before := i == 0 || !isIdentByte(rest[i-1])
		rest = rest[i+len("return"):]
		after := strings.TrimLeft(rest, " \t\r\n")
		if before && len(after) < len(rest) && strings.HasPrefix(after, name) &&
			(len(after) == len(name) || !isIdentByte(after[len(name)])) {
			return true
		}
	}
}

// signatureOf returns the code up to the opening of the body.
func signatureOf(code string) string {
	end := len(code)
	if i := strings.Index(code, "=>"); i >= 0 && i < end {
		end = i
	}
	if i := strings.Index(code, ") {"); i >= 0 && i+1 < end {
		end = i + 1
	}
	return code[:end]
}

func hooksUsed(code, self string) []string {
	var hooks []string
	for _, m := range reHookCall.FindAllStringSubmatch(code, -1) {
		if m[1] != self {
			hooks = append(hooks, m[1])
		}
	}
	return domain.NameSet(hooks)
}

func hasJSX(code string) bool {
	return reJSX.MatchString(code)
}

func propsType(code, annotation string) string {
	if m := reFCAnnotation.FindStringSubmatch(annotation); m != nil && m[1] != "" {
		return m[1]
	}
	if m := reParamsType.FindStringSubmatch(code); m != nil {
		return m[1]
	}
	return ""
}

func capitalized(name string) bool {
	for _, r := range name {
		return unicode.IsUpper(r)
	}
	return false
}

// callArgument returns the argument text of the first call to callee.
func callArgument(code, callee string) string {
	idx := strings.Index(code, callee)
	if idx < 0 {
		return ""
	}
	open := strings.IndexByte(code[idx:], '(')
	if open < 0 {
		return ""
	}
	open += idx
	depth := 0
	for i := open; i < len(code); i++ {
		switch code[i] {
		case '(', '{', '[':
			depth++
		case ')', '}', ']':
			depth--
			if depth == 0 {
				return strings.TrimSpace(code[open+1 : i])
			}
		}
	}
	return ""
}
