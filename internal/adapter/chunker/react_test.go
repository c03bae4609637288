package chunker

import (
	"testing"

	"codechunk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reactFixture(t *testing.T) *domain.ParseResult {
	t.Helper()
	return parse(t, readFixture(t, "react_app.tsx"), "typescript")
}

func componentMeta(t *testing.T, c domain.Chunk) *domain.ComponentMeta {
	t.Helper()
	meta, ok := c.Meta.(*domain.ComponentMeta)
	require.True(t, ok, "%s carries %T", c.Name, c.Meta)
	return meta
}

func TestReact_Components(t *testing.T) {
	res := reactFixture(t)

	assert.ElementsMatch(t,
		[]string{"Button", "Card", "MemoizedButton", "TextInput", "App"},
		names(res.ChunksOfKind(domain.KindComponent)))

	button := componentMeta(t, mustFind(t, res, domain.KindComponent, "Button"))
	assert.Equal(t, "function", button.ComponentType)
	assert.Equal(t, "ButtonProps", button.PropsType)
	assert.True(t, button.HasJSX)

	card := componentMeta(t, mustFind(t, res, domain.KindComponent, "Card"))
	assert.Equal(t, "fc", card.ComponentType)
	assert.False(t, card.IsDefaultExport)
	assert.True(t, card.HasJSX)

	memo := componentMeta(t, mustFind(t, res, domain.KindComponent, "MemoizedButton"))
	assert.Equal(t, "memo", memo.ComponentType)
	assert.Equal(t, "ButtonProps", memo.PropsType)

	input := componentMeta(t, mustFind(t, res, domain.KindComponent, "TextInput"))
	assert.Equal(t, "forwardRef", input.ComponentType)
	assert.True(t, input.HasJSX)

	app := componentMeta(t, mustFind(t, res, domain.KindComponent, "App"))
	assert.Equal(t, "function", app.ComponentType)
	assert.True(t, app.IsDefaultExport)
	assert.Contains(t, app.HooksUsed, "useWindowSize")
}

func TestReact_Hooks(t *testing.T) {
	res := reactFixture(t)

	assert.ElementsMatch(t, []string{"useTheme", "useWindowSize"}, names(res.ChunksOfKind(domain.KindHook)))

	useTheme := mustFind(t, res, domain.KindHook, "useTheme").Meta.(*domain.HookMeta)
	assert.Equal(t, []string{"useContext"}, useTheme.UsedHooks)

	useWindowSize := mustFind(t, res, domain.KindHook, "useWindowSize").Meta.(*domain.HookMeta)
	assert.Equal(t, []string{"useEffect", "useState"}, useWindowSize.UsedHooks)
	assert.True(t, useWindowSize.IsExported)
}

func TestReact_ContextAndProvider(t *testing.T) {
	res := reactFixture(t)

	ctx := mustFind(t, res, domain.KindContext, "ThemeContext")
	assert.Equal(t, "{ theme: string; toggleTheme: () => void }", ctx.Meta.(*domain.ContextMeta).ContextType)

	provider := componentMeta(t, mustFind(t, res, domain.KindProvider, "ThemeProvider"))
	assert.True(t, provider.HasJSX)
	assert.Equal(t, "ThemeContext", provider.RelatedContext)
	assert.Contains(t, provider.HooksUsed, "useState")
}

func TestReact_HigherOrderComponent(t *testing.T) {
	res := reactFixture(t)

	hoc := mustFind(t, res, domain.KindHOC, "withAuth")
	meta := hoc.Meta.(*domain.HOCMeta)
	assert.True(t, meta.HasJSX)
	assert.Equal(t, "Component", meta.ComponentParam)

	for _, c := range res.Chunks {
		assert.NotEqual(t, "AuthenticatedCard", c.Name, "a plain call binding is not a chunk")
	}
}

func TestReact_PropsInterface(t *testing.T) {
	res := reactFixture(t)

	props := mustFind(t, res, domain.KindClass, "ButtonProps")
	meta := props.Meta.(*domain.TypeDeclMeta)
	assert.True(t, meta.IsInterface)
	assert.True(t, meta.IsProps)
}

func TestReact_ImportsAndExports(t *testing.T) {
	res := reactFixture(t)

	assert.Equal(t, []domain.ImportRecord{
		{Module: "react", Names: []string{"React", "useContext", "useEffect", "useState"}},
		{Module: "next/router", Names: []string{"useRouter"}},
	}, res.Imports)

	assert.Equal(t, []domain.ExportRecord{
		{Names: []string{"Card"}},
		{Names: []string{"ThemeProvider"}},
		{Names: []string{"useWindowSize"}},
		{Names: []string{"App"}, IsDefault: true},
	}, res.Exports)
}

func TestReact_DetectionCanBeDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LanguageSpecific = map[string]map[string]any{
		"typescript": {"detect_react": false},
	}
	res := parseWith(t, cfg, readFixture(t, "react_app.tsx"), "typescript")

	assert.Empty(t, res.ChunksOfKind(domain.KindComponent))
	assert.Empty(t, res.ChunksOfKind(domain.KindHook))

	button := mustFind(t, res, domain.KindFunction, "Button")
	assert.IsType(t, &domain.ScriptMeta{}, button.Meta)
	binding := mustFind(t, res, domain.KindBinding, "ThemeContext")
	assert.Equal(t, "createContext", binding.Meta.(*domain.BindingMeta).Callee)
}

func TestReact_JSXDetectionIgnoresGenerics(t *testing.T) {
	assert.True(t, hasJSX("return <div>hi</div>;"))
	assert.True(t, hasJSX("return (\n  <>\n  </>\n);"))
	assert.False(t, hasJSX("const x = useState<number>(0);"))
	assert.False(t, hasJSX("if (a < b) { return a; }"))
}

func TestReact_ProviderOfImportedContext(t *testing.T) {
	src := `import { ThemeContext } from './theme';

export function Shell({ children }: ShellProps) {
  return <ThemeContext.Provider value="dark">{children}</ThemeContext.Provider>;
}
`
	res := parse(t, src, "typescript")

	shell := componentMeta(t, mustFind(t, res, domain.KindProvider, "Shell"))
	assert.Equal(t, "ThemeContext", shell.RelatedContext)
	assert.Empty(t, res.ChunksOfKind(domain.KindContext))
}

func TestReturnsName(t *testing.T) {
	assert.True(t, returnsName("{\n  return Component;\n}", "Component"))
	assert.True(t, returnsName("{ if (x) return null\n  return\n    Component }", "Component"))
	assert.False(t, returnsName("{ return ComponentWrapper }", "Component"))
	assert.False(t, returnsName("{ returnComponent }", "Component"))
	assert.False(t, returnsName("{ noreturn Component }", "Component"))
	assert.False(t, returnsName("{ return }", "Component"))
}
