package chunker

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"codechunk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseWith(t *testing.T, cfg Config, content, language string) *domain.ParseResult {
	t.Helper()
	c, err := NewCompositeChunker(cfg)
	require.NoError(t, err)
	res, err := c.Parse(content, language)
	require.NoError(t, err)
	return res
}

func parse(t *testing.T, content, language string) *domain.ParseResult {
	t.Helper()
	return parseWith(t, DefaultConfig(), content, language)
}

func readFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(data)
}

func mustFind(t *testing.T, res *domain.ParseResult, kind domain.ChunkKind, name string) domain.Chunk {
	t.Helper()
	c, ok := res.FindChunk(kind, name)
	require.True(t, ok, "no %s chunk named %q", kind, name)
	return c
}

func names(chunks []domain.Chunk) []string {
	out := make([]string, 0, len(chunks))
	for _, c := range chunks {
		out = append(out, c.Name)
	}
	return out
}

// assertWellFormed checks the properties every parse result holds: code is
// the exact text of the reported lines, spans are in range, and members sit
// strictly inside a class chunk of the name they link to.
func assertWellFormed(t *testing.T, content string, res *domain.ParseResult) {
	t.Helper()
	lines := domain.SplitLines(content)
	for _, c := range res.Chunks {
		require.True(t, c.StartLine >= 1 && c.StartLine <= c.EndLine && c.EndLine <= len(lines),
			"bad span %d-%d for %s", c.StartLine, c.EndLine, c.Name)
		assert.Equal(t, strings.Join(lines[c.StartLine-1:c.EndLine], "\n"), c.Code, "code of %s", c.Name)
		assert.True(t, c.Confidence >= confidenceFloor && c.Confidence <= 1, "confidence of %s", c.Name)
		assert.True(t, c.Kind.Valid())

		if c.Kind != domain.KindMethod {
			continue
		}
		require.NotEmpty(t, c.ClassName(), "method %s has no class", c.Name)
		found := false
		for _, owner := range res.Chunks {
			if owner.Kind == domain.KindClass && owner.Name == c.ClassName() && owner.StrictlyContains(c) {
				found = true
				break
			}
		}
		assert.True(t, found, "method %s is not inside class %s", c.Name, c.ClassName())
	}
}

func TestNewCompositeChunker_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"min above max", Config{MinChunkSize: 100, MaxChunkSize: 50}},
		{"negative size", Config{MinChunkSize: -1}},
		{"threshold above one", Config{ConfidenceThreshold: 1.5}},
		{"negative threshold", Config{ConfidenceThreshold: -0.1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCompositeChunker(tt.cfg)
			assert.ErrorIs(t, err, domain.ErrInvalidConfig)
		})
	}
}

func TestParse_UnsupportedLanguage(t *testing.T) {
	c, err := NewCompositeChunker(DefaultConfig())
	require.NoError(t, err)

	_, err = c.Parse("PROGRAM-ID. HELLO.", "cobol")
	assert.ErrorIs(t, err, domain.ErrUnsupportedLanguage)
}

func TestParse_LanguageAliases(t *testing.T) {
	for _, tag := range []string{"py", "Python", " python "} {
		res := parse(t, "def f():\n    pass\n", tag)
		assert.Equal(t, "python", res.Language)
		assert.Len(t, res.Chunks, 1)
	}
}

func TestParse_EmptyInput(t *testing.T) {
	for _, lang := range domain.Languages {
		res := parse(t, "", string(lang))
		assert.Empty(t, res.Chunks, lang)
		assert.NotNil(t, res.Imports, lang)
		assert.NotNil(t, res.Exports, lang)
	}
}

func TestLanguages(t *testing.T) {
	c, err := NewCompositeChunker(DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, domain.Languages, c.Languages())
}

func TestFilter_ConfidenceThreshold(t *testing.T) {
	src := "const f = () => 42;\nfunction g() {\n  return 1;\n}\n"

	all := parse(t, src, "javascript")
	assert.Equal(t, []string{"f", "g"}, names(all.Chunks))

	cfg := DefaultConfig()
	cfg.ConfidenceThreshold = 0.9
	res := parseWith(t, cfg, src, "javascript")
	assert.Equal(t, []string{"g"}, names(res.Chunks))
}

func TestFilter_MinChunkSize(t *testing.T) {
	src := "def a():\n    pass\n\ndef bigger():\n    x = 1\n    return x\n"
	cfg := DefaultConfig()
	cfg.MinChunkSize = 20

	res := parseWith(t, cfg, src, "python")
	assert.Equal(t, []string{"bigger"}, names(res.Chunks))
}

func TestFilter_OversizedIsFlaggedNotDropped(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxChunkSize = 10

	res := parseWith(t, cfg, "def f():\n    return 1\n", "python")
	require.Len(t, res.Chunks, 1)
	assert.True(t, res.Chunks[0].Oversized)

	res = parse(t, "def f():\n    return 1\n", "python")
	assert.False(t, res.Chunks[0].Oversized)
}

func TestFilter_DroppedChunkTakesContainedChunks(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ConfidenceThreshold = 0.5
	c, err := NewCompositeChunker(cfg)
	require.NoError(t, err)

	chunks := []domain.Chunk{
		{Kind: domain.KindMethod, Name: "m", StartLine: 2, EndLine: 3, Code: "m", Confidence: 1},
		{Kind: domain.KindClass, Name: "K", StartLine: 1, EndLine: 10, Code: "K", Confidence: confidenceFloor},
		{Kind: domain.KindFunction, Name: "f", StartLine: 12, EndLine: 13, Code: "f", Confidence: 1},
	}
	out := c.filter(chunks, domain.LangJavaScript)
	assert.Equal(t, []string{"f"}, names(out))
}

func TestFilter_ExcludeComments(t *testing.T) {
	src := "# doc\n# more\ndef f():\n    return 1\n"

	res := parse(t, src, "python")
	require.Len(t, res.Chunks, 1)
	assert.Equal(t, 1, res.Chunks[0].StartLine)

	cfg := DefaultConfig()
	cfg.IncludeComments = false
	res = parseWith(t, cfg, src, "python")
	require.Len(t, res.Chunks, 1)
	assert.Equal(t, 3, res.Chunks[0].StartLine)
	assert.Equal(t, 4, res.Chunks[0].EndLine)
	assert.Equal(t, "def f():\n    return 1", res.Chunks[0].Code)
	assertWellFormed(t, src, res)
}

func TestConfig_OptionsByAlias(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LanguageSpecific = map[string]map[string]any{
		"py": {"include_docstrings": false},
	}
	assert.False(t, cfg.Options(domain.LangPython).Bool("include_docstrings", true))
	assert.True(t, cfg.Options(domain.LangGo).Bool("detect_concurrency", true))

	src := "def f():\n    \"\"\"Doc.\"\"\"\n    return 1\n"
	res := parseWith(t, cfg, src, "python")
	require.Len(t, res.Chunks, 1)
	assert.Empty(t, res.Chunks[0].Meta.(*domain.PythonMeta).Docstring)
}

func TestLanguageOptions_Bool(t *testing.T) {
	opts := LanguageOptions{"a": true, "b": "no", "c": 1, "d": "maybe"}
	assert.True(t, opts.Bool("a", false))
	assert.False(t, opts.Bool("b", true))
	assert.True(t, opts.Bool("c", false))
	assert.True(t, opts.Bool("d", true))
	assert.False(t, opts.Bool("missing", false))
}

func TestParseRegion_Settled(t *testing.T) {
	c, err := NewCompositeChunker(DefaultConfig())
	require.NoError(t, err)

	tests := []struct {
		name    string
		lang    domain.Language
		content string
		settled bool
	}{
		{"closed function", domain.LangJavaScript, "function f() {\n  return 1;\n}\n", true},
		{"open brace", domain.LangJavaScript, "function f() {\n  return 1;\n", false},
		{"open template", domain.LangJavaScript, "const s = `abc\n", false},
		{"stray closer", domain.LangGo, "}\n\nfunc f() {}\n", false},
		{"trailing comment", domain.LangGo, "func f() {}\n\n// Doc for g\n", false},
		{"python header only", domain.LangPython, "def f():\n", false},
		{"python pending decorator", domain.LangPython, "@cached\n", false},
		{"python body", domain.LangPython, "def f():\n    return 1\n", true},
		{"rust attribute", domain.LangRust, "#[test]\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, settled, err := c.ParseRegion(tt.content, tt.lang)
			require.NoError(t, err)
			assert.Equal(t, tt.settled, settled)
		})
	}
}

func TestSafeAnchor(t *testing.T) {
	c, err := NewCompositeChunker(DefaultConfig())
	require.NoError(t, err)

	assert.True(t, c.SafeAnchor(domain.LangGo, "func main() {"))
	assert.True(t, c.SafeAnchor(domain.LangGo, "// Doc"))
	assert.False(t, c.SafeAnchor(domain.LangGo, "Point struct {"))
	assert.True(t, c.SafeAnchor(domain.LangPython, "def f():"))
	assert.False(t, c.SafeAnchor(domain.LangPython, "# comment"))
	assert.True(t, c.SafeAnchor(domain.LangRust, "fn main() {"))
}

func TestParse_FixturesAreWellFormed(t *testing.T) {
	fixtures := map[string]string{
		"sample.py":        "python",
		"react_app.tsx":    "typescript",
		"server.go":        "go",
		"shapes.rs":        "rust",
		"token.sol":        "solidity",
		"legacy_widget.js": "javascript",
	}
	for file, lang := range fixtures {
		t.Run(file, func(t *testing.T) {
			src := readFixture(t, file)
			res := parse(t, src, lang)
			require.NotEmpty(t, res.Chunks)
			assertWellFormed(t, src, res)
		})
	}
}
